// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generator

// PromptRequest is the body of every generation call.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// SuggestResponse is returned by the suggest endpoint.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// MusicResponse is returned by the music endpoint.
type MusicResponse struct {
	AudioPath string `json:"audioPath"`
}

// errorResponse is the JSON body the backend sends with non-2xx statuses.
type errorResponse struct {
	Detail string `json:"detail"`
}
