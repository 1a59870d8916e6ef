// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package llms abstracts AI providers behind a single non-streaming
// Generate call. The governance pipeline composes a prompt, calls
// Generate exactly once, and validates the raw output; providers never
// retry on its behalf unless configured to.
package llms

import (
	"context"
	"fmt"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one prompt message.
type Message struct {
	Role    string
	Content string
}

// Request is a single generation request.
type Request struct {
	Messages []Message

	// ResponseSchema, when set, asks the provider for structured output
	// conforming to the schema. Output is still validated locally; the
	// provider hint only improves the odds.
	ResponseSchema map[string]interface{}
	SchemaName     string
}

// Usage reports provider-side token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the raw provider output. Content is returned unparsed;
// callers own validation.
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// Provider is a non-streaming AI text provider.
type Provider interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
	Model() string
	Name() string
}

// ProviderError reports a failed provider call: a transport failure, a
// non-2xx status, or an error payload embedded in the response body.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s provider error (HTTP %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
