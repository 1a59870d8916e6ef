// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kadirpekel/wellspring/pkg/auth"
	"github.com/kadirpekel/wellspring/pkg/governance"
	"github.com/kadirpekel/wellspring/pkg/governance/featuregate"
	"github.com/kadirpekel/wellspring/pkg/governance/ratelimit"
)

// maxRequestBody bounds generation request bodies at 1 MiB.
const maxRequestBody = 1 << 20

// generateRequest is the wire form of a generation call. UserID and
// TenantID are honored only when no authenticated claims are present;
// otherwise the token is authoritative.
type generateRequest struct {
	UserID        string          `json:"user_id,omitempty"`
	TenantID      string          `json:"tenant_id,omitempty"`
	Feature       string          `json:"feature"`
	Payload       json.RawMessage `json:"payload"`
	Directive     string          `json:"directive,omitempty"`
	TenantContext string          `json:"tenant_context,omitempty"`
}

type generateResponse struct {
	RequestID         string            `json:"request_id"`
	Feature           string            `json:"feature"`
	Output            json.RawMessage   `json:"output"`
	Model             string            `json:"model"`
	UserRole          string            `json:"user_role"`
	Usage             []ratelimit.Usage `json:"usage,omitempty"`
	PromptTrimmed     bool              `json:"prompt_trimmed,omitempty"`
	DirectiveFiltered bool              `json:"directive_filtered,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Reason string `json:"reason,omitempty"`
	Scope  string `json:"scope,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{
			Error: "malformed request body",
			Kind:  "bad_request",
		})
		return
	}

	userID, tenantID, err := s.resolveIdentity(r, req.UserID, req.TenantID)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{
			Error: err.Error(),
			Kind:  "bad_request",
		})
		return
	}

	resp, err := s.orchestrator.Generate(r.Context(), &governance.GenerateRequest{
		UserID:        userID,
		TenantID:      tenantID,
		Feature:       featuregate.Feature(req.Feature),
		Payload:       req.Payload,
		Directive:     req.Directive,
		TenantContext: req.TenantContext,
	})
	if err != nil {
		s.writeGenerateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &generateResponse{
		RequestID:         resp.RequestID,
		Feature:           string(resp.Feature),
		Output:            resp.Output,
		Model:             resp.Model,
		UserRole:          string(resp.UserRole),
		Usage:             resp.Usage,
		PromptTrimmed:     resp.PromptTrimmed,
		DirectiveFiltered: resp.DirectiveFiltered,
	})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	userID, tenantID, err := s.resolveIdentity(r, r.URL.Query().Get("user_id"), r.URL.Query().Get("tenant_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{
			Error: err.Error(),
			Kind:  "bad_request",
		})
		return
	}

	usages, err := s.orchestrator.CheckUsage(r.Context(), userID, tenantID)
	if err != nil {
		s.writeGenerateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"usage": usages})
}

// resolveIdentity picks the caller identity. Authenticated claims win
// over anything the request carries.
func (s *Server) resolveIdentity(r *http.Request, bodyUserID, bodyTenantID string) (string, string, error) {
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		if claims.Subject == "" || claims.TenantID == "" {
			return "", "", fmt.Errorf("token is missing subject or tenant claims")
		}
		return claims.Subject, claims.TenantID, nil
	}
	if bodyUserID == "" || bodyTenantID == "" {
		return "", "", fmt.Errorf("user_id and tenant_id are required")
	}
	return bodyUserID, bodyTenantID, nil
}

// writeGenerateError maps the pipeline error taxonomy onto HTTP. Raw
// messages from unavailable errors are already scrubbed upstream.
func (s *Server) writeGenerateError(w http.ResponseWriter, err error) {
	if exceeded := ratelimit.GetExceeded(err); exceeded != nil {
		retryAfter := time.Until(ratelimit.NextWindow(time.Now()))
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
		w.Header().Set("X-RateLimit-Scope", string(exceeded.Scope))
		writeError(w, http.StatusTooManyRequests, errorResponse{
			Error: "rate limit exceeded",
			Kind:  "rate_limit_exceeded",
			Scope: string(exceeded.Scope),
		})
		return
	}

	if denial := featuregate.GetDenial(err); denial != nil {
		writeError(w, http.StatusForbidden, errorResponse{
			Error:  err.Error(),
			Kind:   "feature_permission_denied",
			Reason: string(denial.Reason),
		})
		return
	}

	if governance.IsInvalid(err) {
		writeError(w, http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(),
			Kind:  "ai_response_invalid",
		})
		return
	}

	writeError(w, http.StatusServiceUnavailable, errorResponse{
		Error: "ai service unavailable",
		Kind:  "service_unavailable",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, resp errorResponse) {
	writeJSON(w, status, resp)
}
