package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ncetprep/educator-gate/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// VerifyEnvelope wraps verify-code responses.
type VerifyEnvelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// BindEnvelope wraps binding-completion responses. Error carries one of the
// wire reject codes from the domain package.
type BindEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SignInEnvelope wraps identity sign-in responses.
type SignInEnvelope struct {
	Identity *domain.Identity `json:"identity,omitempty"`
	Role     string           `json:"role,omitempty"`
	Message  string           `json:"message,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// IssueCodeEnvelope wraps code-issuance responses. AccessCode is the
// plaintext: this response is the only place it ever appears.
type IssueCodeEnvelope struct {
	Code       *domain.AccessCode `json:"code,omitempty"`
	AccessCode string             `json:"access_code,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// PaginatedCodesEnvelope wraps cursor-paginated code list responses.
type PaginatedCodesEnvelope struct {
	Data       []domain.AccessCode `json:"data"`
	NextCursor string              `json:"next_cursor,omitempty"`
	Error      string              `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
