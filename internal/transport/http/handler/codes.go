package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ncetprep/educator-gate/internal/application/code"
	"github.com/ncetprep/educator-gate/internal/domain"
	"github.com/ncetprep/educator-gate/internal/pkg/validate"
)

// CodeHandler handles administrative access-code endpoints.
type CodeHandler struct {
	svc code.Service
}

func NewCodeHandler(svc code.Service) *CodeHandler { return &CodeHandler{svc: svc} }

// Issue mints a new access code. The plaintext appears only in this response
// (and the optional delivery email); the store holds a keyed digest.
func (h *CodeHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Issue(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue code")
		return
	}
	writeJSON(w, http.StatusCreated, IssueCodeEnvelope{Code: res.Code, AccessCode: res.Plaintext})
}

func (h *CodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "code not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not fetch code")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CodeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := int64(0)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.ParseInt(raw, 10, 32)
	}
	codes, next, err := h.svc.List(r.Context(), int32(limit), r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list codes")
		return
	}
	if codes == nil {
		codes = []domain.AccessCode{}
	}
	writeJSON(w, http.StatusOK, PaginatedCodesEnvelope{Data: codes, NextCursor: next})
}

// Deactivate retires a code so it can never match verification again.
func (h *CodeHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "code not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not deactivate code")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code deactivated"})
}
