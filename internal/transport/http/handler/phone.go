package handler

import (
	"encoding/json"
	"net/http"

	"github.com/headless-auth-relay/internal/application/verification"
	"github.com/headless-auth-relay/internal/pkg/validate"
)

// PhoneVerifyHandler handles the SMS OTP verification endpoints.
type PhoneVerifyHandler struct {
	svc verification.Service
}

func NewPhoneVerifyHandler(svc verification.Service) *PhoneVerifyHandler {
	return &PhoneVerifyHandler{svc: svc}
}

type validatePhoneRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type verifyPhoneRequest struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

func (h *PhoneVerifyHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validatePhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exp, err := h.svc.IssuePhoneCode(r.Context(), req.Phone)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExpirationEnvelope{ExpirationDate: exp})
}

// Verify consumes a code. The SMS channel has no browser to redirect, so
// success is a plain JSON acknowledgement.
func (h *PhoneVerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.VerifyPhoneCode(r.Context(), req.Phone, req.Code); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "phone verified"})
}
