package handler

import (
	"encoding/json"
	"net/http"

	"github.com/headless-auth-relay/internal/application/verification"
	"github.com/headless-auth-relay/internal/pkg/validate"
)

// EmailVerifyHandler handles the email OTP verification endpoints.
type EmailVerifyHandler struct {
	svc            verification.Service
	authLandingURL string
}

func NewEmailVerifyHandler(svc verification.Service, authLandingURL string) *EmailVerifyHandler {
	return &EmailVerifyHandler{svc: svc, authLandingURL: authLandingURL}
}

type validateEmailRequest struct {
	Email string `json:"email" validate:"required"`
}

type verifyEmailRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

// Validate issues (or re-reports) a verification code for the address.
func (h *EmailVerifyHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exp, err := h.svc.IssueEmailCode(r.Context(), req.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExpirationEnvelope{ExpirationDate: exp})
}

// ValidateInfo answers the GET form of the validate route with placeholder text.
func (h *EmailVerifyHandler) ValidateInfo(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Email validation route"))
}

// Verify consumes a code and redirects to the authenticated landing page.
func (h *EmailVerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.VerifyEmailCode(r.Context(), req.Email, req.Code); err != nil {
		httpError(w, err)
		return
	}
	http.Redirect(w, r, h.authLandingURL, http.StatusFound)
}
