package invitations

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	invitationdomain "koffa/internal/domain/invitation"
	"koffa/internal/transport/httpserver/middleware"
)

type codeRequest struct {
	Code string `json:"code"`
}

type validateResponse struct {
	IsValid   bool     `json:"is_valid"`
	CleanCode string   `json:"clean_code"`
	Errors    []string `json:"errors"`
}

type checkResponse struct {
	Valid bool `json:"valid"`
}

type verifyResponse struct {
	Valid    bool    `json:"valid"`
	FamilyID *string `json:"family_id"`
	Error    string  `json:"error,omitempty"`
}

type redeemResponse struct {
	Success  bool   `json:"success"`
	FamilyID string `json:"family_id"`
}

// Validate runs the local format check only; it never touches the store.
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	result := invitationdomain.ValidateFormat(req.Code)
	writeJSON(w, http.StatusOK, validateResponse{
		IsValid:   result.IsValid,
		CleanCode: result.CleanCode,
		Errors:    result.Errors,
	})
}

func (h *Handlers) Check(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	valid, err := h.Invitations.Check(r.Context(), code)
	if err != nil {
		h.log.InternalError("invitations.check: check failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, checkResponse{Valid: valid})
}

func (h *Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	verification, err := h.Invitations.Verify(r.Context(), req.Code)
	if err != nil {
		h.log.InternalError("invitations.verify: verify failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := verifyResponse{Valid: verification.Valid, Error: verification.Error}
	if verification.Valid {
		familyID := verification.FamilyID
		response.FamilyID = &familyID
	} else {
		h.log.BusinessError("invitations.verify: code rejected", verification.Err(), "user_id", user.ID, "code", req.Code)
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) Redeem(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	redemption, err := h.Invitations.Redeem(r.Context(), user.ID, req.Code)
	if err != nil {
		var formatErr *invitationdomain.FormatError
		switch {
		case errors.As(err, &formatErr):
			h.log.BusinessError("invitations.redeem: malformed code", err, "user_id", user.ID)
			writeError(w, http.StatusBadRequest, "invalid_code_format", formatErr.Error(), formatErr.Result.Errors...)
		case errors.Is(err, invitationdomain.ErrInvitationNotFound):
			h.log.BusinessError("invitations.redeem: invitation not found", err, "user_id", user.ID, "code", req.Code)
			writeError(w, http.StatusNotFound, "invitation_not_found", invitationdomain.MessageInvalidCode)
		case errors.Is(err, invitationdomain.ErrInvitationExpired):
			h.log.BusinessError("invitations.redeem: invitation expired", err, "user_id", user.ID, "code", req.Code)
			writeError(w, http.StatusGone, "invitation_expired", invitationdomain.MessageExpiredCode)
		case errors.Is(err, invitationdomain.ErrAlreadyInFamily):
			h.log.BusinessError("invitations.redeem: user already in family", err, "user_id", user.ID)
			writeError(w, http.StatusConflict, "already_in_family", "already in family")
		default:
			h.log.InternalError("invitations.redeem: redeem failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.log.Info("invitations.redeem: user joined family", "user_id", user.ID, "family_id", redemption.FamilyID)
	writeJSON(w, http.StatusOK, redeemResponse{
		Success:  redemption.Success,
		FamilyID: redemption.FamilyID,
	})
}
