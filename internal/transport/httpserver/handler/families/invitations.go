package families

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	familydomain "koffa/internal/domain/family"
	invitationdomain "koffa/internal/domain/invitation"
	settingsdomain "koffa/internal/domain/settings"
	"koffa/internal/transport/httpserver/middleware"
)

type createInvitationRequest struct {
	Email string `json:"email"`
}

type invitationResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	DisplayCode string    `json:"display_code"`
	FamilyID    string    `json:"family_id"`
	CreatedBy   string    `json:"created_by"`
	ExpiresAt   time.Time `json:"expires_at"`
	IsUsed      bool      `json:"is_used"`
	CreatedAt   time.Time `json:"created_at"`
}

type createInvitationResponse struct {
	invitationResponse
	EmailSent *bool `json:"email_sent,omitempty"`
}

func (h *Handlers) ListInvitations(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var filter invitationdomain.ListFilter
	if raw := strings.TrimSpace(r.URL.Query().Get("include_inactive")); raw != "" {
		includeInactive, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "include_inactive must be a boolean")
			return
		}
		filter.IncludeInactive = includeInactive
	}

	invitations, err := h.Invitations.ListForFamily(r.Context(), user.ID, filter)
	if err != nil {
		if errors.Is(err, invitationdomain.ErrFamilyNotFound) {
			h.log.BusinessError("invitations.list: family not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "family_not_found", "family not found")
			return
		}
		h.log.InternalError("invitations.list: list invitations failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]invitationResponse, 0, len(invitations))
	for i := range invitations {
		response = append(response, toInvitationResponse(&invitations[i]))
	}

	writeJSON(w, http.StatusOK, response)
}

// CreateInvitation issues a new code for the caller's family. Members need at
// least view access to the family area; an email address is optional.
func (h *Handlers) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	var req createInvitationRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	allowed, err := h.Settings.Can(r.Context(), user.ID, settingsdomain.AreaFamily, settingsdomain.AccessView)
	if err != nil {
		if errors.Is(err, familydomain.ErrFamilyNotFound) {
			h.log.BusinessError("invitations.create: family not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "family_not_found", "family not found")
			return
		}
		h.log.InternalError("invitations.create: permission check failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	if !allowed {
		h.log.BusinessError("invitations.create: not allowed", settingsdomain.ErrForbidden, "user_id", user.ID)
		writeError(w, http.StatusForbidden, "forbidden", "not allowed to invite members")
		return
	}

	email := strings.TrimSpace(req.Email)
	created, err := h.Invitations.Create(r.Context(), invitationdomain.CreateInput{
		UserID:      user.ID,
		InviterName: user.Name,
		Email:       email,
	})
	if err != nil && !errors.Is(err, invitationdomain.ErrDeliveryFailed) {
		switch {
		case errors.Is(err, invitationdomain.ErrInvalidEmail):
			h.log.BusinessError("invitations.create: invalid email", err, "user_id", user.ID)
			writeError(w, http.StatusBadRequest, "invalid_email", "invalid email")
		case errors.Is(err, invitationdomain.ErrFamilyNotFound):
			h.log.BusinessError("invitations.create: family not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "family_not_found", "family not found")
		default:
			h.log.InternalError("invitations.create: create invitation failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	response := createInvitationResponse{invitationResponse: toInvitationResponse(created)}
	if email != "" {
		sent := err == nil
		if !sent {
			h.log.InternalError("invitations.create: email delivery failed", err, "user_id", user.ID, "invitation_id", created.ID)
		}
		response.EmailSent = &sent
	}

	h.log.Info("invitations.create: invitation issued", "user_id", user.ID, "family_id", created.FamilyID)
	writeJSON(w, http.StatusCreated, response)
}

func toInvitationResponse(invitation *invitationdomain.Invitation) invitationResponse {
	return invitationResponse{
		ID:          invitation.ID,
		Code:        invitation.Code,
		DisplayCode: invitationdomain.FormatForDisplay(invitation.Code),
		FamilyID:    invitation.FamilyID,
		CreatedBy:   invitation.CreatedBy,
		ExpiresAt:   invitation.ExpiresAt,
		IsUsed:      invitation.IsUsed,
		CreatedAt:   invitation.CreatedAt,
	}
}
