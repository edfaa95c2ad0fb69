package families

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	familydomain "koffa/internal/domain/family"
	settingsdomain "koffa/internal/domain/settings"
	"koffa/internal/transport/httpserver/middleware"
)

type updateMemberSettingsRequest struct {
	Role        *settingsdomain.Role                           `json:"role"`
	Permissions map[settingsdomain.Area]settingsdomain.Access `json:"permissions"`
}

type settingsResponse struct {
	FamilyID  string                                   `json:"family_id"`
	Members   map[string]settingsdomain.MemberSettings `json:"members"`
	UpdatedAt *time.Time                               `json:"updated_at"`
}

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	current, err := h.Settings.Get(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, familydomain.ErrFamilyNotFound) {
			h.log.BusinessError("settings.get: family not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "family_not_found", "family not found")
			return
		}
		h.log.InternalError("settings.get: load settings failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(current))
}

func (h *Handlers) UpdateMemberSettings(w http.ResponseWriter, r *http.Request) {
	var req updateMemberSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if req.Role == nil && len(req.Permissions) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "role or permissions is required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	memberID := strings.TrimSpace(chi.URLParam(r, "user_id"))
	if memberID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}

	updated, err := h.Settings.UpdateMember(r.Context(), user.ID, memberID, settingsdomain.MemberUpdate{
		Role:        req.Role,
		Permissions: req.Permissions,
	})
	if err != nil {
		switch {
		case errors.Is(err, familydomain.ErrFamilyNotFound):
			h.log.BusinessError("settings.update_member: family not found", err, "actor_id", user.ID)
			writeError(w, http.StatusNotFound, "family_not_found", "family not found")
		case errors.Is(err, settingsdomain.ErrForbidden):
			h.log.BusinessError("settings.update_member: actor is not admin", err, "actor_id", user.ID, "member_id", memberID)
			writeError(w, http.StatusForbidden, "forbidden", "only admins can change member settings")
		case errors.Is(err, settingsdomain.ErrMemberNotFound):
			h.log.BusinessError("settings.update_member: member not found", err, "actor_id", user.ID, "member_id", memberID)
			writeError(w, http.StatusNotFound, "member_not_found", "member not found")
		case errors.Is(err, settingsdomain.ErrInvalidRole), errors.Is(err, settingsdomain.ErrInvalidPermission):
			h.log.BusinessError("settings.update_member: invalid update", err, "actor_id", user.ID, "member_id", memberID)
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, settingsdomain.ErrOwnerMustBeAdmin):
			h.log.BusinessError("settings.update_member: owner must stay admin", err, "actor_id", user.ID, "member_id", memberID)
			writeError(w, http.StatusConflict, "owner_must_be_admin", "family owner must stay admin")
		default:
			h.log.InternalError("settings.update_member: update failed", err, "actor_id", user.ID, "member_id", memberID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(updated))
}

func toSettingsResponse(current *settingsdomain.Settings) settingsResponse {
	response := settingsResponse{
		FamilyID: current.FamilyID,
		Members:  current.Members,
	}
	if !current.UpdatedAt.IsZero() {
		updatedAt := current.UpdatedAt
		response.UpdatedAt = &updatedAt
	}
	return response
}
