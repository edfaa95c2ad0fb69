package common

import (
	"errors"
	"net/http"
	"time"

	profiledomain "koffa/internal/domain/profile"
	"koffa/internal/transport/httpserver/middleware"
)

type authMeResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Username  *string   `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	FamilyID  *string   `json:"family_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	writeJSON(w, http.StatusOK, authMeResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	})
}

func (h *Handlers) GetProfileMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	profile, err := h.Profiles.GetProfile(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, profiledomain.ErrProfileNotFound) {
			h.log.BusinessError("profiles.get_me: profile not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "profile_not_found", "profile not found")
			return
		}
		h.log.InternalError("profiles.get_me: get profile failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:        profile.ID,
		Username:  profile.Username,
		AvatarURL: profile.AvatarURL,
		FamilyID:  profile.FamilyID,
		CreatedAt: profile.CreatedAt,
	})
}
