package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"koffa/internal/config"
	"koffa/internal/db/dbtest"
	invitationdomain "koffa/internal/domain/invitation"
	"koffa/pkg/logger"
)

const jwtSecret = "router-test-secret-router-test-secret"

type recordingSender struct {
	notices []invitationdomain.Notice
}

func (s *recordingSender) SendInvitation(_ context.Context, notice invitationdomain.Notice) error {
	s.notices = append(s.notices, notice)
	return nil
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router http.Handler
	sender *recordingSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Config{
		Supabase:    config.SupabaseConfig{JWTSecret: jwtSecret},
		Invitations: config.InvitationsConfig{TTL: 168 * time.Hour, Precreate: true},
		Settings:    config.SettingsConfig{Store: "postgres"},
	}

	dbConn := dbtest.Open(t)
	sender := &recordingSender{}
	return &testServer{
		t:      t,
		db:     dbConn,
		router: NewRouter(cfg, dbConn, sender, logger.Discard()),
		sender: sender,
	}
}

func (s *testServer) token(userID, name string) string {
	s.t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":           userID,
		"email":         userID + "@example.com",
		"exp":           time.Now().Add(time.Hour).Unix(),
		"user_metadata": map[string]any{"name": name},
	}).SignedString([]byte(jwtSecret))
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, payload any) (int, map[string]any) {
	s.t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(s.t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, decoded
}

func (s *testServer) doList(method, path, token string) (int, []map[string]any) {
	s.t.Helper()

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded []map[string]any
	if rec.Code == http.StatusOK {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, decoded
}

func errorCode(body map[string]any) string {
	envelope, _ := body["error"].(map[string]any)
	code, _ := envelope["code"].(string)
	return code
}

func TestInvitationFlow(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.token(uuid.NewString(), "Ann")
	joinerID := uuid.NewString()
	joiner := srv.token(joinerID, "Bob")

	status, created := srv.do(http.MethodPost, "/api/families", owner, map[string]string{"name": "Smith Family"})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "Smith Family", created["name"])
	familyID := created["id"].(string)

	invitation := created["invitation"].(map[string]any)
	displayCode := invitation["display_code"].(string)
	require.Len(t, invitation["code"], invitationdomain.CodeLength)
	require.Equal(t, false, invitation["is_used"])

	status, verified := srv.do(http.MethodPost, "/api/invitations/verify", joiner, map[string]string{"code": displayCode})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, verified["valid"])
	require.Equal(t, familyID, verified["family_id"])

	status, redeemed := srv.do(http.MethodPost, "/api/invitations/redeem", joiner, map[string]string{"code": displayCode})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, redeemed["success"])
	require.Equal(t, familyID, redeemed["family_id"])

	status, again := srv.do(http.MethodPost, "/api/invitations/redeem", srv.token(uuid.NewString(), "Eve"), map[string]string{"code": displayCode})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "invitation_not_found", errorCode(again))

	status, members := srv.doList(http.MethodGet, "/api/families/me/members", owner)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, members, 2)
	require.Equal(t, "owner", members[0]["role"])
	require.Equal(t, "Bob", members[1]["username"])

	status, profile := srv.do(http.MethodGet, "/api/profiles/me", joiner, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, familyID, profile["family_id"])

	status, active := srv.doList(http.MethodGet, "/api/families/me/invitations", owner)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, active)

	status, all := srv.doList(http.MethodGet, "/api/families/me/invitations?include_inactive=true", owner)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, all, 1)
}

func TestRedeemRejections(t *testing.T) {
	srv := newTestServer(t)
	ownerID := uuid.NewString()
	owner := srv.token(ownerID, "Ann")
	joiner := srv.token(uuid.NewString(), "Bob")

	status, created := srv.do(http.MethodPost, "/api/families", owner, map[string]string{"name": "Smith Family"})
	require.Equal(t, http.StatusCreated, status)

	status, body := srv.do(http.MethodPost, "/api/invitations/redeem", joiner, map[string]string{"code": "AB3D"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_code_format", errorCode(body))
	require.Equal(t, invitationdomain.MessageCodeLength, body["error"].(map[string]any)["message"])

	expired := invitationdomain.Invitation{
		ID:        uuid.NewString(),
		Code:      "EXP1RED9",
		FamilyID:  created["id"].(string),
		CreatedBy: ownerID,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	require.NoError(t, srv.db.Create(&expired).Error)

	status, body = srv.do(http.MethodPost, "/api/invitations/redeem", joiner, map[string]string{"code": "exp1-red9"})
	require.Equal(t, http.StatusGone, status)
	require.Equal(t, "invitation_expired", errorCode(body))

	status, body = srv.do(http.MethodPost, "/api/invitations/verify", joiner, map[string]string{"code": "exp1-red9"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, false, body["valid"])
	require.Equal(t, invitationdomain.MessageExpiredCode, body["error"])
	require.Nil(t, body["family_id"])

	code := created["invitation"].(map[string]any)["code"].(string)
	status, body = srv.do(http.MethodPost, "/api/invitations/redeem", owner, map[string]string{"code": code})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "already_in_family", errorCode(body))
}

func TestPublicInvitationEndpoints(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(http.MethodPost, "/api/invitations/validate", "", map[string]string{"code": "  ab3d-ef7h "})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["is_valid"])
	require.Equal(t, "AB3DEF7H", body["clean_code"])

	status, body = srv.do(http.MethodPost, "/api/invitations/validate", "", map[string]string{"code": ""})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, false, body["is_valid"])
	require.Equal(t, []any{invitationdomain.MessageCodeRequired}, body["errors"])

	status, body = srv.do(http.MethodGet, "/api/invitations/check/AB3D", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, false, body["valid"])

	status, _ = srv.do(http.MethodPost, "/api/invitations/verify", "", map[string]string{"code": "AB3DEF7H"})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestInvitationPermissionsFollowSettings(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.token(uuid.NewString(), "Ann")
	joinerID := uuid.NewString()
	joiner := srv.token(joinerID, "Bob")

	status, created := srv.do(http.MethodPost, "/api/families", owner, map[string]string{"name": "Smith Family"})
	require.Equal(t, http.StatusCreated, status)
	code := created["invitation"].(map[string]any)["code"].(string)

	status, _ = srv.do(http.MethodPost, "/api/invitations/redeem", joiner, map[string]string{"code": code})
	require.Equal(t, http.StatusOK, status)

	status, issued := srv.do(http.MethodPost, "/api/families/me/invitations", joiner, map[string]string{"email": "carol@example.com"})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, true, issued["email_sent"])
	require.Len(t, srv.sender.notices, 1)
	require.Equal(t, "Bob", srv.sender.notices[0].InvitedBy)

	status, body := srv.do(http.MethodPost, "/api/families/me/invitations", joiner, map[string]string{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_email", errorCode(body))

	status, body = srv.do(http.MethodPut, "/api/families/me/settings/members/"+joinerID, joiner, map[string]any{"role": "admin"})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "forbidden", errorCode(body))

	status, body = srv.do(http.MethodPut, "/api/families/me/settings/members/"+joinerID, owner, map[string]any{"role": "limitedUser"})
	require.Equal(t, http.StatusOK, status)
	members := body["members"].(map[string]any)
	require.Equal(t, "limitedUser", members[joinerID].(map[string]any)["role"])

	status, body = srv.do(http.MethodPost, "/api/families/me/invitations", joiner, nil)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "forbidden", errorCode(body))

	status, body = srv.do(http.MethodGet, "/api/families/me/settings", owner, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, body["updated_at"])
}

func TestFamilyLifecycle(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.token(uuid.NewString(), "Ann")

	status, body := srv.do(http.MethodGet, "/api/families/me", owner, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "family_not_found", errorCode(body))

	status, _ = srv.do(http.MethodPost, "/api/families", owner, map[string]string{"name": "Smith Family"})
	require.Equal(t, http.StatusCreated, status)

	status, body = srv.do(http.MethodPost, "/api/families", owner, map[string]string{"name": "Another"})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "already_in_family", errorCode(body))

	status, body = srv.do(http.MethodPatch, "/api/families/me", owner, map[string]string{"name": "The Smiths"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "The Smiths", body["name"])

	status, _ = srv.do(http.MethodPost, "/api/families/leave", owner, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = srv.do(http.MethodGet, "/api/families/me", owner, nil)
	require.Equal(t, http.StatusNotFound, status)
}
