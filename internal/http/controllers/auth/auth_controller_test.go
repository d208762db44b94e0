package auth_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialogmeet/authsvc/internal/auth/linker"
	"github.com/dialogmeet/authsvc/internal/auth/refresh"
	admincontroller "github.com/dialogmeet/authsvc/internal/http/controllers/admin"
	authcontroller "github.com/dialogmeet/authsvc/internal/http/controllers/auth"
	socialcontroller "github.com/dialogmeet/authsvc/internal/http/controllers/social"
	"github.com/dialogmeet/authsvc/internal/http/router"
	socialsvc "github.com/dialogmeet/authsvc/internal/http/services/social"
	jwtx "github.com/dialogmeet/authsvc/internal/jwt"
	"github.com/dialogmeet/authsvc/internal/store/memory"
)

const adminKey = "test-admin-key"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	secret := base64.StdEncoding.EncodeToString(make([]byte, 32))
	codec, err := jwtx.NewCodec(secret, time.Hour)
	require.NoError(t, err)

	accounts := memory.NewAccountStore()
	tokens := memory.NewTokenStore()
	lk := linker.New(linker.Deps{Accounts: accounts})
	rf := refresh.New(refresh.Deps{Tokens: tokens})
	social := socialsvc.New(socialsvc.Deps{Linker: lk})

	return router.New(router.Deps{
		Auth:     authcontroller.NewController(lk, rf, accounts, codec),
		Social:   socialcontroller.NewController(social, rf, codec, "", false),
		Admin:    admincontroller.NewTokensController(rf),
		Codec:    codec,
		AdminKey: adminKey,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func registerAna(t *testing.T, h http.Handler) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register", map[string]any{
		"email":          "ana@example.com",
		"password":       "s3cret-pass",
		"name":           "Ana Torres",
		"accepted_terms": true,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func login(t *testing.T, h http.Handler) (access, refreshToken string) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/v1/auth/login", map[string]any{
		"email":    "ana@example.com",
		"password": "s3cret-pass",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken  string `json:"access_token"`
		TokenType    string `json:"token_type"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	return resp.AccessToken, resp.RefreshToken
}

func TestRegisterLoginMe(t *testing.T) {
	h := newTestHandler(t)
	registerAna(t, h)
	access, _ := login(t, h)

	rec := doJSON(t, h, http.MethodGet, "/v1/auth/me", nil,
		map[string]string{"Authorization": "Bearer " + access})
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		Subject     string   `json:"subject"`
		Authorities []string `json:"authorities"`
		Account     *struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"account"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "ana@example.com", me.Subject)
	assert.Equal(t, []string{"ROLE_USER"}, me.Authorities)
	require.NotNil(t, me.Account)
	assert.Equal(t, "ana@example.com", me.Account.Email)
	assert.Equal(t, "Ana Torres", me.Account.Name)
}

func TestRegister_DuplicateEmailIs409(t *testing.T) {
	h := newTestHandler(t)
	registerAna(t, h)

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register", map[string]any{
		"email":          "ana@example.com",
		"password":       "otra-pass",
		"accepted_terms": true,
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_TermsRequired(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register", map[string]any{
		"email":    "ana@example.com",
		"password": "s3cret-pass",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "TERMS_NOT_ACCEPTED")
}

func TestLogin_BadCredentialsDoNotRevealAccount(t *testing.T) {
	h := newTestHandler(t)
	registerAna(t, h)

	wrongPass := doJSON(t, h, http.MethodPost, "/v1/auth/login", map[string]any{
		"email": "ana@example.com", "password": "mala",
	}, nil)
	unknown := doJSON(t, h, http.MethodPost, "/v1/auth/login", map[string]any{
		"email": "nadie@example.com", "password": "mala",
	}, nil)

	// Misma respuesta para password incorrecto y cuenta inexistente.
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrongPass.Body.String(), unknown.Body.String())
}

func TestRefreshFlow(t *testing.T) {
	h := newTestHandler(t)
	registerAna(t, h)
	_, rt := login(t, h)

	t.Run("canje ok", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/v1/auth/refresh",
			map[string]any{"refresh_token": rt}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "access_token")
	})

	t.Run("token desconocido", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/v1/auth/refresh",
			map[string]any{"refresh_token": "no-existe"}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "REFRESH_NOT_FOUND")
	})

	t.Run("logout revoca y el canje posterior falla", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/v1/auth/logout",
			map[string]any{"refresh_token": rt}, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, h, http.MethodPost, "/v1/auth/refresh",
			map[string]any{"refresh_token": rt}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "REFRESH_REVOKED")

		// Logout repetido sigue siendo 204 (idempotente).
		rec = doJSON(t, h, http.MethodPost, "/v1/auth/logout",
			map[string]any{"refresh_token": rt}, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestAdminEndpoints(t *testing.T) {
	h := newTestHandler(t)
	registerAna(t, h)
	_, rt := login(t, h)

	t.Run("sin api key: 403", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/v1/admin/tokens/sweep", nil, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("revoke con api key", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/v1/admin/tokens/revoke",
			map[string]any{"refresh_token": rt},
			map[string]string{"X-Admin-API-Key": adminKey})
		require.Equal(t, http.StatusNoContent, rec.Code)

		refreshRec := doJSON(t, h, http.MethodPost, "/v1/auth/refresh",
			map[string]any{"refresh_token": rt}, nil)
		assert.Contains(t, refreshRec.Body.String(), "REFRESH_REVOKED")
	})

	t.Run("sweep con api key", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/v1/admin/tokens/sweep", nil,
			map[string]string{"X-Admin-API-Key": adminKey})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "deleted")
	})
}

func TestMe_RequiresIdentity(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/v1/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
