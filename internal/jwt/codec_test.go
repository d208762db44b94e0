package jwt

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecret(t *testing.T, n int) string {
	t.Helper()
	raw := make([]byte, n)
	for i := range raw {
		raw[i] = byte(i)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret(t, 32), time.Hour)
	require.NoError(t, err)
	return c
}

func TestNewCodec_RejectsBadSecrets(t *testing.T) {
	_, err := NewCodec("no es base64 !!", time.Hour)
	assert.Error(t, err, "secreto no-base64 debe fallar en el arranque")

	_, err = NewCodec(testSecret(t, 16), time.Hour)
	assert.Error(t, err, "secreto de 16 bytes es muy corto para HS256")

	_, err = NewCodec(testSecret(t, 32), time.Hour)
	assert.NoError(t, err)
}

func TestCodec_IssueAndParseIdentity(t *testing.T) {
	c := newTestCodec(t)

	token, err := c.Issue("ana@example.com", []string{"ROLE_USER", "ROLE_ADMIN"}, time.Hour)
	require.NoError(t, err)
	require.True(t, c.Validate(token))

	id, err := c.ParseIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", id.Subject)
	assert.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, id.Authorities)
	assert.True(t, id.HasAuthority("ROLE_ADMIN"))
	assert.False(t, id.HasAuthority("ROLE_ROOT"))
}

func TestCodec_ParseIdentity_DefaultAuthority(t *testing.T) {
	c := newTestCodec(t)

	// Token sin claim "auth": identidad válida con la authority base.
	now := time.Now().UTC()
	claims := jwtv5.MapClaims{
		"sub": "bare@example.com",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(c.key)
	require.NoError(t, err)

	require.True(t, c.Validate(token))
	id, err := c.ParseIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultAuthority}, id.Authorities)
}

func TestCodec_Validate_NeverPanicsAlwaysBool(t *testing.T) {
	c := newTestCodec(t)

	cases := map[string]string{
		"vacío":       "",
		"basura":      "not-a-jwt",
		"dos puntos":  "a.b",
		"base64 rota": "eyJhbGciOiJIUzI1NiJ9.%%%.firma",
	}
	for name, tk := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, c.Validate(tk))
		})
	}
}

func TestCodec_Validate_RejectsForeignSignature(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewCodec(base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 32))), time.Hour)
	require.NoError(t, err)

	token, err := other.Issue("eve@example.com", []string{"ROLE_USER"}, time.Hour)
	require.NoError(t, err)

	assert.False(t, c.Validate(token))
	_, perr := c.ParseIdentity(token)
	assert.ErrorIs(t, perr, ErrInvalidToken)
}

func TestCodec_Validate_RejectsExpired(t *testing.T) {
	c := newTestCodec(t)

	now := time.Now().UTC()
	claims := jwtv5.MapClaims{
		"sub":  "ana@example.com",
		"auth": "ROLE_USER",
		"iat":  now.Add(-2 * time.Hour).Unix(),
		"exp":  now.Add(-time.Minute).Unix(),
	}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(c.key)
	require.NoError(t, err)

	assert.False(t, c.Validate(token))
}

func TestCodec_Validate_RejectsUnsignedAlgNone(t *testing.T) {
	c := newTestCodec(t)

	now := time.Now().UTC()
	claims := jwtv5.MapClaims{
		"sub": "eve@example.com",
		"exp": now.Add(time.Hour).Unix(),
	}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, claims).
		SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.False(t, c.Validate(token))
}
