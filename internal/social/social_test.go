package social

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Google(t *testing.T) {
	info, err := Normalize("google", map[string]any{
		"sub":     "108352", // ids de Google son strings
		"email":   "ana@example.com",
		"name":    "Ana Torres",
		"picture": "https://lh3.example.com/a/photo.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, ProviderGoogle, info.Provider)
	assert.Equal(t, "108352", info.ProviderUserID)
	assert.Equal(t, "ana@example.com", info.Email)
	assert.Equal(t, "Ana Torres", info.Name)
	assert.Equal(t, "https://lh3.example.com/a/photo.jpg", info.ProfileImageURL)
	assert.Equal(t, "google:108352", info.Key())
}

func TestNormalize_Kakao(t *testing.T) {
	// Kakao entrega el id como número JSON; el payload real pasa por
	// encoding/json, así que el test también.
	raw := `{
		"id": 2764591,
		"properties": {"nickname": "지우", "profile_image": "http://k.kakaocdn.net/img.jpg"},
		"kakao_account": {"email": "jiwoo@example.com"}
	}`
	var attrs map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &attrs))

	info, err := Normalize("kakao", attrs)
	require.NoError(t, err)

	assert.Equal(t, ProviderKakao, info.Provider)
	assert.Equal(t, "2764591", info.ProviderUserID)
	assert.Equal(t, "jiwoo@example.com", info.Email)
	assert.Equal(t, "지우", info.Name)
	assert.Equal(t, "http://k.kakaocdn.net/img.jpg", info.ProfileImageURL)
	assert.Equal(t, "kakao:2764591", info.Key())
}

func TestNormalize_KakaoPartialProfile(t *testing.T) {
	// Cuenta Kakao sin consentimiento de email ni propiedades: la identidad
	// sigue siendo válida con solo provider + id.
	info, err := Normalize("kakao", map[string]any{"id": float64(99)})
	require.NoError(t, err)

	assert.Equal(t, "kakao:99", info.Key())
	assert.Empty(t, info.Email)
	assert.Empty(t, info.Name)
}

func TestNormalize_ProviderCaseInsensitive(t *testing.T) {
	info, err := Normalize("  Google ", map[string]any{"sub": "1"})
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, info.Provider)
}

func TestNormalize_UnsupportedProvider(t *testing.T) {
	for _, provider := range []string{"naver", "github", "", "googl"} {
		_, err := Normalize(provider, map[string]any{"sub": "1"})
		assert.ErrorIs(t, err, ErrUnsupportedProvider, "provider=%q", provider)
	}
}

func TestNormalize_MissingID(t *testing.T) {
	_, err := Normalize("google", map[string]any{"email": "x@example.com"})
	assert.Error(t, err)

	_, err = Normalize("kakao", map[string]any{})
	assert.Error(t, err)
}
