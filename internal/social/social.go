// Package social normaliza perfiles de proveedores OAuth a una identidad
// canónica del dominio. Cada proveedor expone el perfil con su propia forma;
// acá se traduce a UserInfo y nada aguas abajo conoce el layout original.
package social

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Proveedores soportados. Cualquier otro valor es rechazo explícito.
const (
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
)

// ErrUnsupportedProvider se retorna para proveedores no registrados.
// El caller no debe tratarlo como degradación silenciosa.
var ErrUnsupportedProvider = errors.New("unsupported social provider")

// UserInfo es la identidad social canónica, independiente del proveedor.
type UserInfo struct {
	Provider        string
	ProviderUserID  string
	Email           string
	Name            string
	ProfileImageURL string
}

// Key retorna el identificador social único "{provider}:{providerUserID}".
// El separador ':' garantiza que ids de proveedores distintos no coliden.
func (u *UserInfo) Key() string {
	return u.Provider + ":" + u.ProviderUserID
}

// Normalize traduce el payload crudo del proveedor a UserInfo.
// El nombre del proveedor es case-insensitive.
func Normalize(provider string, attrs map[string]any) (*UserInfo, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderGoogle:
		return normalizeGoogle(attrs)
	case ProviderKakao:
		return normalizeKakao(attrs)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
}

// normalizeGoogle mapea el userinfo de Google: todo viene plano en el root.
func normalizeGoogle(attrs map[string]any) (*UserInfo, error) {
	id := str(attrs["sub"])
	if id == "" {
		return nil, fmt.Errorf("google profile without subject id")
	}
	return &UserInfo{
		Provider:        ProviderGoogle,
		ProviderUserID:  id,
		Email:           str(attrs["email"]),
		Name:            str(attrs["name"]),
		ProfileImageURL: str(attrs["picture"]),
	}, nil
}

// normalizeKakao mapea el perfil de Kakao: el id es numérico en el root,
// nickname y foto viven en "properties" y el email en "kakao_account".
func normalizeKakao(attrs map[string]any) (*UserInfo, error) {
	id := str(attrs["id"])
	if id == "" {
		return nil, fmt.Errorf("kakao profile without id")
	}

	info := &UserInfo{
		Provider:       ProviderKakao,
		ProviderUserID: id,
	}
	if props, ok := attrs["properties"].(map[string]any); ok {
		info.Name = str(props["nickname"])
		info.ProfileImageURL = str(props["profile_image"])
	}
	if account, ok := attrs["kakao_account"].(map[string]any); ok {
		info.Email = str(account["email"])
	}
	return info, nil
}

// str convierte valores de un payload JSON a string. Los ids numéricos de
// Kakao llegan como float64 tras el decode; se formatean sin exponente.
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
