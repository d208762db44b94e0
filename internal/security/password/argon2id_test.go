package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Params livianos para que los tests no paguen los 64 MiB del default.
var testParams = Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashAndVerify(t *testing.T) {
	phc, err := Hash(testParams, "s3cret-pass")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(phc, "$argon2id$v=19$m=8192,t=1,p=1$"))

	// El PHC tiene salt y hash como segmentos separados; Verify tiene que
	// reconstruirlos desde el mismo string que produce Hash.
	assert.True(t, Verify("s3cret-pass", phc))
	assert.False(t, Verify("otra-pass", phc))
	assert.False(t, Verify("", phc))
}

func TestVerify_MalformedPHC(t *testing.T) {
	phc, err := Hash(testParams, "s3cret-pass")
	require.NoError(t, err)

	cases := map[string]string{
		"vacío":              "",
		"no phc":             "hash-a-secas",
		"algoritmo distinto": strings.Replace(phc, "argon2id", "argon2i", 1),
		"versión distinta":   strings.Replace(phc, "v=19", "v=16", 1),
		"segmentos de más":   phc + "$extra",
		"salt inválido":      "$argon2id$v=19$m=8192,t=1,p=1$!!!$AAAA",
		"params rotos":       "$argon2id$v=19$m=x,t=y,p=z$AAAA$AAAA",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, Verify("s3cret-pass", in))
		})
	}
}

func TestHasher_RoundTrip(t *testing.T) {
	h := &Hasher{Params: testParams}
	phc, err := h.Hash("pw123456")
	require.NoError(t, err)
	assert.True(t, h.Verify("pw123456", phc))
	assert.False(t, h.Verify("pw1234567", phc))
}

func TestHash_EmptyPasswordRejected(t *testing.T) {
	_, err := Hash(testParams, "")
	assert.Error(t, err)
}
