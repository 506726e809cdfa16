package relations

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	assert := require.New(t)

	// tagged releases carry a plain version
	assert.Empty(Version.Pre)
	assert.Empty(Version.Build)
}

func TestFieldModuli(t *testing.T) {
	assert := require.New(t)

	seen := make(map[string]bool)
	for _, q := range append(ScalarFields(), SmallFields()...) {
		assert.True(q.ProbablyPrime(20), "modulus %s", q)
		assert.False(seen[q.String()], "duplicate modulus %s", q)
		seen[q.String()] = true
	}
	for _, q := range ScalarFields() {
		assert.Greater(q.BitLen(), 64, "scalar fields need multiple limbs")
	}
	for _, q := range SmallFields() {
		assert.LessOrEqual(q.BitLen(), 32, "small fields fit a single limb")
	}
}
