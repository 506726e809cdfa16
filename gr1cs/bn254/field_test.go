package cs

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/snarkcore/relations/gr1cs"
)

func TestElementConversion(t *testing.T) {
	assert := require.New(t)
	f := NewField()

	var r fr.Element
	_, err := r.SetRandom()
	assert.NoError(err)

	e := fromElement(r)
	assert.Equal(r, toElement(e))
	assert.Equal(r.String(), f.String(e))
}

func TestFromInterface(t *testing.T) {
	assert := require.New(t)
	f := NewField()

	one := f.One()
	assert.True(f.IsOne(one))
	assert.Equal(one, f.FromInterface(1))
	assert.Equal(f.FromInterface(42), f.FromInterface("42"))
	assert.Equal(f.FromInterface(42), f.FromInterface(big.NewInt(42)))
	assert.Equal(f.FromInterface(42), f.FromInterface(uint64(42)))

	// negative values wrap around the modulus
	assert.Equal(f.Neg(one), f.FromInterface(-1))

	// the modulus itself reduces to zero
	assert.True(f.FromInterface(fr.Modulus()).IsZero())
}

func TestFieldOps(t *testing.T) {
	assert := require.New(t)
	f := NewField()

	two := f.FromInterface(2)
	three := f.FromInterface(3)

	assert.Equal(f.FromInterface(5), f.Add(two, three))
	assert.Equal(f.FromInterface(6), f.Mul(two, three))
	assert.Equal(f.Neg(f.FromInterface(1)), f.Sub(two, three))

	inv, ok := f.Inverse(f.FromInterface(4))
	assert.True(ok)
	assert.True(f.IsOne(f.Mul(inv, f.FromInterface(4))))

	var zero gr1cs.U64
	_, ok = f.Inverse(zero)
	assert.False(ok)
}

func TestFieldUint64(t *testing.T) {
	assert := require.New(t)
	f := NewField()

	v, ok := f.Uint64(f.FromInterface(42))
	assert.True(ok)
	assert.Equal(uint64(42), v)

	_, ok = f.Uint64(f.FromInterface("9444732965739290427392")) // 2^73
	assert.False(ok)

	assert.Equal(big.NewInt(1234), f.ToBigInt(f.FromInterface(1234)))
	assert.Equal(0, f.Modulus().Cmp(fr.Modulus()))
}
