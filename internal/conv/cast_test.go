package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUint64ToUint32(t *testing.T) {
	got, err := Uint64ToUint32(math.MaxUint32)
	assert.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), got)

	_, err = Uint64ToUint32(math.MaxUint32 + 1)
	assert.Error(t, err)
}

func TestUint64ToInt(t *testing.T) {
	got, err := Uint64ToInt(42)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = Uint64ToInt(math.MaxUint64)
	assert.Error(t, err)
}

func TestInt64ToUint64(t *testing.T) {
	got, err := Int64ToUint64(7)
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), got)

	_, err = Int64ToUint64(-7)
	assert.Error(t, err)
}
