package spscring_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/ringware/spscring"
)

func Test_DefaultAllocator_AlignmentHonoured(t *testing.T) {
	a := spscring.NewDefaultAllocator()

	for _, align := range []uintptr{1, 2, 8, 64, 128, 256} {
		ptr, err := a.Allocate(37, align)
		require.NoError(t, err)
		require.Zero(t, uintptr(ptr)%align, "align=%d", align)
		a.Free(ptr)
	}
}

func Test_DefaultAllocator_NonPowerOfTwoAlignRoundsUp(t *testing.T) {
	a := spscring.NewDefaultAllocator()

	ptr, err := a.Allocate(16, 24) // not a power of 2
	require.NoError(t, err)
	// rounded up to 32, so the result must at least satisfy 16-byte alignment.
	require.Zero(t, uintptr(ptr)%16)
	a.Free(ptr)
}

func Test_DefaultAllocator_FreeUnknownPointerIsNoop(t *testing.T) {
	a := spscring.NewDefaultAllocator()
	var x int
	require.NotPanics(t, func() {
		a.Free(unsafe.Pointer(&x))
		a.Free(nil)
	})
}

func Test_DefaultAllocator_DistinctAllocationsDoNotOverlap(t *testing.T) {
	a := spscring.NewDefaultAllocator()

	p1, err := a.Allocate(64, 8)
	require.NoError(t, err)
	p2, err := a.Allocate(64, 8)
	require.NoError(t, err)

	require.NotEqual(t, p1, p2)
	a.Free(p1)
	a.Free(p2)
}
