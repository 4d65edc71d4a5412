package spscring_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ringware/spscring"
)

func Test_Ring_PushMany_PartialBatch(t *testing.T) {
	r := spscring.NewRing[int]()
	alloc := spscring.NewDefaultAllocator()
	require.NoError(t, r.Allocate(alloc, 3))
	defer func() { require.NoError(t, r.Free(alloc)) }()

	remainder := r.PushMany([]int{1, 2, 3, 4, 5})
	require.Equal(t, []int{4, 5}, remainder)
	require.Equal(t, 3, r.Size())

	dst := make([]int, 3)
	n := r.PopMany(dst)
	require.Equal(t, 3, n)
	require.Equal(t, []int{1, 2, 3}, dst)
	require.True(t, r.Empty())
}

func Test_Ring_PushMany_WrapsAcrossStorageEnd(t *testing.T) {
	const capacity = 4
	r := spscring.NewRing[int]()
	alloc := spscring.NewDefaultAllocator()
	require.NoError(t, r.Allocate(alloc, capacity))
	defer func() { require.NoError(t, r.Free(alloc)) }()

	require.True(t, r.TryPush(100))
	require.True(t, r.TryPush(101))
	_, ok := r.TryPop()
	require.True(t, ok)
	_, ok = r.TryPop()
	require.True(t, ok)

	// push index now sits mid-storage; a 4-element PushMany must wrap to
	// land the tail of the run back at the start of the backing array.
	remainder := r.PushMany([]int{1, 2, 3, 4})
	require.Empty(t, remainder)
	require.Equal(t, capacity, r.Size())

	dst := make([]int, capacity)
	n := r.PopMany(dst)
	require.Equal(t, capacity, n)
	require.Equal(t, []int{1, 2, 3, 4}, dst)
}

func Test_Ring_PopMany_EmptyReturnsZero(t *testing.T) {
	r := spscring.NewRing[int]()
	alloc := spscring.NewDefaultAllocator()
	require.NoError(t, r.Allocate(alloc, 4))
	defer func() { require.NoError(t, r.Free(alloc)) }()

	dst := make([]int, 4)
	n := r.PopMany(dst)
	require.Zero(t, n)
}

func Test_Ring_PushMany_FullReturnsAllAsRemainder(t *testing.T) {
	r := spscring.NewRing[int]()
	alloc := spscring.NewDefaultAllocator()
	require.NoError(t, r.Allocate(alloc, 2))
	defer func() {
		for !r.Empty() {
			_, _ = r.TryPop()
		}
		require.NoError(t, r.Free(alloc))
	}()

	require.True(t, r.TryPush(1))
	require.True(t, r.TryPush(2))

	remainder := r.PushMany([]int{3, 4})
	require.Equal(t, []int{3, 4}, remainder)
}

func Test_Ring_PushMany_EmptyInput(t *testing.T) {
	r := spscring.NewRing[int]()
	alloc := spscring.NewDefaultAllocator()
	require.NoError(t, r.Allocate(alloc, 4))
	defer func() { require.NoError(t, r.Free(alloc)) }()

	remainder := r.PushMany(nil)
	require.Empty(t, remainder)
	require.Zero(t, r.Size())
}
