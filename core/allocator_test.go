package core

import (
	"testing"

	"kitties-ledger/core/model"
	"kitties-ledger/core/store"

	"github.com/stretchr/testify/require"
)

func TestIndexAllocator(t *testing.T) {
	s := store.NewMemory()

	err := s.Update(func(tx store.Tx) error {
		alloc := IndexAllocator{tx: tx}

		id, err := alloc.Next()
		require.NoError(t, err)
		require.Equal(t, model.KittyIndex(0), id)

		require.NoError(t, alloc.Advance(id))
		id, err = alloc.Next()
		require.NoError(t, err)
		require.Equal(t, model.KittyIndex(1), id)
		return nil
	})
	require.NoError(t, err)
}

func TestIndexAllocatorOverflow(t *testing.T) {
	s := store.NewMemory()

	err := s.Update(func(tx store.Tx) error {
		require.NoError(t, tx.SetCount(model.MaxKittyIndex-1))
		alloc := IndexAllocator{tx: tx}

		id, err := alloc.Next()
		require.NoError(t, err)
		require.NoError(t, alloc.Advance(id))

		_, err = alloc.Next()
		require.ErrorIs(t, err, model.ErrIdentifierOverflow)
		return nil
	})
	require.NoError(t, err)
}
