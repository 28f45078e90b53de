package store

import (
	"errors"
	"path/filepath"
	"testing"

	"kitties-ledger/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	db, err := OpenBolt(filepath.Join(t.TempDir(), "kitties.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Store{
		"Memory": NewMemory(),
		"Bolt":   db,
	}
}

var (
	alice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	dna   = model.DNA{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
)

func TestStore(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			t.Run("EmptyCounter", func(t *testing.T) {
				err := s.View(func(tx Tx) error {
					n, ok, err := tx.Count()
					require.NoError(t, err)
					require.False(t, ok)
					require.Equal(t, model.KittyIndex(0), n)
					return nil
				})
				require.NoError(t, err)
			})

			t.Run("InsertWritesKittyAndOwner", func(t *testing.T) {
				err := s.Update(func(tx Tx) error {
					if err := tx.Insert(0, model.Kitty{DNA: dna}, alice); err != nil {
						return err
					}
					return tx.SetCount(1)
				})
				require.NoError(t, err)

				err = s.View(func(tx Tx) error {
					kitty, err := tx.Kitty(0)
					require.NoError(t, err)
					require.NotNil(t, kitty)
					require.Equal(t, dna, kitty.DNA)

					owner, ok, err := tx.Owner(0)
					require.NoError(t, err)
					require.True(t, ok)
					require.Equal(t, alice, owner)

					n, ok, err := tx.Count()
					require.NoError(t, err)
					require.True(t, ok)
					require.Equal(t, model.KittyIndex(1), n)
					return nil
				})
				require.NoError(t, err)
			})

			t.Run("InsertTwiceFails", func(t *testing.T) {
				err := s.Update(func(tx Tx) error {
					return tx.Insert(0, model.Kitty{}, bob)
				})
				require.ErrorIs(t, err, ErrKittyExists)
			})

			t.Run("SetOwnerNeedsKitty", func(t *testing.T) {
				err := s.Update(func(tx Tx) error {
					return tx.SetOwner(5, bob)
				})
				require.ErrorIs(t, err, ErrUnknownKitty)

				err = s.View(func(tx Tx) error {
					_, ok, err := tx.Owner(5)
					require.NoError(t, err)
					require.False(t, ok)
					return nil
				})
				require.NoError(t, err)
			})

			t.Run("FailedUpdateRollsBack", func(t *testing.T) {
				boom := errors.New("boom")
				err := s.Update(func(tx Tx) error {
					require.NoError(t, tx.Insert(1, model.Kitty{DNA: dna}, bob))
					require.NoError(t, tx.SetOwner(0, bob))
					require.NoError(t, tx.PutListing(0, uint256.NewInt(10)))
					require.NoError(t, tx.SetCount(2))
					return boom
				})
				require.ErrorIs(t, err, boom)

				err = s.View(func(tx Tx) error {
					kitty, err := tx.Kitty(1)
					require.NoError(t, err)
					require.Nil(t, kitty)

					owner, _, err := tx.Owner(0)
					require.NoError(t, err)
					require.Equal(t, alice, owner)

					price, err := tx.Price(0)
					require.NoError(t, err)
					require.True(t, price.IsZero())

					n, _, err := tx.Count()
					require.NoError(t, err)
					require.Equal(t, model.KittyIndex(1), n)
					return nil
				})
				require.NoError(t, err)
			})

			t.Run("Listings", func(t *testing.T) {
				err := s.Update(func(tx Tx) error {
					return tx.PutListing(0, uint256.NewInt(1000))
				})
				require.NoError(t, err)

				err = s.View(func(tx Tx) error {
					price, err := tx.Price(0)
					require.NoError(t, err)
					require.Equal(t, uint256.NewInt(1000), price)
					return nil
				})
				require.NoError(t, err)

				err = s.Update(func(tx Tx) error {
					return tx.PutListing(0, uint256.NewInt(0))
				})
				require.NoError(t, err)

				err = s.View(func(tx Tx) error {
					price, err := tx.Price(0)
					require.NoError(t, err)
					require.True(t, price.IsZero())
					return nil
				})
				require.NoError(t, err)
			})

			t.Run("ReadOnlyView", func(t *testing.T) {
				err := s.View(func(tx Tx) error {
					return tx.SetCount(9)
				})
				require.ErrorIs(t, err, ErrReadOnly)
			})

			t.Run("ForEachInOrder", func(t *testing.T) {
				err := s.Update(func(tx Tx) error {
					for _, id := range []model.KittyIndex{3, 1, 2} {
						if err := tx.Insert(id, model.Kitty{DNA: dna}, bob); err != nil {
							return err
						}
					}
					return nil
				})
				require.NoError(t, err)

				var ids []model.KittyIndex
				err = s.View(func(tx Tx) error {
					return tx.ForEach(func(id model.KittyIndex, kitty model.Kitty, owner common.Address) error {
						ids = append(ids, id)
						return nil
					})
				})
				require.NoError(t, err)
				require.Equal(t, []model.KittyIndex{0, 1, 2, 3}, ids)
			})
		})
	}
}

func TestBoltReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kitties.db")

	db, err := OpenBolt(path)
	require.NoError(t, err)
	err = db.Update(func(tx Tx) error {
		if err := tx.Insert(0, model.Kitty{DNA: dna}, alice); err != nil {
			return err
		}
		return tx.SetCount(1)
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenBolt(path)
	require.NoError(t, err)
	defer db.Close()

	err = db.View(func(tx Tx) error {
		kitty, err := tx.Kitty(0)
		require.NoError(t, err)
		require.Equal(t, dna, kitty.DNA)
		n, ok, err := tx.Count()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, model.KittyIndex(1), n)
		return nil
	})
	require.NoError(t, err)
}
