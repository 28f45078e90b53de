package balances

import (
	"path/filepath"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	carol = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func ledgers(t *testing.T) map[string]*Ledger {
	db, err := bolt.Open(filepath.Join(t.TempDir(), "balances.db"), 0660, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	boltBackend, err := NewBoltBackend(db)
	require.NoError(t, err)

	return map[string]*Ledger{
		"Memory": NewLedger(NewMemoryBackend(), uint256.NewInt(1)),
		"Bolt":   NewLedger(boltBackend, uint256.NewInt(1)),
	}
}

func TestLedger(t *testing.T) {
	for name, l := range ledgers(t) {
		l := l
		t.Run(name, func(t *testing.T) {
			require.NoError(t, l.Endow(alice, uint256.NewInt(100)))
			require.NoError(t, l.Endow(bob, uint256.NewInt(100)))

			t.Run("Reserve", func(t *testing.T) {
				require.NoError(t, l.Reserve(alice, uint256.NewInt(10)))
				require.Equal(t, uint256.NewInt(90), l.FreeBalance(alice))
				require.Equal(t, uint256.NewInt(10), l.ReservedBalance(alice))

				require.ErrorIs(t, l.Reserve(alice, uint256.NewInt(91)), ErrInsufficientBalance)
				require.Equal(t, uint256.NewInt(90), l.FreeBalance(alice))
			})

			t.Run("Unreserve", func(t *testing.T) {
				left := l.Unreserve(alice, uint256.NewInt(4))
				require.True(t, left.IsZero())
				require.Equal(t, uint256.NewInt(94), l.FreeBalance(alice))

				left = l.Unreserve(alice, uint256.NewInt(10))
				require.Equal(t, uint256.NewInt(4), left)
				require.Equal(t, uint256.NewInt(100), l.FreeBalance(alice))
				require.True(t, l.ReservedBalance(alice).IsZero())
			})

			t.Run("Transfer", func(t *testing.T) {
				require.NoError(t, l.Transfer(bob, alice, uint256.NewInt(30), true))
				require.Equal(t, uint256.NewInt(70), l.FreeBalance(bob))
				require.Equal(t, uint256.NewInt(130), l.FreeBalance(alice))

				require.ErrorIs(t, l.Transfer(bob, alice, uint256.NewInt(71), true), ErrInsufficientBalance)
				require.Equal(t, uint256.NewInt(70), l.FreeBalance(bob))
			})

			t.Run("KeepAlive", func(t *testing.T) {
				require.ErrorIs(t, l.Transfer(bob, alice, uint256.NewInt(70), true), ErrKeepAlive)
				require.Equal(t, uint256.NewInt(70), l.FreeBalance(bob))

				// a reservation keeps the account alive
				require.NoError(t, l.Reserve(bob, uint256.NewInt(1)))
				require.NoError(t, l.Transfer(bob, alice, uint256.NewInt(69), true))
				require.True(t, l.FreeBalance(bob).IsZero())
				l.Unreserve(bob, uint256.NewInt(1))
			})

			t.Run("AllowDeath", func(t *testing.T) {
				require.NoError(t, l.Transfer(bob, carol, uint256.NewInt(1), false))
				require.True(t, l.FreeBalance(bob).IsZero())
				require.Equal(t, uint256.NewInt(1), l.FreeBalance(carol))
			})

			t.Run("ExistentialDeposit", func(t *testing.T) {
				require.ErrorIs(t, l.Endow(common.HexToAddress("0x44"), uint256.NewInt(0)), ErrExistentialDeposit)
			})
		})
	}
}

func TestEndowAll(t *testing.T) {
	for name, l := range ledgers(t) {
		l := l
		t.Run(name, func(t *testing.T) {
			dave := common.HexToAddress("0x44")

			err := l.EndowAll([]Endowment{
				{Account: alice, Amount: uint256.NewInt(50)},
				{Account: dave, Amount: uint256.NewInt(0)},
			})
			require.ErrorIs(t, err, ErrExistentialDeposit)
			require.True(t, l.FreeBalance(alice).IsZero())

			require.NoError(t, l.EndowAll([]Endowment{
				{Account: alice, Amount: uint256.NewInt(50)},
				{Account: bob, Amount: uint256.NewInt(20)},
				{Account: alice, Amount: uint256.NewInt(5)},
			}))
			free, err := l.Free(alice)
			require.NoError(t, err)
			require.Equal(t, uint256.NewInt(55), free)
			require.Equal(t, uint256.NewInt(20), l.FreeBalance(bob))
		})
	}
}
