package core

import (
	"math/big"
	"testing"

	"kitties-ledger/core/balances"
	"kitties-ledger/core/model"
	"kitties-ledger/core/store"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

type staticRandomness []byte

func (r staticRandomness) RandomSeed() []byte {
	return r
}

type recorder struct {
	events []model.Event
}

func (r *recorder) Emit(event model.Event) {
	r.events = append(r.events, event)
}

func account(n int64) common.Address {
	return common.BigToAddress(big.NewInt(n))
}

// harness mirrors a small runtime: accounts 0 to 3 start with 100 free,
// the existential deposit and the reserve value are both 1.
type harness struct {
	kitties *Kitties
	ledger  *balances.Ledger
	store   store.Store
	events  *recorder
	seq     uint64
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithStore(t, store.NewMemory())
}

func newHarnessWithStore(t *testing.T, s store.Store) *harness {
	ledger := balances.NewLedger(balances.NewMemoryBackend(), uint256.NewInt(1))
	for n := int64(0); n < 4; n++ {
		require.NoError(t, ledger.Endow(account(n), uint256.NewInt(100)))
	}

	events := &recorder{}
	return &harness{
		kitties: New(Config{ReserveValue: uint256.NewInt(1)}, s, ledger, staticRandomness("seed"), events),
		ledger:  ledger,
		store:   s,
		events:  events,
	}
}

func (h *harness) call(n int64) model.Call {
	h.seq++
	return model.Call{Account: account(n), Index: h.seq}
}

func (h *harness) owner(t *testing.T, id model.KittyIndex) common.Address {
	owner, ok, err := h.kitties.Owner(id)
	require.NoError(t, err)
	require.True(t, ok, "kitty %d has no owner", id)
	return owner
}

func (h *harness) count(t *testing.T) model.KittyIndex {
	n, err := h.kitties.Count()
	require.NoError(t, err)
	return n
}

type snapshot struct {
	count    model.KittyIndex
	records  []Record
	accounts []balances.Account
	events   int
}

func (h *harness) snapshot(t *testing.T) snapshot {
	records, err := h.kitties.All()
	require.NoError(t, err)

	var accounts []balances.Account
	for n := int64(0); n < 4; n++ {
		acct, err := h.ledger.Account(account(n))
		require.NoError(t, err)
		accounts = append(accounts, acct)
	}

	return snapshot{
		count:    h.count(t),
		records:  records,
		accounts: accounts,
		events:   len(h.events.events),
	}
}

// requireUnchanged asserts that a failed operation left no trace.
func (h *harness) requireUnchanged(t *testing.T, before snapshot) {
	t.Helper()
	require.Equal(t, before, h.snapshot(t))
}
