// Package balances is a reservable currency ledger: every account has a
// free balance it can spend and a reserved balance held against it.
package balances

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrKeepAlive           = errors.New("transfer would reap the sender")
	ErrExistentialDeposit  = errors.New("value too low to create account")
	ErrOverflow            = errors.New("balance overflow")
)

type Account struct {
	Free     *uint256.Int
	Reserved *uint256.Int
}

func NewAccount() Account {
	return Account{Free: uint256.NewInt(0), Reserved: uint256.NewInt(0)}
}

func (a Account) Total() *uint256.Int {
	return new(uint256.Int).Add(a.Free, a.Reserved)
}

func (a Account) clone() Account {
	return Account{Free: a.Free.Clone(), Reserved: a.Reserved.Clone()}
}

// Backend persists accounts. Get returns a zero account for unknown
// addresses; Apply writes all changes at once or none of them.
type Backend interface {
	Get(addr common.Address) (Account, error)
	Apply(changes map[common.Address]Account) error
}

type Ledger struct {
	mu                 sync.Mutex
	backend            Backend
	existentialDeposit *uint256.Int
}

func NewLedger(backend Backend, existentialDeposit *uint256.Int) *Ledger {
	return &Ledger{
		backend:            backend,
		existentialDeposit: existentialDeposit.Clone(),
	}
}

func (l *Ledger) ExistentialDeposit() *uint256.Int {
	return l.existentialDeposit.Clone()
}

func (l *Ledger) account(addr common.Address) (Account, error) {
	acct, err := l.backend.Get(addr)
	if err != nil {
		return Account{}, err
	}
	return acct.clone(), nil
}

// Account returns a copy of the stored balances of addr.
func (l *Ledger) Account(addr common.Address) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.account(addr)
}

// Free returns the free balance of addr.
func (l *Ledger) Free(addr common.Address) (*uint256.Int, error) {
	acct, err := l.Account(addr)
	if err != nil {
		return nil, err
	}
	return acct.Free, nil
}

// FreeBalance is Free for display: a backend error is logged and reads as
// zero. Checks that gate a state change use Free.
func (l *Ledger) FreeBalance(addr common.Address) *uint256.Int {
	free, err := l.Free(addr)
	if err != nil {
		logrus.Errorf("FreeBalance %s err: %v", addr.Hex(), err)
		return uint256.NewInt(0)
	}
	return free
}

func (l *Ledger) ReservedBalance(addr common.Address) *uint256.Int {
	acct, err := l.Account(addr)
	if err != nil {
		logrus.Errorf("ReservedBalance %s err: %v", addr.Hex(), err)
		return uint256.NewInt(0)
	}
	return acct.Reserved
}

// Endow mints amount into the free balance of addr.
func (l *Ledger) Endow(addr common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, err := l.account(addr)
	if err != nil {
		return err
	}
	if _, overflow := acct.Free.AddOverflow(acct.Free, amount); overflow {
		return ErrOverflow
	}
	if acct.Total().Lt(l.existentialDeposit) {
		return ErrExistentialDeposit
	}
	return l.backend.Apply(map[common.Address]Account{addr: acct})
}

type Endowment struct {
	Account common.Address
	Amount  *uint256.Int
}

// EndowAll applies every endowment or none of them. Repeated accounts
// receive the sum of their amounts.
func (l *Ledger) EndowAll(endowments []Endowment) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	changes := make(map[common.Address]Account, len(endowments))
	for _, e := range endowments {
		acct, ok := changes[e.Account]
		if !ok {
			var err error
			if acct, err = l.account(e.Account); err != nil {
				return err
			}
		}
		if _, overflow := acct.Free.AddOverflow(acct.Free, e.Amount); overflow {
			return ErrOverflow
		}
		changes[e.Account] = acct
	}
	for _, acct := range changes {
		if acct.Total().Lt(l.existentialDeposit) {
			return ErrExistentialDeposit
		}
	}
	return l.backend.Apply(changes)
}

// Reserve moves amount from the free to the reserved balance of addr.
func (l *Ledger) Reserve(addr common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, err := l.account(addr)
	if err != nil {
		return err
	}
	if acct.Free.Lt(amount) {
		return ErrInsufficientBalance
	}
	acct.Free.Sub(acct.Free, amount)
	acct.Reserved.Add(acct.Reserved, amount)

	return l.backend.Apply(map[common.Address]Account{addr: acct})
}

// Unreserve moves up to amount from the reserved back to the free balance
// of addr and returns the part that could not be unreserved.
func (l *Ledger) Unreserve(addr common.Address, amount *uint256.Int) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, err := l.account(addr)
	if err != nil {
		logrus.Errorf("Unreserve %s err: %v", addr.Hex(), err)
		return amount.Clone()
	}

	actual := amount.Clone()
	if acct.Reserved.Lt(actual) {
		actual = acct.Reserved.Clone()
	}
	acct.Reserved.Sub(acct.Reserved, actual)
	acct.Free.Add(acct.Free, actual)

	if err := l.backend.Apply(map[common.Address]Account{addr: acct}); err != nil {
		logrus.Errorf("Unreserve %s err: %v", addr.Hex(), err)
		return amount.Clone()
	}
	return new(uint256.Int).Sub(amount, actual)
}

// Transfer moves amount of free balance from one account to another. With
// keepAlive the sender must keep at least the existential deposit.
func (l *Ledger) Transfer(from, to common.Address, amount *uint256.Int, keepAlive bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount.IsZero() || from == to {
		return nil
	}

	fromAcct, err := l.account(from)
	if err != nil {
		return err
	}
	toAcct, err := l.account(to)
	if err != nil {
		return err
	}

	if fromAcct.Free.Lt(amount) {
		return ErrInsufficientBalance
	}
	fromAcct.Free.Sub(fromAcct.Free, amount)
	if keepAlive && fromAcct.Total().Lt(l.existentialDeposit) {
		return ErrKeepAlive
	}

	if _, overflow := toAcct.Free.AddOverflow(toAcct.Free, amount); overflow {
		return ErrOverflow
	}
	if toAcct.Total().Lt(l.existentialDeposit) {
		return ErrExistentialDeposit
	}

	return l.backend.Apply(map[common.Address]Account{
		from: fromAcct,
		to:   toAcct,
	})
}
