// Package store holds kitty, owner and listing records together with the
// kitty counter. All access goes through transactions: a failed Update
// leaves no trace.
package store

import (
	"errors"

	"kitties-ledger/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrKittyExists  = errors.New("kitty already exists")
	ErrUnknownKitty = errors.New("unknown kitty")
	ErrReadOnly     = errors.New("read-only transaction")
)

// Tx is a view of the store inside a transaction.
//
// Insert writes a kitty and its owner together and SetOwner refuses
// kitties that were never inserted, so an owner record exists exactly
// when the kitty does.
type Tx interface {
	// Count returns the counter and whether it was ever written.
	Count() (model.KittyIndex, bool, error)
	SetCount(n model.KittyIndex) error

	// Kitty returns nil when id has no kitty.
	Kitty(id model.KittyIndex) (*model.Kitty, error)
	Owner(id model.KittyIndex) (common.Address, bool, error)
	Insert(id model.KittyIndex, kitty model.Kitty, owner common.Address) error
	SetOwner(id model.KittyIndex, owner common.Address) error

	// Price returns zero when id is not listed.
	Price(id model.KittyIndex) (*uint256.Int, error)
	// PutListing with a zero price removes the listing.
	PutListing(id model.KittyIndex, price *uint256.Int) error
	RemoveListing(id model.KittyIndex) error

	// ForEach visits kitties in index order.
	ForEach(fn func(id model.KittyIndex, kitty model.Kitty, owner common.Address) error) error
}

type Store interface {
	View(fn func(tx Tx) error) error
	// Update commits the writes made by fn only if fn returns nil.
	Update(fn func(tx Tx) error) error
	Close() error
}
