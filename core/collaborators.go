package core

import (
	"kitties-ledger/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Currency is the reservable balance system kitties are backed by.
type Currency interface {
	Reserve(account common.Address, amount *uint256.Int) error
	// Unreserve returns the amount that could not be unreserved. Callers
	// ignore it.
	Unreserve(account common.Address, amount *uint256.Int) *uint256.Int
	Transfer(from, to common.Address, amount *uint256.Int, keepAlive bool) error
	Free(account common.Address) (*uint256.Int, error)
}

type Randomness interface {
	RandomSeed() []byte
}

type EventSink interface {
	Emit(event model.Event)
}
