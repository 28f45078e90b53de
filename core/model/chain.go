package model

import (
	"github.com/ethereum/go-ethereum/common"
)

// Call is an authenticated invocation as resolved by the host. Index is the
// host's per-call sequence number and only ever increases.
type Call struct {
	Account common.Address
	Index   uint64
}
