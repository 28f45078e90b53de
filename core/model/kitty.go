package model

import (
	"math"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// KittyIndex identifies a kitty. Indexes are handed out in increasing order
// starting at zero and are never reused.
type KittyIndex uint64

const MaxKittyIndex = KittyIndex(math.MaxUint64)

const DNALength = 16

type DNA [DNALength]byte

func (d DNA) String() string {
	return hexutil.Encode(d[:])
}

type Kitty struct {
	DNA DNA
}
