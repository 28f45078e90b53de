package core

import (
	"encoding/binary"

	"kitties-ledger/core/model"

	"github.com/ethereum/go-ethereum/common"
)

// DeriveSeed hashes entropy, the caller and the call sequence number into
// 16 bytes. Identical inputs give identical seeds.
func DeriveSeed(entropy []byte, actor common.Address, sequence uint64) model.DNA {
	payload := make([]byte, 0, len(entropy)+common.AddressLength+8)
	payload = append(payload, entropy...)
	payload = append(payload, actor.Bytes()...)
	payload = binary.BigEndian.AppendUint64(payload, sequence)

	return model.Blake2_128(payload)
}

// Combine takes each bit from a where the mask bit is set and from b
// otherwise.
func Combine(a, b, mask model.DNA) model.DNA {
	var dna model.DNA
	for i := range dna {
		dna[i] = (mask[i] & a[i]) | (^mask[i] & b[i])
	}
	return dna
}
