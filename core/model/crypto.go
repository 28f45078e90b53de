package model

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

func Keccak256(data string) string {
	hasher := sha3.NewLegacyKeccak256()

	hasher.Write([]byte(data))

	hash := hasher.Sum(nil)

	return fmt.Sprintf("%x", hash)
}

// Blake2_128 returns the 16 byte blake2b digest of data.
func Blake2_128(data []byte) [16]byte {
	var out [16]byte

	// only fails for a bad size or an oversized key
	hasher, err := blake2b.New(16, nil)
	if err != nil {
		panic(err)
	}
	hasher.Write(data)
	copy(out[:], hasher.Sum(nil))

	return out
}
