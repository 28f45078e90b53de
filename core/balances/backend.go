package balances

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/boltdb/bolt"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

type memoryBackend struct {
	mu       sync.RWMutex
	accounts map[common.Address]Account
}

func NewMemoryBackend() Backend {
	return &memoryBackend{accounts: make(map[common.Address]Account)}
}

func (m *memoryBackend) Get(addr common.Address) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.accounts[addr]
	if !ok {
		return NewAccount(), nil
	}
	return acct, nil
}

func (m *memoryBackend) Apply(changes map[common.Address]Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for addr, acct := range changes {
		m.accounts[addr] = acct.clone()
	}
	return nil
}

var balancesBucket = []byte("balances")

type boltBackend struct {
	db *bolt.DB
}

// accountRecord is the stored form of an Account.
type accountRecord struct {
	Free     *big.Int
	Reserved *big.Int
}

// NewBoltBackend keeps accounts in a bucket of db.
func NewBoltBackend(db *bolt.DB) (Backend, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(balancesBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unable to init the balances bucket: %w", err)
	}
	return &boltBackend{db: db}, nil
}

func (b *boltBackend) Get(addr common.Address) (Account, error) {
	acct := NewAccount()

	err := b.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(balancesBucket).Get(addr.Bytes())
		if val == nil {
			return nil
		}
		var rec accountRecord
		if err := rlp.DecodeBytes(val, &rec); err != nil {
			return fmt.Errorf("failed to decode account %s: %w", addr.Hex(), err)
		}
		if overflow := acct.Free.SetFromBig(rec.Free); overflow {
			return fmt.Errorf("free balance of %s overflows", addr.Hex())
		}
		if overflow := acct.Reserved.SetFromBig(rec.Reserved); overflow {
			return fmt.Errorf("reserved balance of %s overflows", addr.Hex())
		}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	return acct, nil
}

func (b *boltBackend) Apply(changes map[common.Address]Account) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(balancesBucket)
		for addr, acct := range changes {
			val, err := rlp.EncodeToBytes(&accountRecord{
				Free:     acct.Free.ToBig(),
				Reserved: acct.Reserved.ToBig(),
			})
			if err != nil {
				return fmt.Errorf("failed to encode account %s: %w", addr.Hex(), err)
			}
			if err := bucket.Put(addr.Bytes(), val); err != nil {
				return err
			}
		}
		return nil
	})
}
