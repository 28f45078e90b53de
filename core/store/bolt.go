package store

import (
	"encoding/binary"
	"fmt"
	"time"

	"kitties-ledger/core/model"

	"github.com/boltdb/bolt"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

var (
	kittiesBucket  = []byte("kitties")
	ownersBucket   = []byte("owners")
	listingsBucket = []byte("listings")
	metaBucket     = []byte("meta")

	countKey = []byte("count")
)

type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the database file at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0660, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("unable to open the database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{kittiesBucket, ownersBucket, listingsBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to init the database: %w", err)
	}

	return &Bolt{db: db}, nil
}

// DB exposes the underlying database so other records can live in the same file.
func (b *Bolt) DB() *bolt.DB {
	return b.db
}

func (b *Bolt) View(fn func(tx Tx) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func (b *Bolt) Update(fn func(tx Tx) error) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

type boltTx struct {
	tx *bolt.Tx
}

func indexKey(id model.KittyIndex) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], uint64(id))
	return key[:]
}

func (t *boltTx) put(bucket, key, value []byte) error {
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	return t.tx.Bucket(bucket).Put(key, value)
}

func (t *boltTx) Count() (model.KittyIndex, bool, error) {
	val := t.tx.Bucket(metaBucket).Get(countKey)
	if val == nil {
		return 0, false, nil
	}
	if len(val) != 8 {
		return 0, false, fmt.Errorf("invalid counter length %d", len(val))
	}
	return model.KittyIndex(binary.BigEndian.Uint64(val)), true, nil
}

func (t *boltTx) SetCount(n model.KittyIndex) error {
	return t.put(metaBucket, countKey, indexKey(n))
}

func (t *boltTx) Kitty(id model.KittyIndex) (*model.Kitty, error) {
	val := t.tx.Bucket(kittiesBucket).Get(indexKey(id))
	if val == nil {
		return nil, nil
	}
	var kitty model.Kitty
	if err := rlp.DecodeBytes(val, &kitty); err != nil {
		return nil, fmt.Errorf("failed to decode kitty %d: %w", id, err)
	}
	return &kitty, nil
}

func (t *boltTx) Owner(id model.KittyIndex) (common.Address, bool, error) {
	val := t.tx.Bucket(ownersBucket).Get(indexKey(id))
	if val == nil {
		return common.Address{}, false, nil
	}
	return common.BytesToAddress(val), true, nil
}

func (t *boltTx) Insert(id model.KittyIndex, kitty model.Kitty, owner common.Address) error {
	if t.tx.Bucket(kittiesBucket).Get(indexKey(id)) != nil {
		return ErrKittyExists
	}
	val, err := rlp.EncodeToBytes(&kitty)
	if err != nil {
		return fmt.Errorf("failed to encode kitty %d: %w", id, err)
	}
	if err := t.put(kittiesBucket, indexKey(id), val); err != nil {
		return err
	}
	return t.put(ownersBucket, indexKey(id), owner.Bytes())
}

func (t *boltTx) SetOwner(id model.KittyIndex, owner common.Address) error {
	if t.tx.Bucket(kittiesBucket).Get(indexKey(id)) == nil {
		return ErrUnknownKitty
	}
	return t.put(ownersBucket, indexKey(id), owner.Bytes())
}

func (t *boltTx) Price(id model.KittyIndex) (*uint256.Int, error) {
	val := t.tx.Bucket(listingsBucket).Get(indexKey(id))
	if val == nil {
		return uint256.NewInt(0), nil
	}
	return new(uint256.Int).SetBytes(val), nil
}

func (t *boltTx) PutListing(id model.KittyIndex, price *uint256.Int) error {
	if price.IsZero() {
		return t.RemoveListing(id)
	}
	return t.put(listingsBucket, indexKey(id), price.Bytes())
}

func (t *boltTx) RemoveListing(id model.KittyIndex) error {
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	return t.tx.Bucket(listingsBucket).Delete(indexKey(id))
}

func (t *boltTx) ForEach(fn func(id model.KittyIndex, kitty model.Kitty, owner common.Address) error) error {
	return t.tx.Bucket(kittiesBucket).ForEach(func(k, v []byte) error {
		id := model.KittyIndex(binary.BigEndian.Uint64(k))

		var kitty model.Kitty
		if err := rlp.DecodeBytes(v, &kitty); err != nil {
			return fmt.Errorf("failed to decode kitty %d: %w", id, err)
		}
		owner, _, err := t.Owner(id)
		if err != nil {
			return err
		}
		return fn(id, kitty, owner)
	})
}
