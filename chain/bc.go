package chain

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

type HeaderReader interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

type BlockchainClient struct {
	client *ethclient.Client
}

func NewBlockchainClient(ethURL string) (*BlockchainClient, error) {
	client, err := ethclient.Dial(ethURL)
	if err != nil {
		return nil, err
	}
	return &BlockchainClient{client: client}, nil
}

func (bc *BlockchainClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return bc.client.HeaderByNumber(ctx, number)
}

func (bc *BlockchainClient) GetLatestBlockNumber() (int64, error) {
	header, err := bc.client.HeaderByNumber(context.Background(), nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Int64(), nil
}

func (bc *BlockchainClient) Close() {
	bc.client.Close()
}

// RandomSource seeds kitties with the hash of the latest block header. When
// the node can't be reached the last hash seen is reused.
type RandomSource struct {
	reader  HeaderReader
	timeout time.Duration

	mu   sync.Mutex
	last common.Hash
}

func NewRandomSource(reader HeaderReader, timeout time.Duration) *RandomSource {
	return &RandomSource{reader: reader, timeout: timeout}
}

func (r *RandomSource) RandomSeed() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	header, err := r.reader.HeaderByNumber(ctx, nil)
	if err != nil {
		logrus.Errorf("RandomSeed latest header err: %v", err)
		return r.last.Bytes()
	}
	r.last = header.Hash()
	logrus.Debugf("RandomSeed block %d hash %s", header.Number.Uint64(), r.last.Hex())

	return r.last.Bytes()
}

// StaticSource always returns the same seed. Kitties still differ by caller
// and call sequence number.
type StaticSource []byte

func (s StaticSource) RandomSeed() []byte {
	return s
}
