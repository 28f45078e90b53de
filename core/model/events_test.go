package model

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestEventTopicsMatchABI(t *testing.T) {
	for kind, name := range eventNames {
		event, ok := KittiesEventABI.Events[name]
		require.True(t, ok, name)
		require.Equal(t, kind, eventTopics[event.ID], name)
	}
}

func TestEventLog(t *testing.T) {
	contract := common.HexToAddress("0x00000000000000000000000000000000006b6974")
	alice := common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob := common.HexToAddress("0x2222222222222222222222222222222222222222")

	t.Run("Created", func(t *testing.T) {
		log, err := Created(alice, 7).Log(contract)
		require.NoError(t, err)
		require.Equal(t, contract, log.Address)
		require.Len(t, log.Topics, 2)
		require.Equal(t, TopicsKittyCreated, log.Topics[0])

		event, err := ParseEvent(log)
		require.NoError(t, err)
		require.Equal(t, Created(alice, 7), *event)
	})

	t.Run("Transferred", func(t *testing.T) {
		log, err := Transferred(alice, bob, 42).Log(contract)
		require.NoError(t, err)
		require.Len(t, log.Topics, 3)
		require.Equal(t, common.BytesToHash(bob.Bytes()), log.Topics[2])

		event, err := ParseEvent(log)
		require.NoError(t, err)
		require.Equal(t, Transferred(alice, bob, 42), *event)
	})

	t.Run("UnknownTopic", func(t *testing.T) {
		log, err := Listed(alice, 1).Log(contract)
		require.NoError(t, err)
		log.Topics[0] = common.HexToHash("0xdeadbeef")

		_, err = ParseEvent(log)
		require.Error(t, err)
	})
}

func TestEventString(t *testing.T) {
	alice := common.HexToAddress("0x1111111111111111111111111111111111111111")
	require.Equal(t, "KittyPurchased(0x1111111111111111111111111111111111111111, 3)", Purchased(alice, 3).String())
	require.Equal(t, "EventKind(99)", EventKind(99).String())
}

func TestHashes(t *testing.T) {
	require.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", Keccak256(""))

	sum := Blake2_128(nil)
	require.Equal(t, "cae66941d9efbd404e4d88758ea67670", hex.EncodeToString(sum[:]))
}
