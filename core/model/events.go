package model

import (
	"fmt"
	"strings"

	"kitties-ledger/utils/generics/must"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type EventKind uint8

const (
	EventCreated EventKind = iota + 1
	EventTransferred
	EventBred
	EventListed
	EventPurchased
)

var eventNames = map[EventKind]string{
	EventCreated:     "KittyCreated",
	EventTransferred: "KittyTransferred",
	EventBred:        "KittyBred",
	EventListed:      "KittyListed",
	EventPurchased:   "KittyPurchased",
}

func (kind EventKind) String() string {
	name, ok := eventNames[kind]
	if !ok {
		return fmt.Sprintf("EventKind(%d)", uint8(kind))
	}
	return name
}

// Event is emitted once at the end of every successful operation.
// To is only set for EventTransferred, where Account is the previous owner.
type Event struct {
	Kind    EventKind
	Account common.Address
	To      common.Address
	Kitty   KittyIndex
}

func Created(account common.Address, id KittyIndex) Event {
	return Event{Kind: EventCreated, Account: account, Kitty: id}
}

func Transferred(from, to common.Address, id KittyIndex) Event {
	return Event{Kind: EventTransferred, Account: from, To: to, Kitty: id}
}

func Bred(account common.Address, id KittyIndex) Event {
	return Event{Kind: EventBred, Account: account, Kitty: id}
}

func Listed(account common.Address, id KittyIndex) Event {
	return Event{Kind: EventListed, Account: account, Kitty: id}
}

func Purchased(account common.Address, id KittyIndex) Event {
	return Event{Kind: EventPurchased, Account: account, Kitty: id}
}

func (e Event) String() string {
	if e.Kind == EventTransferred {
		return fmt.Sprintf("%s(%s, %s, %d)", e.Kind, e.Account.Hex(), e.To.Hex(), e.Kitty)
	}
	return fmt.Sprintf("%s(%s, %d)", e.Kind, e.Account.Hex(), e.Kitty)
}

// Indexed inputs come first so topics map onto inputs by position.
const KittiesEventABIJson = `[
{"anonymous":false,"inputs":[{"indexed":true,"name":"account","type":"address"},{"indexed":false,"name":"kitty","type":"uint64"}],"name":"KittyCreated","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"kitty","type":"uint64"}],"name":"KittyTransferred","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"name":"account","type":"address"},{"indexed":false,"name":"kitty","type":"uint64"}],"name":"KittyBred","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"name":"account","type":"address"},{"indexed":false,"name":"kitty","type":"uint64"}],"name":"KittyListed","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"name":"account","type":"address"},{"indexed":false,"name":"kitty","type":"uint64"}],"name":"KittyPurchased","type":"event"}
]`

var (
	KittiesEventABI = must.Must(abi.JSON(strings.NewReader(KittiesEventABIJson)))

	TopicsKittyCreated     = common.HexToHash("0x" + Keccak256("KittyCreated(address,uint64)"))
	TopicsKittyTransferred = common.HexToHash("0x" + Keccak256("KittyTransferred(address,address,uint64)"))
	TopicsKittyBred        = common.HexToHash("0x" + Keccak256("KittyBred(address,uint64)"))
	TopicsKittyListed      = common.HexToHash("0x" + Keccak256("KittyListed(address,uint64)"))
	TopicsKittyPurchased   = common.HexToHash("0x" + Keccak256("KittyPurchased(address,uint64)"))
)

var eventTopics = map[common.Hash]EventKind{
	TopicsKittyCreated:     EventCreated,
	TopicsKittyTransferred: EventTransferred,
	TopicsKittyBred:        EventBred,
	TopicsKittyListed:      EventListed,
	TopicsKittyPurchased:   EventPurchased,
}

// Log encodes the event as an EVM style log emitted from address.
func (e Event) Log(address common.Address) (*types.Log, error) {
	event, exists := KittiesEventABI.Events[e.Kind.String()]
	if !exists {
		return nil, fmt.Errorf("event '%s' not found", e.Kind)
	}

	data, err := event.Inputs.NonIndexed().Pack(uint64(e.Kitty))
	if err != nil {
		return nil, fmt.Errorf("failed to pack event data: %w", err)
	}

	topics := []common.Hash{event.ID, common.BytesToHash(e.Account.Bytes())}
	if e.Kind == EventTransferred {
		topics = append(topics, common.BytesToHash(e.To.Bytes()))
	}

	return &types.Log{
		Address: address,
		Topics:  topics,
		Data:    data,
	}, nil
}

func ParseEventLog(parsedAbi abi.ABI, eventName string, logData *types.Log) (map[string]interface{}, error) {
	event, exists := parsedAbi.Events[eventName]
	if !exists {
		return nil, fmt.Errorf("event '%s' not found", eventName)
	}

	var err error
	eventData := make(map[string]interface{})
	err = parsedAbi.UnpackIntoMap(eventData, eventName, logData.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack event data: %w", err)
	}

	for i, topic := range logData.Topics[1:] {
		indexedName := event.Inputs[i].Name
		eventData[indexedName] = topic
	}

	return eventData, nil
}

// ParseEvent decodes a log produced by Event.Log.
func ParseEvent(logData *types.Log) (*Event, error) {
	if len(logData.Topics) < 2 {
		return nil, fmt.Errorf("log has %d topics, want at least 2", len(logData.Topics))
	}
	kind, ok := eventTopics[logData.Topics[0]]
	if !ok {
		return nil, fmt.Errorf("unknown event topic %s", logData.Topics[0].Hex())
	}

	eventData, err := ParseEventLog(KittiesEventABI, kind.String(), logData)
	if err != nil {
		return nil, err
	}

	event := &Event{Kind: kind}

	if kind == EventTransferred {
		if _from, ok := eventData["from"].(common.Hash); ok {
			event.Account = common.BytesToAddress(_from[:])
		}
		if _to, ok := eventData["to"].(common.Hash); ok {
			event.To = common.BytesToAddress(_to[:])
		}
	} else if _account, ok := eventData["account"].(common.Hash); ok {
		event.Account = common.BytesToAddress(_account[:])
	}

	if _kitty, ok := eventData["kitty"].(uint64); ok {
		event.Kitty = KittyIndex(_kitty)
	}

	return event, nil
}
