package host

import (
	"sync"

	"kitties-ledger/core"
	"kitties-ledger/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

// KittiesAddress is the address logs are attributed to.
var KittiesAddress = common.HexToAddress("0x00000000000000000000000000000000006b6974")

type LogSink struct{}

func (LogSink) Emit(event model.Event) {
	fields := logrus.Fields{
		"event":   event.Kind.String(),
		"account": event.Account.Hex(),
		"kitty":   uint64(event.Kitty),
	}
	if event.Kind == model.EventTransferred {
		fields["to"] = event.To.Hex()
	}
	logrus.WithFields(fields).Info("kitty event")
}

// Recorder keeps every event together with its log encoding.
type Recorder struct {
	mu     sync.RWMutex
	events []model.Event
	logs   []*types.Log
}

func (r *Recorder) Emit(event model.Event) {
	log, err := event.Log(KittiesAddress)
	if err != nil {
		logrus.Errorf("encode event %s err: %v", event, err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	log.Index = uint(len(r.logs))
	r.events = append(r.events, event)
	r.logs = append(r.logs, log)
}

func (r *Recorder) Events() []model.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Event(nil), r.events...)
}

// Logs returns the recorded logs starting at index from.
func (r *Recorder) Logs(from int) []*types.Log {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if from < 0 || from >= len(r.logs) {
		return nil
	}
	return append([]*types.Log(nil), r.logs[from:]...)
}

type MultiSink []core.EventSink

func (m MultiSink) Emit(event model.Event) {
	for _, sink := range m {
		sink.Emit(event)
	}
}
