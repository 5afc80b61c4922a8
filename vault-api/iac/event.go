package iac

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Event is a committed state change of a vault or the oracle.
type Event struct {
	Name      string            `json:"name"`
	Emitter   common.Address    `json:"emitter"`
	Timestamp uint64            `json:"timestamp"`
	Fields    map[string]string `json:"fields"`
}

func NewEvent(name string, emitter common.Address, timestamp uint64) Event {
	return Event{Name: name, Emitter: emitter, Timestamp: timestamp, Fields: make(map[string]string)}
}

// With sets a field, rendering addresses and hashes as hex.
func (e Event) With(key string, val interface{}) Event {
	switch v := val.(type) {
	case common.Address:
		e.Fields[key] = v.Hex()
	case common.Hash:
		e.Fields[key] = v.Hex()
	case []byte:
		e.Fields[key] = "0x" + hex.EncodeToString(v)
	case fmt.Stringer:
		e.Fields[key] = v.String()
	default:
		e.Fields[key] = fmt.Sprint(v)
	}
	return e
}
