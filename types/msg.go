// Package types contains the wire messages exchanged between the host and
// the counter contract.
package types

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/govm-net/counter/core"
)

// ErrInvalidMessage is returned when a message cannot be decoded.
var ErrInvalidMessage = errors.New("invalid message")

// MessageInfo carries the authenticated caller of an invocation.
type MessageInfo struct {
	Sender core.Address `json:"sender"`
}

// InstantiateMsg creates the counter with an initial value.
type InstantiateMsg struct {
	Count int32 `json:"count"`
}

// ExecuteMsg is a tagged union; exactly one field is set.
type ExecuteMsg struct {
	Reset     *ResetMsg     `json:"reset,omitempty"`
	Increment *IncrementMsg `json:"increment,omitempty"`
	Decrement *DecrementMsg `json:"decrement,omitempty"`
}

// ResetMsg sets the counter to Count, or 0 when Count is absent. Owner only.
type ResetMsg struct {
	Count core.Optional[int32] `json:"count"`
}

// IncrementMsg adds Amount, or 1 when Amount is absent.
type IncrementMsg struct {
	Amount core.Optional[int32] `json:"amount"`
}

// DecrementMsg subtracts Amount, or 1 when Amount is absent.
type DecrementMsg struct {
	Amount core.Optional[int32] `json:"amount"`
}

// Variant returns the wire name of the set variant.
func (m ExecuteMsg) Variant() (string, error) {
	var names []string
	if m.Reset != nil {
		names = append(names, "reset")
	}
	if m.Increment != nil {
		names = append(names, "increment")
	}
	if m.Decrement != nil {
		names = append(names, "decrement")
	}
	return single(names)
}

// QueryMsg is a tagged union; exactly one field is set.
type QueryMsg struct {
	GetCount      *GetCountQuery      `json:"get_count,omitempty"`
	GetResetCount *GetResetCountQuery `json:"get_reset_count,omitempty"`
}

type GetCountQuery struct{}

type GetResetCountQuery struct{}

// Variant returns the wire name of the set variant.
func (m QueryMsg) Variant() (string, error) {
	var names []string
	if m.GetCount != nil {
		names = append(names, "get_count")
	}
	if m.GetResetCount != nil {
		names = append(names, "get_reset_count")
	}
	return single(names)
}

// GetCountResponse is returned by the get_count query.
type GetCountResponse struct {
	Count int32 `json:"count"`
}

// GetResetCountResponse is returned by the get_reset_count query.
type GetResetCountResponse struct {
	ResetCount int32 `json:"reset_count"`
}

func single(names []string) (string, error) {
	switch len(names) {
	case 1:
		return names[0], nil
	case 0:
		return "", fmt.Errorf("%w: no variant set", ErrInvalidMessage)
	default:
		return "", fmt.Errorf("%w: multiple variants set %v", ErrInvalidMessage, names)
	}
}

// Decode strictly decodes data into v. Unknown fields, keys that differ
// from the wire name only in case, and anything after the first value are
// rejected.
func Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after message", ErrInvalidMessage)
	}
	if err := exactKeys(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return nil
}

// exactKeys checks every object key in data against the encoding of v.
// The decoder folds case when matching field names.
func exactKeys(data []byte, v any) error {
	var in, out any
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	enc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(enc, &out); err != nil {
		return err
	}
	return matchKeys(in, out, "")
}

func matchKeys(in, out any, path string) error {
	obj, ok := in.(map[string]any)
	if !ok {
		return nil
	}
	known, _ := out.(map[string]any)
	for key, child := range obj {
		ref, ok := known[key]
		if !ok {
			return fmt.Errorf("unknown field %q", path+key)
		}
		if err := matchKeys(child, ref, path+key+"."); err != nil {
			return err
		}
	}
	return nil
}

// DecodeInstantiate decodes an InstantiateMsg.
func DecodeInstantiate(data []byte) (InstantiateMsg, error) {
	var msg InstantiateMsg
	err := Decode(data, &msg)
	return msg, err
}

// DecodeExecute decodes an ExecuteMsg and checks exactly one variant is set.
func DecodeExecute(data []byte) (ExecuteMsg, error) {
	var msg ExecuteMsg
	if err := Decode(data, &msg); err != nil {
		return msg, err
	}
	if _, err := msg.Variant(); err != nil {
		return msg, err
	}
	return msg, nil
}

// DecodeQuery decodes a QueryMsg and checks exactly one variant is set.
func DecodeQuery(data []byte) (QueryMsg, error) {
	var msg QueryMsg
	if err := Decode(data, &msg); err != nil {
		return msg, err
	}
	if _, err := msg.Variant(); err != nil {
		return msg, err
	}
	return msg, nil
}

// Encode marshals v with the wire encoding.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
