// Package jsonrpc implements the JSON-RPC 2.0 message model used by the
// Language Server Protocol base layer: requests, responses, notifications,
// the error envelope, and the untagged message union that a framed codec
// decodes into.
package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// IdKind distinguishes the two shapes a JSON-RPC id can take on the wire.
// Number(1) and String("1") are distinct ids; IdKind is what makes that
// distinction explicit instead of relying on Go's untyped interface{}.
type IdKind int

const (
	IdNumber IdKind = iota
	IdString
)

// Id is the JSON-RPC correlation key. It round-trips through JSON as
// either a bare number or a bare string, matching the "untagged" Id enum
// of the original implementation this framework is modeled on.
type Id struct {
	Kind IdKind
	Num  uint64
	Str  string
}

// NumberID builds a numeric Id, the kind this framework's own outbound
// client always allocates.
func NumberID(n uint64) Id { return Id{Kind: IdNumber, Num: n} }

// StringID builds a string Id, accepted from peers but never minted by
// this framework's id allocator.
func StringID(s string) Id { return Id{Kind: IdString, Str: s} }

func (id Id) String() string {
	if id.Kind == IdString {
		return id.Str
	}
	return strconv.FormatUint(id.Num, 10)
}

// MarshalJSON writes the id as a bare JSON number or string.
func (id Id) MarshalJSON() ([]byte, error) {
	if id.Kind == IdString {
		return json.Marshal(id.Str)
	}
	return json.Marshal(id.Num)
}

// UnmarshalJSON accepts either a JSON number or a JSON string, matching
// the wire's untagged representation.
func (id *Id) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("jsonrpc: empty id")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	var n uint64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("jsonrpc: id is neither a string nor an unsigned integer: %w", err)
	}
	*id = NumberID(n)
	return nil
}
