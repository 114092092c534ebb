package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the only jsonrpc version this framework accepts.
const ProtocolVersion = "2.0"

// Request is a JSON-RPC request: a method call that expects exactly one
// Response carrying the same id.
type Request struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      Id              `json:"id"`
}

// NewRequest builds a Request with the protocol version already set.
func NewRequest(method string, params json.RawMessage, id Id) Request {
	return Request{Jsonrpc: ProtocolVersion, Method: method, Params: params, ID: id}
}

// Notification is a JSON-RPC message with no id; it expects no response.
type Notification struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NewNotification builds a Notification with the protocol version set.
func NewNotification(method string, params json.RawMessage) Notification {
	return Notification{Jsonrpc: ProtocolVersion, Method: method, Params: params}
}

// Response is a JSON-RPC response. Exactly one of Result/Error is present
// on the wire. Result uses json.RawMessage so that an explicit `null`
// result (len 4, "null") is distinguishable after decode from an absent
// result (nil slice) — see spec.md §3's round-trip requirement.
type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      *Id             `json:"id"`
}

// ResultResponse builds a success Response. Passing a nil result
// serializes as `"result":null`, matching "a handler returning `()` for a
// request" in spec.md §4.3.
func ResultResponse(result json.RawMessage, id Id) Response {
	if result == nil {
		result = json.RawMessage("null")
	}
	return Response{Jsonrpc: ProtocolVersion, Result: result, ID: &id}
}

// ErrorResponse builds a failure Response. id is nil only for responses
// to messages that could not even be parsed into a Request (ParseError).
func ErrorResponse(err *Error, id *Id) Response {
	return Response{Jsonrpc: ProtocolVersion, Error: err, ID: id}
}

// Kind identifies which concrete message a decoded Message holds.
type Kind int

const (
	KindRequest Kind = iota
	KindNotification
	KindResponse
)

// Message is the untagged union of Request/Notification/Response. The
// wire carries no discriminator field; decode() below chooses the variant
// by structural shape, exactly as spec.md §3 requires.
type Message struct {
	Kind         Kind
	Request      Request
	Notification Notification
	Response     Response
}

// shape is used only to sniff which fields are present on the wire
// before committing to a concrete struct decode.
type shape struct {
	Jsonrpc json.RawMessage `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  json.RawMessage `json:"method"`
	Result  json.RawMessage `json:"result"`
	Error   json.RawMessage `json:"error"`
}

// DecodeMessage parses a single JSON-RPC body into a Message, choosing
// Request/Notification/Response by field presence. It returns a non-nil
// *Error (ParseError) on malformed JSON, a bad jsonrpc version, or an
// ambiguous/empty shape — callers turn that straight into an
// id-less ErrorResponse per spec.md §4.3.
func DecodeMessage(body []byte) (Message, *Error) {
	var s shape
	if err := json.Unmarshal(body, &s); err != nil {
		return Message{}, ParseErrorResponse()
	}
	if len(s.Jsonrpc) > 0 {
		var version string
		if err := json.Unmarshal(s.Jsonrpc, &version); err != nil || version != ProtocolVersion {
			return Message{}, ParseErrorResponse()
		}
	}

	// A Response's id is allowed to be the JSON value null (the wire form
	// for ParseError/InvalidRequest sent before an id could be
	// determined) and must still count as present: it is id being
	// *absent from the object entirely* that distinguishes a
	// Notification, not id holding the JSON null value.
	hasID := len(s.ID) > 0
	hasMethod := len(s.Method) > 0
	hasResultOrError := len(s.Result) > 0 || len(s.Error) > 0

	switch {
	case hasID && hasMethod:
		var req Request
		if err := json.Unmarshal(body, &req); err != nil {
			return Message{}, ParseErrorResponse()
		}
		return Message{Kind: KindRequest, Request: req}, nil
	case hasMethod:
		var n Notification
		if err := json.Unmarshal(body, &n); err != nil {
			return Message{}, ParseErrorResponse()
		}
		return Message{Kind: KindNotification, Notification: n}, nil
	case hasID && hasResultOrError:
		var resp Response
		if err := json.Unmarshal(body, &resp); err != nil {
			return Message{}, ParseErrorResponse()
		}
		return Message{Kind: KindResponse, Response: resp}, nil
	default:
		return Message{}, ParseErrorResponse()
	}
}

// Encode serializes whichever variant Kind selects.
func (m Message) Encode() ([]byte, error) {
	switch m.Kind {
	case KindRequest:
		return json.Marshal(m.Request)
	case KindNotification:
		return json.Marshal(m.Notification)
	case KindResponse:
		return json.Marshal(m.Response)
	default:
		return nil, fmt.Errorf("jsonrpc: message has no kind set")
	}
}
