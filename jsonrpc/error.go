package jsonrpc

import "encoding/json"

// ErrorCode is the closed set of JSON-RPC/LSP error codes this framework
// recognizes. Values match the LSP base protocol exactly.
type ErrorCode int

const (
	ParseError           ErrorCode = -32700
	InvalidRequest       ErrorCode = -32600
	MethodNotFound       ErrorCode = -32601
	InvalidParams        ErrorCode = -32602
	InternalError        ErrorCode = -32603
	ServerNotInitialized ErrorCode = -32002
	UnknownErrorCode     ErrorCode = -32001
	RequestCancelled     ErrorCode = -32800
)

// Error is the JSON-RPC error object carried in a Response. Data is
// omitted from the wire when nil.
type Error struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// ParseErrorResponse returns the canonical "could not parse" error.
func ParseErrorResponse() *Error {
	return &Error{Code: ParseError, Message: "Could not parse the input"}
}

// MethodNotFoundError returns the canonical "method not found" error.
func MethodNotFoundError() *Error {
	return &Error{Code: MethodNotFound, Message: "Method not found"}
}

// InvalidParamsError returns the canonical "could not deserialize
// parameter object" error.
func InvalidParamsError() *Error {
	return &Error{Code: InvalidParams, Message: "Could not deserialize parameter object"}
}

// NewInternalError wraps a handler-supplied message as an InternalError.
func NewInternalError(message string) *Error {
	return &Error{Code: InternalError, Message: message}
}

// NewServerNotInitializedError reports that a request arrived before the
// server finished its initialize/initialized handshake.
func NewServerNotInitializedError() *Error {
	return &Error{Code: ServerNotInitialized, Message: "Server is not initialized"}
}
