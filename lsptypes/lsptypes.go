// Package lsptypes holds the method-name constants and the small set of
// concrete param/result shapes this framework's scenarios actually
// exercise. It is deliberately not an exhaustive LSP type catalog — per
// spec.md's Non-goals, binding every LSP method's param/result struct is
// out of scope; a host that needs one defines its own json.RawMessage
// decode downstream of langserver.Description.
//
// Grounded on the teacher's internal/lsp/types.go (trimmed to the
// handful of shapes this module's scenarios need) and on
// original_source/language-server-derive's method-name table, embedded
// in lib.rs's handle! macro invocation ("initialize", "window/showMessage",
// "workspace/applyEdit", "$/progress", etc.).
package lsptypes

// Method name constants for the subset of the LSP method catalog this
// framework binds directly, either as a langserver.Description field or
// as a peer.Client capability.
const (
	MethodInitialize   = "initialize"
	MethodInitialized  = "initialized"
	MethodShutdown     = "shutdown"
	MethodExit         = "exit"
	MethodCancelRequest = "$/cancelRequest"
	MethodProgress     = "$/progress"

	MethodShowMessage        = "window/showMessage"
	MethodShowMessageRequest = "window/showMessageRequest"
	MethodLogMessage         = "window/logMessage"
	MethodApplyEdit          = "workspace/applyEdit"
	MethodDidChangeWatchedFiles = "workspace/didChangeWatchedFiles"
)

// MessageType mirrors the LSP window/* severity enum.
type MessageType int

const (
	MessageError MessageType = iota + 1
	MessageWarning
	MessageInfo
	MessageLog
)

// InitializeParams is the subset of the real initialize request this
// framework cares about: a process id, the root URI and client info.
// Other fields, including client capabilities, are not decoded; a host
// that needs them decodes the raw params itself.
type InitializeParams struct {
	ProcessID        *int   `json:"processId"`
	RootURI          string `json:"rootUri,omitempty"`
	ClientInfo       *ClientInfo `json:"clientInfo,omitempty"`
}

// ClientInfo identifies the connecting editor/tool.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeResult is returned from a successful initialize call.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// ServerCapabilities is left intentionally sparse; a host's Description
// fills in whatever its handlers actually support.
type ServerCapabilities map[string]any

// ServerInfo identifies this dispatch engine to the connecting client.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ShowMessageParams requests that the client display a message.
type ShowMessageParams struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// ShowMessageRequestParams is ShowMessageParams plus a list of actions
// the client should let the user pick between.
type ShowMessageRequestParams struct {
	Type    MessageType        `json:"type"`
	Message string             `json:"message"`
	Actions []MessageActionItem `json:"actions,omitempty"`
}

// MessageActionItem is one button in a ShowMessageRequest prompt.
type MessageActionItem struct {
	Title string `json:"title"`
}

// LogMessageParams is a log-only variant of ShowMessageParams.
type LogMessageParams struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// ApplyWorkspaceEditParams asks the client to apply an edit; Edit is left
// as opaque JSON since the full WorkspaceEdit shape is out of this
// module's scope.
type ApplyWorkspaceEditParams struct {
	Label string `json:"label,omitempty"`
	Edit  any    `json:"edit"`
}

// ApplyWorkspaceEditResponse reports whether the client applied the edit.
type ApplyWorkspaceEditResponse struct {
	Applied       bool   `json:"applied"`
	FailureReason string `json:"failureReason,omitempty"`
}

// ProgressParams carries a $/progress notification's opaque value.
type ProgressParams struct {
	Token any `json:"token"`
	Value any `json:"value"`
}

// FileEvent describes one entry of a didChangeWatchedFiles notification.
type FileEvent struct {
	URI  string   `json:"uri"`
	Type FileChangeType `json:"type"`
}

// FileChangeType mirrors the LSP FileChangeType enum.
type FileChangeType int

const (
	FileCreated FileChangeType = iota + 1
	FileChanged
	FileDeleted
)

// DidChangeWatchedFilesParams is the payload FileWatchBridge emits.
type DidChangeWatchedFilesParams struct {
	Changes []FileEvent `json:"changes"`
}
