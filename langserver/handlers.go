// Package langserver defines the handler surface a host implements to
// become an LSP server: one function field per bound method, all
// optional, plus the capability interface handlers use to talk back to
// the connected client.
//
// Grounded on original_source/language-server/src/server.rs's
// LanguageServer trait (one async fn per method, empty default bodies)
// and src/client.rs's LanguageClient trait (show_message,
// show_message_request, log_message, apply_edit, progress), and on
// other_examples/…akhenakh-lspgo…/server/server.go's Register/
// typedHandler pattern for how a Go host binds functions to method
// names — reworked here as a static struct of function fields rather
// than a runtime reflection-based registry, per SPEC_FULL.md §9's Open
// Question resolution (no code generation, no reflection: a hand-written
// dispatch table).
package langserver

import (
	"context"
	"encoding/json"

	"github.com/firi/golangserver/jsonrpc"
	"github.com/firi/golangserver/lsptypes"
)

// RequestFunc handles one JSON-RPC request bound to a method name. A nil
// *jsonrpc.Error result paired with a non-nil result means success; a
// non-nil *jsonrpc.Error means failure. Returning (nil, nil) is a
// successful "no result" response (wire-encoded as the JSON value null).
type RequestFunc func(ctx context.Context, client Client, params json.RawMessage) (json.RawMessage, *jsonrpc.Error)

// NotificationFunc handles one JSON-RPC notification bound to a method
// name. It has no result to return. Params arrive as raw JSON: the
// dispatcher does not decode them, and a notification has no response
// on which a decode failure could be reported.
type NotificationFunc func(ctx context.Context, client Client, params json.RawMessage)

// Client is the capability surface handlers use to talk back to the
// connected peer: the bidirectional calls original_source's
// LanguageClient trait names, plus Request/Notify escape hatches for any
// method this catalog doesn't bind by name.
type Client interface {
	ShowMessage(params lsptypes.ShowMessageParams) error
	ShowMessageRequest(ctx context.Context, params lsptypes.ShowMessageRequestParams) (*lsptypes.MessageActionItem, error)
	LogMessage(params lsptypes.LogMessageParams) error
	ApplyEdit(ctx context.Context, params lsptypes.ApplyWorkspaceEditParams) (*lsptypes.ApplyWorkspaceEditResponse, error)
	Progress(params lsptypes.ProgressParams) error

	// Request/Notify let a handler call any method, bound or not.
	Request(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error)
	Notify(method string, params json.RawMessage) error
}

// Description is the struct-of-function-fields a host fills in to
// implement an LSP server. Every field is optional: an unset field falls
// back to a default handler (success/no-op for lifecycle methods,
// MethodNotFoundError for everything else), matching the empty trait
// default methods in server.rs.
type Description struct {
	Initialize  RequestFunc
	Initialized NotificationFunc
	Shutdown    RequestFunc
	Exit        NotificationFunc

	DidOpen                  NotificationFunc
	DidChange                NotificationFunc
	DidSave                  NotificationFunc
	DidClose                 NotificationFunc
	DidChangeWatchedFiles    NotificationFunc
	DidChangeConfiguration   NotificationFunc
	DidChangeWorkspaceFolders NotificationFunc

	Completion     RequestFunc
	Hover          RequestFunc
	Definition     RequestFunc
	References     RequestFunc
	DocumentSymbol RequestFunc
	CodeAction     RequestFunc
	Formatting     RequestFunc
	Rename         RequestFunc
	ExecuteCommand RequestFunc

	// Methods not named above still reach the server if a host sets a
	// catch-all here; this keeps the table finite while not hard-walling
	// off any LSP method the spec's Non-goals didn't explicitly exclude.
	OtherRequests      map[string]RequestFunc
	OtherNotifications map[string]NotificationFunc
}

// requestTable returns the method-name -> RequestFunc bindings this
// Description defines. It is rebuilt on every call, so changes to the
// Description's fields take effect for the next message.
func (d *Description) requestTable() map[string]RequestFunc {
	table := map[string]RequestFunc{}
	bind := func(method string, fn RequestFunc) {
		if fn != nil {
			table[method] = fn
		}
	}
	bind(lsptypes.MethodInitialize, d.Initialize)
	bind(lsptypes.MethodShutdown, d.Shutdown)
	bind("textDocument/completion", d.Completion)
	bind("textDocument/hover", d.Hover)
	bind("textDocument/definition", d.Definition)
	bind("textDocument/references", d.References)
	bind("textDocument/documentSymbol", d.DocumentSymbol)
	bind("textDocument/codeAction", d.CodeAction)
	bind("textDocument/formatting", d.Formatting)
	bind("textDocument/rename", d.Rename)
	bind("workspace/executeCommand", d.ExecuteCommand)
	for method, fn := range d.OtherRequests {
		bind(method, fn)
	}
	return table
}

func (d *Description) notificationTable() map[string]NotificationFunc {
	table := map[string]NotificationFunc{}
	bind := func(method string, fn NotificationFunc) {
		if fn != nil {
			table[method] = fn
		}
	}
	bind(lsptypes.MethodInitialized, d.Initialized)
	bind(lsptypes.MethodExit, d.Exit)
	bind("textDocument/didOpen", d.DidOpen)
	bind("textDocument/didChange", d.DidChange)
	bind("textDocument/didSave", d.DidSave)
	bind("textDocument/didClose", d.DidClose)
	bind(lsptypes.MethodDidChangeWatchedFiles, d.DidChangeWatchedFiles)
	bind("workspace/didChangeConfiguration", d.DidChangeConfiguration)
	bind("workspace/didChangeWorkspaceFolders", d.DidChangeWorkspaceFolders)
	for method, fn := range d.OtherNotifications {
		bind(method, fn)
	}
	return table
}

// HandleRequest resolves method against the bound table and invokes it.
// An unbound initialize answers with empty capabilities and an unbound
// shutdown with a null result; any other unbound method gets
// MethodNotFoundError. Called by dispatch.Dispatcher for every request.
func (d *Description) HandleRequest(ctx context.Context, client Client, method string, params json.RawMessage) (json.RawMessage, *jsonrpc.Error) {
	fn, ok := d.requestTable()[method]
	if !ok {
		switch method {
		case lsptypes.MethodInitialize:
			return json.RawMessage(`{"capabilities":{}}`), nil
		case lsptypes.MethodShutdown:
			return nil, nil
		}
		return nil, jsonrpc.MethodNotFoundError()
	}
	return fn(ctx, client, params)
}

// HandleNotification resolves method against the bound table and
// invokes it, silently doing nothing if unbound — notifications have no
// response channel to report MethodNotFound on. Called by
// dispatch.Dispatcher for every notification.
func (d *Description) HandleNotification(ctx context.Context, client Client, method string, params json.RawMessage) {
	fn, ok := d.notificationTable()[method]
	if !ok {
		return
	}
	fn(ctx, client, params)
}
