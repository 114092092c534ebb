// Package peer implements the outbound half of a JSON-RPC connection: it
// lets server-side code issue requests and notifications to the remote
// peer and correlates incoming responses back to their callers.
//
// Grounded on original_source/language-server/src/client.rs's Client and
// ResponseHandler (an atomic id counter, a mutex-guarded table of pending
// one-shot response slots, and id-less/unknown-id handling) and on the
// teacher's internal/lsp/jsonrpc.go Transport.nextID/atomic.AddInt64 idiom
// for allocating ids.
package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/firi/golangserver/jsonrpc"
)

// Sender is the narrow part of the dispatcher's outbound path a Client
// needs: a single place to hand off an encoded message for the writer
// goroutine to serialize onto the wire. Implemented by dispatch.Dispatcher.
type Sender interface {
	SendMessage(jsonrpc.Message) error
}

// pendingCall is the one-shot slot a Client blocks on while a request is
// in flight, mirroring the oneshot::Sender<Result<Value>> in client.rs.
type pendingCall struct {
	resultCh chan callResult
}

type callResult struct {
	result json.RawMessage
	err    *jsonrpc.Error
}

// ViolationHandler is invoked when an incoming response cannot be
// correlated to any pending call: either it carries no id, or its id
// matches nothing in the pending table. spec.md's protocol-violation
// Open Question is resolved as log-and-drop rather than panic; this hook
// is how callers observe that without the engine crashing the connection.
type ViolationHandler func(reason string, resp jsonrpc.Response)

// Client is the outbound JSON-RPC peer: it sends requests/notifications
// and routes incoming responses back to whichever goroutine is waiting.
type Client struct {
	sender Sender
	nextID uint64

	mu      sync.Mutex
	pending map[jsonrpc.Id]*pendingCall

	onViolation ViolationHandler
}

// NewClient builds a Client bound to a Sender. onViolation may be nil, in
// which case violations are silently dropped and not counted anywhere
// (dispatch.Dispatcher counts them from inside the hook it passes here).
func NewClient(sender Sender, onViolation ViolationHandler) *Client {
	return &Client{
		sender:      sender,
		pending:     make(map[jsonrpc.Id]*pendingCall),
		onViolation: onViolation,
	}
}

// allocateID returns the next monotonically increasing request id, the
// same scheme as the teacher's Transport.nextID.
func (c *Client) allocateID() jsonrpc.Id {
	n := atomic.AddUint64(&c.nextID, 1)
	return jsonrpc.NumberID(n)
}

// SendRequest issues a request and blocks until a matching response
// arrives, the context is cancelled, or the peer disconnects (Close).
// A JSON-RPC error response surfaces as *jsonrpc.Error, not a generic
// Go error, so callers can inspect Code.
func (c *Client) SendRequest(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	id := c.allocateID()
	call := &pendingCall{resultCh: make(chan callResult, 1)}

	c.mu.Lock()
	c.pending[id] = call
	c.mu.Unlock()

	req := jsonrpc.NewRequest(method, params, id)
	if err := c.sender.SendMessage(jsonrpc.Message{Kind: jsonrpc.KindRequest, Request: req}); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("peer: send request %s: %w", method, err)
	}

	select {
	case res := <-call.resultCh:
		if res.err != nil {
			return nil, res.err
		}
		return res.result, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, ctx.Err()
	}
}

// SendNotification fires a one-way message with no response expected.
func (c *Client) SendNotification(method string, params json.RawMessage) error {
	n := jsonrpc.NewNotification(method, params)
	if err := c.sender.SendMessage(jsonrpc.Message{Kind: jsonrpc.KindNotification, Notification: n}); err != nil {
		return fmt.Errorf("peer: send notification %s: %w", method, err)
	}
	return nil
}

// HandleResponse routes an incoming response to whichever SendRequest
// call is waiting on its id. It never blocks and never panics: an
// id-less response or one with no matching pending call is reported to
// onViolation (if set) and dropped, mirroring client.rs's
// ResponseHandler::handle but replacing its panics with an observable
// hook per spec.md's resolved Open Question.
func (c *Client) HandleResponse(resp jsonrpc.Response) {
	if resp.ID == nil {
		if c.onViolation != nil {
			c.onViolation("response has no id", resp)
		}
		return
	}

	c.mu.Lock()
	call, ok := c.pending[*resp.ID]
	if ok {
		delete(c.pending, *resp.ID)
	}
	c.mu.Unlock()

	if !ok {
		if c.onViolation != nil {
			c.onViolation("response id does not match any pending request", resp)
		}
		return
	}

	call.resultCh <- callResult{result: resp.Result, err: resp.Error}
}

// Close unblocks every still-pending SendRequest call with an error,
// used when the underlying connection is shutting down.
func (c *Client) Close(cause error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[jsonrpc.Id]*pendingCall)
	c.mu.Unlock()

	for _, call := range pending {
		call.resultCh <- callResult{err: jsonrpc.NewInternalError(fmt.Sprintf("connection closed: %v", cause))}
	}
}
