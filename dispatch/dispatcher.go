// Package dispatch wires codec, jsonrpc, middleware, peer, and langserver
// together into the running connection: one goroutine reads and decodes
// frames, request handlers run concurrently (bounded by an Executor),
// notifications and responses are processed inline on the reader
// goroutine to preserve ordering, and exactly one writer goroutine owns
// the outbound wire.
//
// Grounded on original_source/language-server/src/lib.rs's
// LspService::listen/handle_incoming/handle_request/handle_notification:
// a capacity-0 mpsc output channel for total write ordering and natural
// backpressure, a spawned task per request, and inline notification
// dispatch, all with no method-name-keyed lifecycle gating whatsoever —
// handle_request/handle_notification hand every method straight to the
// bound handler. Initialize/initialized/shutdown/exit sequencing is the
// host's own concern (see langserver.Description), not the dispatcher's;
// the WaitGroup tracking in-flight request goroutines for graceful
// shutdown still follows other_examples/…akhenakh-lspgo…/server/server.go's
// Run/handleMessage.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/firi/golangserver/codec"
	"github.com/firi/golangserver/jsonrpc"
	"github.com/firi/golangserver/langserver"
	"github.com/firi/golangserver/middleware"
	"github.com/firi/golangserver/peer"
	"github.com/firi/golangserver/serverlog"
)

// ErrDispatcherClosed is returned by SendMessage once the connection has
// shut down.
var ErrDispatcherClosed = errors.New("dispatch: connection is closed")

// Dispatcher runs one LSP connection end to end.
type Dispatcher struct {
	reader *codec.Reader
	writer *codec.Writer

	desc   *langserver.Description
	client langserver.Client
	peer   *peer.Client

	chain    *middleware.Chain
	executor Executor
	logger   serverlog.Logger

	outCh chan jsonrpc.Message

	violations atomic.Int64
	wg         sync.WaitGroup
	closeOnce  sync.Once
	closed     chan struct{}
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithMiddleware attaches a middleware chain; the zero value is an empty
// no-op Chain.
func WithMiddleware(chain *middleware.Chain) Option {
	return func(d *Dispatcher) { d.chain = chain }
}

// WithExecutor overrides the default GoExecutor (unbounded goroutine per
// request).
func WithExecutor(e Executor) Option {
	return func(d *Dispatcher) { d.executor = e }
}

// WithLogger overrides the default serverlog.NullLogger.
func WithLogger(l serverlog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher builds a Dispatcher over a framed byte stream (r, w),
// running desc's handlers.
func NewDispatcher(r io.Reader, w io.Writer, desc *langserver.Description, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reader:   codec.NewReader(r),
		writer:   codec.NewWriter(w),
		desc:     desc,
		chain:    middleware.NewChain(),
		executor: GoExecutor{},
		logger:   serverlog.NullLogger{},
		outCh:    make(chan jsonrpc.Message), // capacity 0: total write ordering + backpressure
		closed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.peer = peer.NewClient(d, func(reason string, resp jsonrpc.Response) {
		d.violations.Add(1)
		d.logger.Error("protocol violation: %s", reason)
	})
	d.client = langserver.NewClient(d.peer)
	return d
}

// ProtocolViolations reports how many incoming responses could not be
// correlated to a pending request (no id, or an unknown id) since this
// Dispatcher started. spec.md's Open Question on malformed-response
// handling is resolved as log-and-count rather than panic; this is the
// counter a host can assert against in tests or export as a metric.
func (d *Dispatcher) ProtocolViolations() int64 { return d.violations.Load() }

// SendMessage implements peer.Sender: it runs outgoing middleware hooks
// and hands the message to the writer goroutine. It blocks until the
// writer goroutine is ready to accept it (the capacity-0 channel is the
// backpressure point) or the connection closes.
func (d *Dispatcher) SendMessage(msg jsonrpc.Message) error {
	switch msg.Kind {
	case jsonrpc.KindRequest:
		msg.Request = d.chain.OnOutgoingRequest(msg.Request)
	case jsonrpc.KindNotification:
		msg.Notification = d.chain.OnOutgoingNotification(msg.Notification)
	}
	select {
	case d.outCh <- msg:
		return nil
	case <-d.closed:
		return ErrDispatcherClosed
	}
}

// sendResponse runs outgoing-response middleware and writes resp. req is
// the request resp answers; it is the zero Request for responses with no
// real originating request (a ParseError for input that never decoded
// into one).
func (d *Dispatcher) sendResponse(req jsonrpc.Request, resp jsonrpc.Response) {
	resp = d.chain.OnOutgoingResponse(req, resp)
	select {
	case d.outCh <- jsonrpc.Message{Kind: jsonrpc.KindResponse, Response: resp}:
	case <-d.closed:
	}
}

// Listen runs the connection until the input stream ends, ctx is
// cancelled, or a fatal framing error occurs. Cancellation of ctx is
// checked between frames: a Listen waiting for the next frame returns
// only once that frame or EOF arrives. It blocks until every
// in-flight request handler has returned and the writer goroutine has
// drained, so a caller can safely tear down the underlying transport the
// instant Listen returns.
func (d *Dispatcher) Listen(ctx context.Context) error {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		d.writerLoop(ctx)
	}()

	err := d.inputLoop(ctx)

	d.wg.Wait()
	d.Close()
	<-writerDone
	return err
}

func (d *Dispatcher) writerLoop(ctx context.Context) {
	for {
		select {
		case msg, ok := <-d.outCh:
			if !ok {
				return
			}
			body, err := msg.Encode()
			if err != nil {
				d.logger.Error("failed to encode outgoing message: %v", err)
				continue
			}
			if err := d.writer.Write(body); err != nil {
				d.logger.Error("failed to write outgoing message: %v", err)
				d.Close()
				return
			}
		case <-d.closed:
			return
		case <-ctx.Done():
			d.Close()
			return
		}
	}
}

func (d *Dispatcher) inputLoop(ctx context.Context) error {
	for {
		body, err := d.reader.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		msg, parseErr := jsonrpc.DecodeMessage(body)
		if parseErr != nil {
			d.sendResponse(jsonrpc.Request{}, jsonrpc.ErrorResponse(parseErr, nil))
			continue
		}
		msg = d.chain.OnIncomingMessage(msg)

		switch msg.Kind {
		case jsonrpc.KindRequest:
			d.wg.Add(1)
			req := msg.Request
			d.executor.Spawn(ctx, func(ctx context.Context) {
				defer d.wg.Done()
				d.handleRequest(ctx, req)
			})
		case jsonrpc.KindNotification:
			d.handleNotification(ctx, msg.Notification)
		case jsonrpc.KindResponse:
			d.peer.HandleResponse(msg.Response)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// handleRequest dispatches req to d.desc unconditionally: the dispatcher
// has no connection state machine of its own, so initialize/shutdown
// sequencing (and rejecting requests that arrive before initialize) is
// entirely up to what d.desc's handlers choose to do.
func (d *Dispatcher) handleRequest(ctx context.Context, req jsonrpc.Request) {
	result, rpcErr := d.desc.HandleRequest(ctx, d.client, req.Method, req.Params)

	if rpcErr != nil {
		d.sendResponse(req, jsonrpc.ErrorResponse(rpcErr, &req.ID))
		return
	}
	if result == nil {
		result = json.RawMessage("null")
	}
	d.sendResponse(req, jsonrpc.ResultResponse(result, req.ID))
}

// handleNotification dispatches n to d.desc unconditionally; see
// handleRequest.
func (d *Dispatcher) handleNotification(ctx context.Context, n jsonrpc.Notification) {
	d.desc.HandleNotification(ctx, d.client, n.Method, n.Params)
}

// Close unblocks any in-flight SendMessage/sendResponse calls and stops
// the writer loop. Safe to call multiple times and from multiple
// goroutines.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.closed)
		d.peer.Close(ErrDispatcherClosed)
	})
}
