// Package middleware implements the four-hook middleware chain spec.md
// §4.4 describes: every inbound message and every outbound
// request/notification/response passes through each registered
// Middleware, in registration order, before it is acted on or written to
// the wire.
//
// Grounded directly on original_source/language-server/src/middleware.rs:
// the Middleware trait's four methods, AggregateMiddleware's sequential
// dispatch, and LoggingMiddleware's pretty-printed trace lines (ported
// here to serverlog instead of the `log` crate).
package middleware

import (
	"encoding/json"

	"github.com/firi/golangserver/jsonrpc"
	"github.com/firi/golangserver/serverlog"
)

// Middleware observes and may rewrite messages crossing the dispatcher's
// boundary. Implementations must not block: they run inline on whichever
// goroutine is handling that message edge (the input loop for incoming
// messages, ParseError responses, and anything a notification handler
// sends; a request handler's own goroutine for its response and for the
// requests/notifications it issues).
type Middleware interface {
	// OnIncomingMessage runs for every decoded Request/Notification/
	// Response before the dispatcher acts on it.
	OnIncomingMessage(msg jsonrpc.Message) jsonrpc.Message
	// OnOutgoingRequest runs before a request this process issues is
	// written to the wire.
	OnOutgoingRequest(req jsonrpc.Request) jsonrpc.Request
	// OnOutgoingNotification runs before a notification this process
	// issues is written to the wire.
	OnOutgoingNotification(n jsonrpc.Notification) jsonrpc.Notification
	// OnOutgoingResponse runs before a response to an incoming request is
	// written to the wire. req is the request that response answers, so
	// a middleware can still see the method name and params a Response
	// alone doesn't carry.
	OnOutgoingResponse(req jsonrpc.Request, resp jsonrpc.Response) jsonrpc.Response
}

// Chain runs a list of Middleware in registration order, matching
// middleware.rs's AggregateMiddleware. A Chain with no members is a
// no-op pass-through, so a Dispatcher can always hold one.
type Chain struct {
	members []Middleware
}

// NewChain builds a Chain from zero or more Middleware, applied in the
// order given.
func NewChain(members ...Middleware) *Chain {
	return &Chain{members: members}
}

// Use appends a Middleware to the end of the chain.
func (c *Chain) Use(m Middleware) {
	c.members = append(c.members, m)
}

func (c *Chain) OnIncomingMessage(msg jsonrpc.Message) jsonrpc.Message {
	for _, m := range c.members {
		msg = m.OnIncomingMessage(msg)
	}
	return msg
}

func (c *Chain) OnOutgoingRequest(req jsonrpc.Request) jsonrpc.Request {
	for _, m := range c.members {
		req = m.OnOutgoingRequest(req)
	}
	return req
}

func (c *Chain) OnOutgoingNotification(n jsonrpc.Notification) jsonrpc.Notification {
	for _, m := range c.members {
		n = m.OnOutgoingNotification(n)
	}
	return n
}

func (c *Chain) OnOutgoingResponse(req jsonrpc.Request, resp jsonrpc.Response) jsonrpc.Response {
	for _, m := range c.members {
		resp = m.OnOutgoingResponse(req, resp)
	}
	return resp
}

// LoggingMiddleware traces every message edge through a serverlog.Logger,
// pretty-printing the JSON body the way middleware.rs's LoggingMiddleware
// does with log::trace!.
type LoggingMiddleware struct {
	Log serverlog.Logger
}

func pretty(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "<unmarshalable>"
	}
	return string(b)
}

func (l LoggingMiddleware) OnIncomingMessage(msg jsonrpc.Message) jsonrpc.Message {
	var kind, body string
	switch msg.Kind {
	case jsonrpc.KindRequest:
		kind, body = "request", pretty(msg.Request)
	case jsonrpc.KindNotification:
		kind, body = "notification", pretty(msg.Notification)
	case jsonrpc.KindResponse:
		kind, body = "response", pretty(msg.Response)
	}
	l.Log.Debug("received %s (->)\n%s", kind, body)
	return msg
}

func (l LoggingMiddleware) OnOutgoingRequest(req jsonrpc.Request) jsonrpc.Request {
	l.Log.Debug("sent request (<-)\n%s", pretty(req))
	return req
}

func (l LoggingMiddleware) OnOutgoingNotification(n jsonrpc.Notification) jsonrpc.Notification {
	l.Log.Debug("sent notification (<-)\n%s", pretty(n))
	return n
}

func (l LoggingMiddleware) OnOutgoingResponse(req jsonrpc.Request, resp jsonrpc.Response) jsonrpc.Response {
	l.Log.Debug("sent response to %s (<-)\n%s", req.Method, pretty(resp))
	return resp
}
