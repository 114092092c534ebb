package peer

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/firi/golangserver/jsonrpc"
)

// recordingSender captures every outbound message and lets a test hand a
// canned response back to the Client, simulating the wire.
type recordingSender struct {
	mu       sync.Mutex
	requests []jsonrpc.Request
	notifs   []jsonrpc.Notification
}

func (s *recordingSender) SendMessage(msg jsonrpc.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch msg.Kind {
	case jsonrpc.KindRequest:
		s.requests = append(s.requests, msg.Request)
	case jsonrpc.KindNotification:
		s.notifs = append(s.notifs, msg.Notification)
	}
	return nil
}

func (s *recordingSender) lastRequest() jsonrpc.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func TestSendRequestRoundTrip(t *testing.T) {
	sender := &recordingSender{}
	client := NewClient(sender, nil)

	type result struct {
		val json.RawMessage
		err error
	}
	done := make(chan result, 1)
	go func() {
		val, err := client.SendRequest(context.Background(), "workspace/configuration", nil)
		done <- result{val, err}
	}()

	// Wait for the request to actually be sent before replying.
	var req jsonrpc.Request
	for i := 0; i < 1000; i++ {
		sender.mu.Lock()
		n := len(sender.requests)
		sender.mu.Unlock()
		if n > 0 {
			req = sender.lastRequest()
			break
		}
		time.Sleep(time.Millisecond)
	}

	client.HandleResponse(jsonrpc.ResultResponse(json.RawMessage(`{"ok":true}`), req.ID))

	res := <-done
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if string(res.val) != `{"ok":true}` {
		t.Fatalf("got %s", res.val)
	}
}

func TestSendRequestErrorResponse(t *testing.T) {
	sender := &recordingSender{}
	client := NewClient(sender, nil)

	done := make(chan error, 1)
	go func() {
		_, err := client.SendRequest(context.Background(), "workspace/applyEdit", nil)
		done <- err
	}()

	var req jsonrpc.Request
	for i := 0; i < 1000; i++ {
		sender.mu.Lock()
		n := len(sender.requests)
		sender.mu.Unlock()
		if n > 0 {
			req = sender.lastRequest()
			break
		}
		time.Sleep(time.Millisecond)
	}

	client.HandleResponse(jsonrpc.ErrorResponse(jsonrpc.NewInternalError("boom"), &req.ID))

	err := <-done
	rpcErr, ok := err.(*jsonrpc.Error)
	if !ok {
		t.Fatalf("expected *jsonrpc.Error, got %T: %v", err, err)
	}
	if rpcErr.Code != jsonrpc.InternalError {
		t.Fatalf("got code %v", rpcErr.Code)
	}
}

func TestSendNotificationDoesNotBlock(t *testing.T) {
	sender := &recordingSender{}
	client := NewClient(sender, nil)
	if err := client.SendNotification("window/logMessage", json.RawMessage(`{}`)); err != nil {
		t.Fatal(err)
	}
	if len(sender.notifs) != 1 {
		t.Fatalf("expected one recorded notification, got %d", len(sender.notifs))
	}
}

func TestHandleResponseReportsIDLessViolation(t *testing.T) {
	sender := &recordingSender{}
	var reasons []string
	client := NewClient(sender, func(reason string, resp jsonrpc.Response) {
		reasons = append(reasons, reason)
	})

	client.HandleResponse(jsonrpc.Response{Jsonrpc: jsonrpc.ProtocolVersion, Result: json.RawMessage(`1`)})

	if len(reasons) != 1 {
		t.Fatalf("expected one violation report, got %d", len(reasons))
	}
}

func TestHandleResponseReportsUnknownIDViolation(t *testing.T) {
	sender := &recordingSender{}
	var reasons []string
	client := NewClient(sender, func(reason string, resp jsonrpc.Response) {
		reasons = append(reasons, reason)
	})

	unknown := jsonrpc.NumberID(9999)
	client.HandleResponse(jsonrpc.ResultResponse(json.RawMessage(`1`), unknown))

	if len(reasons) != 1 {
		t.Fatalf("expected one violation report, got %d", len(reasons))
	}
}

func TestSendRequestContextCancellation(t *testing.T) {
	sender := &recordingSender{}
	client := NewClient(sender, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SendRequest(ctx, "shutdown", nil)
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestCloseUnblocksPendingRequests(t *testing.T) {
	sender := &recordingSender{}
	client := NewClient(sender, nil)

	done := make(chan error, 1)
	go func() {
		_, err := client.SendRequest(context.Background(), "shutdown", nil)
		done <- err
	}()

	for i := 0; i < 1000; i++ {
		sender.mu.Lock()
		n := len(sender.requests)
		sender.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	client.Close(context.Canceled)

	if err := <-done; err == nil {
		t.Fatal("expected Close to unblock the pending request with an error")
	}
}
