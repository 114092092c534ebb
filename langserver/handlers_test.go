package langserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/firi/golangserver/jsonrpc"
)

func TestHandleRequestDispatchesBoundMethod(t *testing.T) {
	called := false
	desc := &Description{
		Initialize: func(ctx context.Context, client Client, params json.RawMessage) (json.RawMessage, *jsonrpc.Error) {
			called = true
			return json.RawMessage(`{"capabilities":{}}`), nil
		},
	}
	result, rpcErr := desc.HandleRequest(context.Background(), nil, "initialize", nil)
	if rpcErr != nil {
		t.Fatalf("unexpected error: %v", rpcErr)
	}
	if !called {
		t.Fatal("expected Initialize to be invoked")
	}
	if string(result) != `{"capabilities":{}}` {
		t.Fatalf("got %s", result)
	}
}

func TestHandleRequestUnboundMethodIsMethodNotFound(t *testing.T) {
	desc := &Description{}
	_, rpcErr := desc.HandleRequest(context.Background(), nil, "textDocument/hover", nil)
	if rpcErr == nil || rpcErr.Code != jsonrpc.MethodNotFound {
		t.Fatalf("expected MethodNotFound, got %v", rpcErr)
	}
}

func TestHandleNotificationUnboundMethodIsSilentNoOp(t *testing.T) {
	desc := &Description{}
	desc.HandleNotification(context.Background(), nil, "textDocument/didOpen", nil)
}

func TestHandleNotificationDispatchesBoundMethod(t *testing.T) {
	var seen string
	desc := &Description{
		DidOpen: func(ctx context.Context, client Client, params json.RawMessage) {
			seen = string(params)
		},
	}
	desc.HandleNotification(context.Background(), nil, "textDocument/didOpen", json.RawMessage(`{"uri":"file:///a"}`))
	if seen != `{"uri":"file:///a"}` {
		t.Fatalf("got %s", seen)
	}
}

func TestOtherRequestsCatchAll(t *testing.T) {
	desc := &Description{
		OtherRequests: map[string]RequestFunc{
			"custom/ping": func(ctx context.Context, client Client, params json.RawMessage) (json.RawMessage, *jsonrpc.Error) {
				return json.RawMessage(`"pong"`), nil
			},
		},
	}
	result, rpcErr := desc.HandleRequest(context.Background(), nil, "custom/ping", nil)
	if rpcErr != nil {
		t.Fatal(rpcErr)
	}
	if string(result) != `"pong"` {
		t.Fatalf("got %s", result)
	}
}
