package middleware

import (
	"github.com/google/uuid"

	"github.com/firi/golangserver/jsonrpc"
	"github.com/firi/golangserver/serverlog"
)

// TracingMiddleware logs every message edge with structured fields. Each
// inbound request's entry carries a fresh correlation_id; outbound
// requests, notifications and responses are logged with their method
// (and a response's id) but without that correlation_id.
// google/uuid is a direct dependency of jinterlante1206-AleutianLocal;
// wired here because correlating concurrent in-flight requests is
// precisely the kind of problem a dispatch engine runs into once
// Executor bounds execution to more than one in flight at a time.
type TracingMiddleware struct {
	Log serverlog.Logger
}

func (t TracingMiddleware) OnIncomingMessage(msg jsonrpc.Message) jsonrpc.Message {
	if msg.Kind == jsonrpc.KindRequest {
		id := uuid.NewString()
		t.Log.With(map[string]any{"correlation_id": id, "method": msg.Request.Method}).
			Debug("request received")
	}
	return msg
}

func (t TracingMiddleware) OnOutgoingRequest(req jsonrpc.Request) jsonrpc.Request {
	t.Log.With(map[string]any{"method": req.Method}).Debug("request issued")
	return req
}

func (t TracingMiddleware) OnOutgoingNotification(n jsonrpc.Notification) jsonrpc.Notification {
	t.Log.With(map[string]any{"method": n.Method}).Debug("notification issued")
	return n
}

func (t TracingMiddleware) OnOutgoingResponse(req jsonrpc.Request, resp jsonrpc.Response) jsonrpc.Response {
	fields := map[string]any{"method": req.Method}
	if resp.ID != nil {
		fields["id"] = resp.ID.String()
	}
	t.Log.With(fields).Debug("response sent")
	return resp
}
