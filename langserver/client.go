package langserver

import (
	"context"
	"encoding/json"

	"github.com/firi/golangserver/lsptypes"
	"github.com/firi/golangserver/peer"
)

// peerClient adapts a *peer.Client into the langserver.Client capability
// surface, the same shape client.rs's LanguageClient impl gives
// Client<C>: notification-shaped calls (show_message, log_message,
// progress) fire-and-forget via SendNotification, request-shaped calls
// (show_message_request, apply_edit) round-trip via SendRequest.
type peerClient struct {
	peer *peer.Client
}

// NewClient wraps a peer.Client as the capability surface langserver
// handlers see.
func NewClient(p *peer.Client) Client {
	return &peerClient{peer: p}
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		// Only ever reached by a programmer error (an unmarshalable field
		// in a lsptypes struct), not by anything a remote peer controls.
		panic("langserver: failed to marshal outgoing params: " + err.Error())
	}
	return b
}

func (c *peerClient) ShowMessage(params lsptypes.ShowMessageParams) error {
	return c.peer.SendNotification(lsptypes.MethodShowMessage, mustMarshal(params))
}

func (c *peerClient) ShowMessageRequest(ctx context.Context, params lsptypes.ShowMessageRequestParams) (*lsptypes.MessageActionItem, error) {
	raw, err := c.peer.SendRequest(ctx, lsptypes.MethodShowMessageRequest, mustMarshal(params))
	if err != nil {
		return nil, err
	}
	if raw == nil || string(raw) == "null" {
		return nil, nil
	}
	var item lsptypes.MessageActionItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *peerClient) LogMessage(params lsptypes.LogMessageParams) error {
	return c.peer.SendNotification(lsptypes.MethodLogMessage, mustMarshal(params))
}

func (c *peerClient) ApplyEdit(ctx context.Context, params lsptypes.ApplyWorkspaceEditParams) (*lsptypes.ApplyWorkspaceEditResponse, error) {
	raw, err := c.peer.SendRequest(ctx, lsptypes.MethodApplyEdit, mustMarshal(params))
	if err != nil {
		return nil, err
	}
	var resp lsptypes.ApplyWorkspaceEditResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *peerClient) Progress(params lsptypes.ProgressParams) error {
	return c.peer.SendNotification(lsptypes.MethodProgress, mustMarshal(params))
}

func (c *peerClient) Request(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	return c.peer.SendRequest(ctx, method, params)
}

func (c *peerClient) Notify(method string, params json.RawMessage) error {
	return c.peer.SendNotification(method, params)
}
