package daemon

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/firi/golangserver/lsptypes"
)

type fakeClient struct {
	mu      sync.Mutex
	notifs  []string
	params  []json.RawMessage
}

func (f *fakeClient) ShowMessage(lsptypes.ShowMessageParams) error { return nil }
func (f *fakeClient) ShowMessageRequest(context.Context, lsptypes.ShowMessageRequestParams) (*lsptypes.MessageActionItem, error) {
	return nil, nil
}
func (f *fakeClient) LogMessage(lsptypes.LogMessageParams) error { return nil }
func (f *fakeClient) ApplyEdit(context.Context, lsptypes.ApplyWorkspaceEditParams) (*lsptypes.ApplyWorkspaceEditResponse, error) {
	return nil, nil
}
func (f *fakeClient) Progress(lsptypes.ProgressParams) error { return nil }
func (f *fakeClient) Request(context.Context, string, json.RawMessage) (json.RawMessage, error) {
	return nil, nil
}
func (f *fakeClient) Notify(method string, params json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifs = append(f.notifs, method)
	f.params = append(f.params, params)
	return nil
}

func (f *fakeClient) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notifs)
}

func TestFileWatchBridgeDebouncesAndNotifies(t *testing.T) {
	dir := t.TempDir()
	client := &fakeClient{}

	bridge, err := NewFileWatchBridge(dir, client, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer bridge.Stop()

	path := filepath.Join(dir, "main.go")
	if err := os.WriteFile(path, []byte("package main"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for client.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	if client.count() == 0 {
		t.Fatal("expected at least one didChangeWatchedFiles notification")
	}

	var params lsptypes.DidChangeWatchedFilesParams
	if err := json.Unmarshal(client.params[0], &params); err != nil {
		t.Fatal(err)
	}
	if len(params.Changes) == 0 {
		t.Fatal("expected at least one file change event")
	}
}

func TestFileWatchBridgeRespectsShouldWatchFilter(t *testing.T) {
	dir := t.TempDir()
	client := &fakeClient{}

	bridge, err := NewFileWatchBridge(dir, client, nil, func(path string) bool {
		return filepath.Ext(path) == ".go"
	})
	if err != nil {
		t.Fatal(err)
	}
	defer bridge.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(700 * time.Millisecond)

	if client.count() != 0 {
		t.Fatalf("expected non-.go files to be filtered out, got %d notifications", client.count())
	}
}
