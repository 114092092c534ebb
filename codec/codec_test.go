package codec

import (
	"bytes"
	"io"
	"testing"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	body := []byte(`{"jsonrpc":"2.0","method":"initialized","params":{}}`)
	if err := w.Write(body); err != nil {
		t.Fatal(err)
	}

	r := NewReader(&buf)
	got, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(body) {
		t.Fatalf("got %s, want %s", got, body)
	}
}

func TestReaderMultipleFrames(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	bodies := [][]byte{[]byte(`{"a":1}`), []byte(`{"b":2}`)}
	for _, b := range bodies {
		if err := w.Write(b); err != nil {
			t.Fatal(err)
		}
	}

	r := NewReader(&buf)
	for _, want := range bodies {
		got, err := r.Next()
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(want) {
			t.Fatalf("got %s, want %s", got, want)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after last frame, got %v", err)
	}
}

func TestReaderMissingContentLength(t *testing.T) {
	r := NewReader(bytes.NewBufferString("Content-Type: application/vscode-jsonrpc\r\n\r\n{}"))
	_, err := r.Next()
	var fe *FramingError
	if err == nil {
		t.Fatal("expected a framing error")
	}
	if !asFramingError(err, &fe) {
		t.Fatalf("expected *FramingError, got %T: %v", err, err)
	}
}

func TestReaderContentTypeIgnored(t *testing.T) {
	raw := "Content-Length: 2\r\nContent-Type: application/vscode-jsonrpc; charset=utf-8\r\n\r\n{}"
	r := NewReader(bytes.NewBufferString(raw))
	body, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "{}" {
		t.Fatalf("got %s, want {}", body)
	}
}

func TestReaderMalformedHeaderLine(t *testing.T) {
	r := NewReader(bytes.NewBufferString("not-a-header-line\r\n\r\n"))
	_, err := r.Next()
	var fe *FramingError
	if !asFramingError(err, &fe) {
		t.Fatalf("expected *FramingError, got %T: %v", err, err)
	}
}

func TestReaderUnexpectedEOFMidBody(t *testing.T) {
	r := NewReader(bytes.NewBufferString("Content-Length: 10\r\n\r\n{}"))
	_, err := r.Next()
	var fe *FramingError
	if !asFramingError(err, &fe) {
		t.Fatalf("expected *FramingError, got %T: %v", err, err)
	}
}

func asFramingError(err error, target **FramingError) bool {
	fe, ok := err.(*FramingError)
	if ok {
		*target = fe
	}
	return ok
}
