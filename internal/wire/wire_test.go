package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rmorin/wsbridge/internal/compression"
)

func TestCodec_RoundTrip(t *testing.T) {
	c := NewCodec(nil)

	msg, err := NewMessage("chat", map[string]string{"text": "hello"})
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}

	data, err := c.Encode(msg)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Type != "chat" {
		t.Errorf("Type = %s, want chat", got.Type)
	}

	var payload map[string]string
	if err := json.Unmarshal(got.Data, &payload); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if payload["text"] != "hello" {
		t.Errorf("data.text = %s, want hello", payload["text"])
	}
}

func TestCodec_Compressed(t *testing.T) {
	for _, name := range []string{"gzip", "snappy"} {
		comp, err := compression.New(name)
		if err != nil {
			t.Fatalf("compression.New(%s) failed: %v", name, err)
		}
		c := NewCodec(comp)

		msg, _ := NewMessage("status", map[string]any{"connected": true, "peers": 3})
		data, err := c.Encode(msg)
		if err != nil {
			t.Fatalf("[%s] Encode failed: %v", name, err)
		}

		got, err := c.Decode(data)
		if err != nil {
			t.Fatalf("[%s] Decode failed: %v", name, err)
		}
		if got.Type != "status" {
			t.Errorf("[%s] Type = %s, want status", name, got.Type)
		}
	}
}

func TestCodec_Decode_UncompressedFallback(t *testing.T) {
	// A gzip-enabled codec must still accept plain JSON from the peer.
	comp, _ := compression.New("gzip")
	c := NewCodec(comp)

	got, err := c.Decode([]byte(`{"type":"message","data":{"n":1}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Type != "message" {
		t.Errorf("Type = %s, want message", got.Type)
	}
}

func TestCodec_Decode_Invalid(t *testing.T) {
	c := NewCodec(nil)

	if _, err := c.Decode([]byte("not json")); err == nil {
		t.Error("Decode of garbage succeeded, want error")
	}
	if _, err := c.Decode([]byte(`{"data":{}}`)); err == nil {
		t.Error("Decode of typeless envelope succeeded, want error")
	}
}

func TestHeartbeatMessages(t *testing.T) {
	ping := Ping()
	if ping.Type != TypePing {
		t.Errorf("Ping().Type = %s, want %s", ping.Type, TypePing)
	}
	if !ping.IsHeartbeat() {
		t.Error("Ping() not recognized as heartbeat")
	}

	pong := Pong()
	if pong.Type != TypePong || !pong.IsHeartbeat() {
		t.Errorf("Pong() = %+v, want heartbeat pong", pong)
	}

	now := time.Now().UnixMilli()
	if ping.Timestamp == 0 || ping.Timestamp > now+1000 {
		t.Errorf("Ping().Timestamp = %d, not near now (%d)", ping.Timestamp, now)
	}

	msg, _ := NewMessage("chat", "hi")
	if msg.IsHeartbeat() {
		t.Error("chat message recognized as heartbeat")
	}
}
