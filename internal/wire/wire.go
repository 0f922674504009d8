package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rmorin/wsbridge/internal/compression"
)

// Reserved heartbeat message types.
const (
	TypePing = "ping"
	TypePong = "pong"
)

// Message is the wire envelope for one logical message.
type Message struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// NewMessage builds an envelope with the current timestamp. data may be nil
// for payload-less messages.
func NewMessage(typ string, data any) (Message, error) {
	msg := Message{
		Type:      typ,
		Timestamp: time.Now().UnixMilli(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Message{}, fmt.Errorf("marshal message data: %w", err)
		}
		msg.Data = raw
	}
	return msg, nil
}

// Ping returns a timestamped heartbeat probe.
func Ping() Message {
	return Message{Type: TypePing, Timestamp: time.Now().UnixMilli()}
}

// Pong returns a timestamped heartbeat response.
func Pong() Message {
	return Message{Type: TypePong, Timestamp: time.Now().UnixMilli()}
}

// IsHeartbeat reports whether the message is heartbeat-internal.
func (m Message) IsHeartbeat() bool {
	return m.Type == TypePing || m.Type == TypePong
}

// Codec serializes envelopes, applying optional whole-frame compression.
type Codec struct {
	compressor compression.Compressor
}

// NewCodec creates a codec. compressor may be nil for plain JSON.
func NewCodec(compressor compression.Compressor) *Codec {
	return &Codec{compressor: compressor}
}

// Encode marshals the envelope and compresses it when compression is enabled.
func (c *Codec) Encode(msg Message) ([]byte, error) {
	if msg.Type == "" {
		return nil, fmt.Errorf("message type is required")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	if c.compressor != nil {
		data, err = c.compressor.Compress(data)
		if err != nil {
			return nil, fmt.Errorf("compress envelope: %w", err)
		}
	}
	return data, nil
}

// Decode unmarshals an envelope. When compression is enabled it first tries
// to decompress, falling back to the raw bytes so uncompressed peers still
// interoperate.
func (c *Codec) Decode(data []byte) (Message, error) {
	if c.compressor != nil {
		if plain, err := c.compressor.Decompress(data); err == nil {
			data = plain
		}
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("envelope missing type")
	}
	return msg, nil
}
