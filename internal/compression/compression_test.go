package compression

import (
	"bytes"
	"testing"
)

func TestGzip_RoundTrip(t *testing.T) {
	c := Gzip{}
	in := []byte(`{"type":"message","data":{"text":"hello"}}`)

	compressed, err := c.Compress(in)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	out, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Errorf("round trip = %q, want %q", out, in)
	}
}

func TestGzip_Decompress_InvalidHeader(t *testing.T) {
	c := Gzip{}

	if _, err := c.Decompress([]byte("not gzip")); err == nil {
		t.Error("Decompress of plain text succeeded, want error")
	}
	if _, err := c.Decompress([]byte{0x1F}); err == nil {
		t.Error("Decompress of short data succeeded, want error")
	}
}

func TestSnappy_RoundTrip(t *testing.T) {
	c := Snappy{}
	in := []byte(`{"type":"ping","timestamp":1700000000000}`)

	compressed, err := c.Compress(in)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	out, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Errorf("round trip = %q, want %q", out, in)
	}
}

func TestSnappy_Decompress_Empty(t *testing.T) {
	c := Snappy{}
	if _, err := c.Decompress(nil); err == nil {
		t.Error("Decompress of empty data succeeded, want error")
	}
}

func TestNew(t *testing.T) {
	cases := []struct {
		name    string
		wantNil bool
		wantErr bool
	}{
		{"", true, false},
		{"gzip", false, false},
		{"snappy", false, false},
		{"zstd", false, true},
	}

	for _, tc := range cases {
		c, err := New(tc.name)
		if tc.wantErr {
			if err == nil {
				t.Errorf("New(%q) error = nil, want error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("New(%q) error = %v", tc.name, err)
		}
		if (c == nil) != tc.wantNil {
			t.Errorf("New(%q) = %v, wantNil = %v", tc.name, c, tc.wantNil)
		}
	}
}
