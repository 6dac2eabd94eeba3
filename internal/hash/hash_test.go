package hash

import (
	"encoding/base64"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
)

func TestBytesEncoding(t *testing.T) {
	data := []byte("hello world")

	got := Bytes(data)

	raw, err := base64.StdEncoding.DecodeString(got)
	if err != nil {
		t.Fatalf("Bytes() returned invalid base64 %q: %v", got, err)
	}
	if len(raw) != 8 {
		t.Fatalf("decoded hash has %d bytes, want 8", len(raw))
	}
	if sum := binary.LittleEndian.Uint64(raw); sum != xxhash.Sum64(data) {
		t.Errorf("decoded sum = %x, want %x", sum, xxhash.Sum64(data))
	}
}

func TestDigestMatchesBytes(t *testing.T) {
	data := []byte(strings.Repeat("modvault", 4096))

	d := NewDigest()
	// Write in uneven chunks to exercise streaming.
	for i := 0; i < len(data); i += 1000 {
		end := min(i+1000, len(data))
		if _, err := d.Write(data[i:end]); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	if d.String() != Bytes(data) {
		t.Errorf("Digest = %s, want %s", d.String(), Bytes(data))
	}
	if d.Size() != int64(len(data)) {
		t.Errorf("Size = %d, want %d", d.Size(), len(data))
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textures.7z")
	content := []byte("some texture bytes")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	h, size, err := File(path)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}
	if h != Bytes(content) {
		t.Errorf("File() = %s, want %s", h, Bytes(content))
	}
	if size != int64(len(content)) {
		t.Errorf("size = %d, want %d", size, len(content))
	}
}

func TestFileNotFound(t *testing.T) {
	if _, _, err := File("non-existent-file"); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestToBase64URL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ab+c/d==", "ab-c_d"},
		{"plain", "plain"},
		{"x/y+z=", "x_y-z"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ToBase64URL(tt.in); got != tt.want {
				t.Errorf("ToBase64URL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
