// Package hash computes the content hashes used to address modlists and mods.
//
// A hash is the xxHash64 (seed 0) of the file bytes, serialized as the
// little-endian 8 bytes encoded in standard base64. This is the format
// Wabbajack manifests use for their archive hashes.
package hash

import (
	"encoding/base64"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Digest accumulates bytes written to it. It is an io.Writer so it can sit
// behind an io.MultiWriter while an upload is streamed to disk.
type Digest struct {
	d *xxhash.Digest
	n int64
}

func NewDigest() *Digest {
	return &Digest{d: xxhash.New()}
}

func (d *Digest) Write(p []byte) (int, error) {
	n, err := d.d.Write(p)
	d.n += int64(n)
	return n, err
}

// Size is the number of bytes written so far.
func (d *Digest) Size() int64 {
	return d.n
}

// String returns the encoded hash of everything written so far.
func (d *Digest) String() string {
	return encode(d.d.Sum64())
}

// Bytes hashes an in-memory buffer.
func Bytes(data []byte) string {
	return encode(xxhash.Sum64(data))
}

// Reader hashes everything read from r and reports the byte count.
func Reader(r io.Reader) (string, int64, error) {
	d := NewDigest()
	if _, err := io.Copy(d, r); err != nil {
		return "", 0, err
	}
	return d.String(), d.Size(), nil
}

// File hashes the file at path.
func File(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	return Reader(f)
}

// ToBase64URL converts an encoded hash into a form safe for filenames.
func ToBase64URL(h string) string {
	h = strings.ReplaceAll(h, "+", "-")
	h = strings.ReplaceAll(h, "/", "_")
	return strings.TrimRight(h, "=")
}

func encode(sum uint64) string {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], sum)
	return base64.StdEncoding.EncodeToString(buf[:])
}
