package files

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes the name, size and modification time of every file.
// Callers pass the slice in a stable order; FindWorkbooks sorts by name.
// An empty set has a fixed fingerprint.
func Fingerprint(files []FileInfo) string {
	h, _ := blake2b.New256(nil)

	var buf [8]byte
	for _, f := range files {
		h.Write([]byte(f.Name))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(buf[:], uint64(f.Size))
		h.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], uint64(f.ModTime.UnixNano()))
		h.Write(buf[:])
	}

	return hex.EncodeToString(h.Sum(nil))
}
