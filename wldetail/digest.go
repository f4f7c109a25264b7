package wldetail

import (
	"encoding/hex"
	"os"

	"golang.org/x/crypto/blake2b"
)

// The BLAKE2b-256 digest of generated output.
type Digest [blake2b.Size256]byte

func DigestOf(data []byte) Digest {
	return blake2b.Sum256(data)
}

// Returns the digest of the contents of path.
func DigestFile(path string) (Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, err
	}
	return DigestOf(data), nil
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
