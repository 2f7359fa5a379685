package hash

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	gohash "hash"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
)

const bufferSize = 4096 // chunk size for streaming file contents

// Algorithm is the digest a scan hashes its files with.
type Algorithm uint8

const (
	MD5 Algorithm = iota + 1
	SHA1
	SHA224
	SHA256
	SHA384
	SHA512
	BLAKE2b
	BLAKE2s
)

// DefaultAlgorithm is used when neither config nor flags pick one.
const DefaultAlgorithm = MD5

var algorithmNames = map[Algorithm]string{
	MD5:     "md5",
	SHA1:    "sha1",
	SHA224:  "sha224",
	SHA256:  "sha256",
	SHA384:  "sha384",
	SHA512:  "sha512",
	BLAKE2b: "blake2b",
	BLAKE2s: "blake2s",
}

// Algorithms lists every supported algorithm in declaration order.
func Algorithms() []Algorithm {
	return []Algorithm{MD5, SHA1, SHA224, SHA256, SHA384, SHA512, BLAKE2b, BLAKE2s}
}

// ParseAlgorithm resolves a canonical name such as "sha256" (case-insensitive,
// dashes ignored so "SHA-256" works too).
func ParseAlgorithm(name string) (Algorithm, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "")
	for _, alg := range Algorithms() {
		if algorithmNames[alg] == normalized {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("unsupported hash algorithm: %q", name)
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

// Valid reports whether a is one of the declared variants.
func (a Algorithm) Valid() bool {
	_, ok := algorithmNames[a]
	return ok
}

// New returns a fresh digest for the algorithm. It panics on an invalid
// variant; callers validate with Valid or ParseAlgorithm first.
func (a Algorithm) New() gohash.Hash {
	switch a {
	case MD5:
		return md5.New()
	case SHA1:
		return sha1.New()
	case SHA224:
		return sha256.New224()
	case SHA256:
		return sha256.New()
	case SHA384:
		return sha512.New384()
	case SHA512:
		return sha512.New()
	case BLAKE2b:
		h, _ := blake2b.New512(nil) // only fails for oversized keys
		return h
	case BLAKE2s:
		h, _ := blake2s.New256(nil)
		return h
	default:
		panic(fmt.Sprintf("hash: invalid algorithm %d", uint8(a)))
	}
}

// Size is the digest length in bytes.
func (a Algorithm) Size() int {
	return a.New().Size()
}

// HashFile streams the file through the algorithm and returns the lowercase
// hex digest. The context is checked between chunks; on any error the partial
// digest is discarded.
func HashFile(ctx context.Context, path string, alg Algorithm) (string, error) {
	if !alg.Valid() {
		return "", fmt.Errorf("unsupported hash algorithm: %s", alg)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := alg.New()
	buf := make([]byte, bufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := file.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// XXHashFunc adapts xxHash to go-merkletree's hash function signature.
func XXHashFunc(data []byte) ([]byte, error) {
	sum := xxhash.Sum64(data)

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, sum)
	return buf, nil
}
