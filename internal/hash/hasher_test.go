package hash

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func TestHashFile_SmallFile(t *testing.T) {
	content := []byte("Hello, World!")
	testFile := writeFile(t, "test.txt", content)

	hash, err := HashFile(context.Background(), testFile, MD5)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	sum := md5.Sum(content)
	expected := hex.EncodeToString(sum[:])

	if hash != expected {
		t.Errorf("Hash mismatch: expected %s, got %s", expected, hash)
	}
}

func TestHashFile_LargeFile(t *testing.T) {
	// Spans many 4096-byte chunks plus a partial tail
	size := 1024*1024 + 17
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}
	testFile := writeFile(t, "large.bin", data)

	hash, err := HashFile(context.Background(), testFile, SHA256)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	sum := sha256.Sum256(data)
	expected := hex.EncodeToString(sum[:])

	if hash != expected {
		t.Errorf("Hash mismatch: expected %s, got %s", expected, hash)
	}
}

func TestHashFile_Blake2b(t *testing.T) {
	content := []byte("duplicate me")
	testFile := writeFile(t, "b.txt", content)

	hash, err := HashFile(context.Background(), testFile, BLAKE2b)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	sum := blake2b.Sum512(content)
	if hash != hex.EncodeToString(sum[:]) {
		t.Errorf("BLAKE2b mismatch: got %s", hash)
	}
}

func TestHashFile_DigestLengths(t *testing.T) {
	testFile := writeFile(t, "len.txt", []byte("abc"))

	expected := map[Algorithm]int{
		MD5:     16,
		SHA1:    20,
		SHA224:  28,
		SHA256:  32,
		SHA384:  48,
		SHA512:  64,
		BLAKE2b: 64,
		BLAKE2s: 32,
	}

	for alg, size := range expected {
		hash, err := HashFile(context.Background(), testFile, alg)
		if err != nil {
			t.Fatalf("%s: HashFile failed: %v", alg, err)
		}
		if len(hash) != size*2 {
			t.Errorf("%s: expected %d hex chars, got %d", alg, size*2, len(hash))
		}
		if alg.Size() != size {
			t.Errorf("%s: expected Size() %d, got %d", alg, size, alg.Size())
		}
	}
}

func TestHashFile_Deterministic(t *testing.T) {
	first := writeFile(t, "a.txt", []byte("same bytes"))
	second := writeFile(t, "b.txt", []byte("same bytes"))
	other := writeFile(t, "c.txt", []byte("other byte"))

	for _, alg := range Algorithms() {
		h1, err := HashFile(context.Background(), first, alg)
		if err != nil {
			t.Fatalf("%s: HashFile failed: %v", alg, err)
		}
		h1again, _ := HashFile(context.Background(), first, alg)
		h2, _ := HashFile(context.Background(), second, alg)
		h3, _ := HashFile(context.Background(), other, alg)

		if h1 != h1again || h1 != h2 {
			t.Errorf("%s: identical content should hash identically", alg)
		}
		if h1 == h3 {
			t.Errorf("%s: different content should hash differently", alg)
		}
	}
}

func TestHashFile_NonExistent(t *testing.T) {
	hash, err := HashFile(context.Background(), "/nonexistent/file.txt", MD5)
	if err == nil {
		t.Error("HashFile should return error for nonexistent file")
	}
	if hash != "" {
		t.Errorf("Expected empty digest on error, got %q", hash)
	}
}

func TestHashFile_EmptyFile(t *testing.T) {
	testFile := writeFile(t, "empty.txt", nil)

	hash, err := HashFile(context.Background(), testFile, MD5)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	if hash != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("Unexpected MD5 of empty file: %s", hash)
	}
}

func TestHashFile_Cancelled(t *testing.T) {
	testFile := writeFile(t, "c.txt", []byte("content"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := HashFile(ctx, testFile, MD5); err == nil {
		t.Error("HashFile should fail on a cancelled context")
	}
}

func TestHashFile_InvalidAlgorithm(t *testing.T) {
	testFile := writeFile(t, "x.txt", []byte("content"))

	if _, err := HashFile(context.Background(), testFile, Algorithm(0)); err == nil {
		t.Error("HashFile should reject an invalid algorithm")
	}
}

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]Algorithm{
		"md5":     MD5,
		"SHA-1":   SHA1,
		"sha224":  SHA224,
		"Sha256":  SHA256,
		"sha-384": SHA384,
		"sha512":  SHA512,
		"BLAKE2b": BLAKE2b,
		"blake2s": BLAKE2s,
	}
	for input, expected := range cases {
		alg, err := ParseAlgorithm(input)
		if err != nil {
			t.Errorf("ParseAlgorithm(%q) failed: %v", input, err)
			continue
		}
		if alg != expected {
			t.Errorf("ParseAlgorithm(%q): expected %s, got %s", input, expected, alg)
		}
		if roundTrip, _ := ParseAlgorithm(alg.String()); roundTrip != alg {
			t.Errorf("String() of %s does not parse back", alg)
		}
	}

	if _, err := ParseAlgorithm("crc32"); err == nil {
		t.Error("ParseAlgorithm should reject unknown names")
	}
}

func TestXXHashFunc(t *testing.T) {
	data := []byte("test data")

	hashBytes, err := XXHashFunc(data)
	if err != nil {
		t.Fatalf("XXHashFunc failed: %v", err)
	}

	if len(hashBytes) != 8 {
		t.Errorf("Expected 8 bytes, got %d", len(hashBytes))
	}

	h := xxhash.New()
	h.Write(data)
	if hex.EncodeToString(hashBytes) != hex.EncodeToString(h.Sum(nil)) {
		t.Error("XXHashFunc should match the big-endian xxhash digest")
	}
}
