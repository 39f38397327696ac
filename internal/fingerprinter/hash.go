package fingerprinter

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// hashBlockSize is the streaming read-buffer size for content hashing,
// matching the teacher's verifier.go blockSize constant.
const hashBlockSize = 64 * 1024

// hashFile streams path through BLAKE3 and returns the hex digest.
// Grounded on original_source/src/fingerprint.rs::compute_fingerprint_for_entry,
// which streams the file in 16KiB chunks through blake3; a larger buffer
// is used here since Go's bufio.Reader already amortizes syscalls.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := blake3.New()
	buf := make([]byte, hashBlockSize)
	if _, err := io.CopyBuffer(h, bufio.NewReaderSize(f, hashBlockSize), buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// schemaSignature hashes the sorted, pipe-joined column names, matching
// fingerprint.rs::compute_schema_signature: order-invariant, 16 hex chars.
func schemaSignature(columns []string) string {
	sorted := make([]string, len(columns))
	copy(sorted, columns)
	sort.Strings(sorted)
	joined := strings.Join(sorted, "|")

	h := blake3.New()
	_, _ = h.Write([]byte(joined))
	digest := hex.EncodeToString(h.Sum(nil))
	if len(digest) > 16 {
		return digest[:16]
	}
	return digest
}
