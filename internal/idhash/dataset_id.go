// Package idhash derives deterministic identifiers for datasets and grading runs.
package idhash

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"

	"github.com/mr-tron/base58"

	"fundamental-grader/internal/domain"
)

// idBytes is the number of hash bytes kept in an identifier.
const idBytes = 16

// ComputeDatasetID hashes the canonical form of a dataset: every column name in
// order, then every row's cells in column order. Each field is length-prefixed.
// Returns the base58 encoding of the first 16 bytes of the SHA256 digest.
func ComputeDatasetID(ds *domain.Dataset) string {
	h := sha256.New()
	columns := ds.Columns()

	writeField(h, fmt.Sprintf("cols=%d", len(columns)))
	for _, c := range columns {
		writeField(h, c)
	}
	for _, company := range ds.Companies() {
		writeField(h, "row")
		for _, col := range columns {
			raw, _ := company.Raw(col)
			writeField(h, raw)
		}
	}

	return encode(h)
}

func writeField(w io.Writer, s string) {
	fmt.Fprintf(w, "%d:%s", len(s), s)
}

func encode(h hash.Hash) string {
	sum := h.Sum(nil)
	return base58.Encode(sum[:idBytes])
}
