package idhash

import (
	"crypto/sha256"
	"strconv"

	"fundamental-grader/internal/domain"
)

// ComputeRunID computes a deterministic run_id.
// Formula: SHA256(dataset_id|variant|normalize), first 16 bytes, base58.
// Identical inputs graded with identical options share a run_id.
func ComputeRunID(datasetID string, variant domain.Variant, normalize bool) string {
	h := sha256.New()
	writeField(h, datasetID)
	writeField(h, string(variant))
	writeField(h, strconv.FormatBool(normalize))
	return encode(h)
}
