package deviceid

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// FormatMode defines the output length of the device hash.
type FormatMode int

const (
	// Format64 outputs 64 hex characters (2^6), the full SHA-256 digest. Default.
	Format64 FormatMode = iota
	// Format32 outputs 32 hex characters (2^5), truncated SHA-256
	Format32
	// Format128 outputs 128 hex characters (2^7), double SHA-256
	Format128
	// Format256 outputs 256 hex characters (2^8), quadruple SHA-256
	Format256
)

// Hash derives the device hash of attrs with no salt and no extra signals.
//
// The algorithm is fixed:
//
//	d_model  = SHA-256(model)
//	d_memory = SHA-256(decimal(totalMemoryBytes))
//	d_disk   = SHA-256(decimal(totalDiskBytes))
//	hash     = hex(SHA-256(d_model || d_memory || d_disk))
//
// Integers are rendered in base 10 without separators. Every field is
// digested separately, so no delimiter can collide with field content.
func Hash(attrs Attributes) string {
	return deriveHash(canonicalFields(attrs), "", Format64)
}

// canonicalFields returns the normalized string form of attrs in hashing order.
func canonicalFields(attrs Attributes) []string {
	return []string{
		attrs.Model,
		strconv.FormatInt(attrs.TotalMemoryBytes, 10),
		strconv.FormatInt(attrs.TotalDiskBytes, 10),
	}
}

// deriveHash digests every field on its own, then digests the concatenated
// field digests. A non-empty salt contributes a leading digest.
func deriveHash(fields []string, salt string, mode FormatMode) string {
	combined := make([]byte, 0, (len(fields)+1)*sha256.Size)
	if salt != "" {
		d := sha256.Sum256([]byte(salt))
		combined = append(combined, d[:]...)
	}

	for _, field := range fields {
		d := sha256.Sum256([]byte(field))
		combined = append(combined, d[:]...)
	}

	sum := sha256.Sum256(combined)

	return formatHash(hex.EncodeToString(sum[:]), mode)
}

// formatHash formats a 64-character SHA-256 hex digest according to mode.
// All formats produce power-of-2 lengths without dashes.
func formatHash(hash string, mode FormatMode) string {
	if len(hash) != 64 {
		return hash
	}

	switch mode {
	case Format32:
		return hash[:32]

	case Format128:
		hash2 := sha256.Sum256([]byte(hash))

		return hash + hex.EncodeToString(hash2[:])

	case Format256:
		hash2 := sha256.Sum256([]byte(hash))
		hash3 := sha256.Sum256([]byte(hex.EncodeToString(hash2[:])))
		hash4 := sha256.Sum256([]byte(hex.EncodeToString(hash3[:])))

		return hash + hex.EncodeToString(hash2[:]) +
			hex.EncodeToString(hash3[:]) + hex.EncodeToString(hash4[:])

	default:
		return hash
	}
}

// Length returns the number of hex characters a hash in mode contains.
func (m FormatMode) Length() int {
	switch m {
	case Format32:
		return 32
	case Format128:
		return 128
	case Format256:
		return 256
	default:
		return 64
	}
}
