// Package hashing holds the content hash primitives ids and names are
// derived from. Every function here is total: any string input yields a
// result, there is no error path.
package hashing

import (
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// DigestLength is the length of a Digest in hex characters (128 bit).
const DigestLength = 32

// MaxDigits is the widest decimal id BoundedInt produces.
const MaxDigits = 15

// Digest returns the 128-bit content hash of input as lowercase hex.
func Digest(input string) string {
	sum := xxh3.HashString128(input).Bytes()
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first length hex characters of Digest(input).
// A length outside (0, DigestLength] returns the full digest.
func ShortHash(input string, length int) string {
	d := Digest(input)
	if length <= 0 || length >= len(d) {
		return d
	}
	return d[:length]
}

// BoundedInt derives a decimal integer of at most maxDigits digits from the
// digest of input. Decimal characters of the hex digest are read left to
// right until maxDigits have been taken. When the digest runs out first the
// value is padded with a trailing 1 and scaled to the requested width, so
// short digit runs do not crowd into the low end of the id space.
func BoundedInt(input string, maxDigits int) int64 {
	if maxDigits < 1 {
		maxDigits = 1
	}
	if maxDigits > MaxDigits {
		maxDigits = MaxDigits
	}
	return boundedDigits(Digest(input), maxDigits)
}

func boundedDigits(digest string, maxDigits int) int64 {
	var n int64
	taken := 0
	for i := 0; i < len(digest) && taken < maxDigits; i++ {
		c := digest[i]
		if c < '0' || c > '9' {
			continue
		}
		n = n*10 + int64(c-'0')
		taken++
	}
	if taken < maxDigits {
		n = n*10 + 1
		taken++
		for ; taken < maxDigits; taken++ {
			n *= 10
		}
	}
	return n
}
