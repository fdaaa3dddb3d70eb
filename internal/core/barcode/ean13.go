// Package barcode implements the EAN-13 card identity: a 12-digit sequence
// number followed by a mod-10 check digit (odd positions weighted 1, even 3).
package barcode

import (
	"fmt"
	"strconv"
)

// SequenceLimit is one past the largest encodable sequence number.
const SequenceLimit int64 = 1_000_000_000_000

// maxAttempts bounds the search for an unused code.
const maxAttempts = 1000

// CheckDigit computes the check digit for a 12-digit base.
func CheckDigit(base12 string) (int, error) {
	if len(base12) != 12 {
		return 0, fmt.Errorf("barcode base must be 12 digits, got %d", len(base12))
	}
	var sumOdd, sumEven int
	for i := 0; i < 12; i++ {
		c := base12[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("barcode base contains non-digit %q", c)
		}
		d := int(c - '0')
		if (i+1)%2 == 0 {
			sumEven += d
		} else {
			sumOdd += d
		}
	}
	return (10 - (sumOdd+sumEven*3)%10) % 10, nil
}

// FromSequence encodes seq as a 13-digit code. Out-of-range values wrap
// into [0, SequenceLimit).
func FromSequence(seq int64) string {
	if seq < 0 {
		seq = 0
	}
	seq %= SequenceLimit
	base := fmt.Sprintf("%012d", seq)
	d, _ := CheckDigit(base)
	return base + strconv.Itoa(d)
}

// Valid reports whether code is 13 digits with a correct check digit.
func Valid(code string) bool {
	if len(code) != 13 {
		return false
	}
	d, err := CheckDigit(code[:12])
	if err != nil {
		return false
	}
	return code[12] == byte('0'+d)
}

// Sequence returns the sequence number encoded in a valid code.
func Sequence(code string) (int64, bool) {
	if !Valid(code) {
		return 0, false
	}
	seq, err := strconv.ParseInt(code[:12], 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// NextSequence returns one past the highest sequence among valid codes.
func NextSequence(existing []string) int64 {
	var maxSeq int64
	for _, code := range existing {
		if seq, ok := Sequence(code); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}

// GenerateUnique returns the next unused code after the existing ones.
func GenerateUnique(existing []string) string {
	used := make(map[string]bool, len(existing))
	for _, code := range existing {
		used[code] = true
	}
	seq := NextSequence(existing)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := FromSequence(seq)
		if !used[code] {
			return code
		}
		seq++
	}
	return FromSequence(seq)
}
