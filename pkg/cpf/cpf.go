// Package cpf validates Brazilian taxpayer identifiers (CPF).
//
// A CPF is 11 digits: a 9-digit base followed by two mod-11 check digits. Inputs
// may carry the usual formatting separators ("529.982.247-25"); any other
// non-digit character makes the input invalid. Every function here is pure.
package cpf

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	dErrors "cpfgate/pkg/domain-errors"
)

// Length is the number of digits in a canonical CPF.
const Length = 11

// CPF is a validated, canonical 11-digit identifier.
type CPF string

func (c CPF) String() string {
	return string(c)
}

// Hash returns a hex SHA-256 digest of the identifier, used wherever the raw
// value must not appear (logs, audit events, cache keys).
func (c CPF) Hash() string {
	return Hash(string(c))
}

// Hash digests an arbitrary identifier string.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Normalize strips formatting separators and reports whether what remains is
// exactly 11 ASCII digits. It does not check the check digits.
func Normalize(raw string) (string, bool) {
	var b strings.Builder
	b.Grow(Length)
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			if b.Len() == Length {
				return "", false
			}
			b.WriteRune(r)
		case r == '.' || r == '-' || r == ' ' || r == '\t':
		default:
			return "", false
		}
	}
	if b.Len() != Length {
		return "", false
	}
	return b.String(), true
}

// CheckDigits computes the two check digits for a 9-digit base. The base must
// contain only ASCII digits.
func CheckDigits(base string) (byte, byte) {
	d1 := checkDigit(base, 10)
	d2 := checkDigit(base+string(d1), 11)
	return d1, d2
}

func checkDigit(digits string, firstWeight int) byte {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (firstWeight - i)
	}
	d := 11 - sum%11
	if d >= 10 {
		d = 0
	}
	return byte('0' + d)
}

// Valid reports whether raw reduces to 11 digits whose last two match the
// computed check digits.
func Valid(raw string) bool {
	digits, ok := Normalize(raw)
	if !ok {
		return false
	}
	d1, d2 := CheckDigits(digits[:9])
	return digits[9] == d1 && digits[10] == d2
}

// IsRepeated reports whether every digit of a canonical CPF is the same.
// Such sequences pass the checksum but are never issued.
func IsRepeated(digits string) bool {
	if digits == "" {
		return false
	}
	return strings.Count(digits, digits[:1]) == len(digits)
}

// Validator applies Valid plus optional deployment rules.
type Validator struct {
	rejectRepeated bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithRejectRepeated rejects repdigit sequences such as 11111111111.
func WithRejectRepeated() Option {
	return func(v *Validator) {
		v.rejectRepeated = true
	}
}

// NewValidator builds a Validator.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Valid reports whether raw is an acceptable CPF for this validator.
func (v *Validator) Valid(raw string) bool {
	_, err := v.Parse(raw)
	return err == nil
}

// Parse validates raw and returns its canonical form.
func (v *Validator) Parse(raw string) (CPF, error) {
	if !Valid(raw) {
		return "", dErrors.New(dErrors.CodeValidation, "CPF invalid")
	}
	digits, _ := Normalize(raw)
	if v != nil && v.rejectRepeated && IsRepeated(digits) {
		return "", dErrors.New(dErrors.CodeValidation, "CPF invalid")
	}
	return CPF(digits), nil
}
