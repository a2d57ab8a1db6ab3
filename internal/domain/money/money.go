// Package money converts between rupiah display strings such as
// "Rp1.000.000" and integer minor units. Every amount string in the
// system is parsed here; arithmetic is done on int64 only.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	Prefix    = "Rp"
	Separator = "."
)

var ErrInvalidAmount = errors.New("invalid amount")

// Parse accepts "Rp400.000", "400.000", "Rp400000" or "400000".
// When separators are used the groups must be well formed.
func Parse(s string) (int64, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, Prefix))
	if raw == "" {
		return 0, invalid(s)
	}

	if strings.Contains(raw, Separator) {
		groups := strings.Split(raw, Separator)
		if len(groups[0]) == 0 || len(groups[0]) > 3 {
			return 0, invalid(s)
		}
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return 0, invalid(s)
			}
		}
		raw = strings.Join(groups, "")
	}

	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, invalid(s)
		}
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalid(s)
	}
	return n, nil
}

// Format renders n as "Rp" followed by dot-grouped digits. Negative
// amounts get a leading minus sign and are rejected by Parse.
func Format(n int64) string {
	var b strings.Builder
	var digits string
	if n < 0 {
		b.WriteByte('-')
		digits = strconv.FormatUint(uint64(-(n+1))+1, 10)
	} else {
		digits = strconv.FormatInt(n, 10)
	}

	b.WriteString(Prefix)
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(Separator)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func Multiply(amount, quantity int64) (int64, error) {
	if amount < 0 || quantity < 0 {
		return 0, fmt.Errorf("%w: negative operand", ErrInvalidAmount)
	}
	if quantity != 0 && amount > math.MaxInt64/quantity {
		return 0, fmt.Errorf("%w: %d x %d overflows", ErrInvalidAmount, amount, quantity)
	}
	return amount * quantity, nil
}

func Add(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("%w: negative operand", ErrInvalidAmount)
	}
	if a > math.MaxInt64-b {
		return 0, fmt.Errorf("%w: %d + %d overflows", ErrInvalidAmount, a, b)
	}
	return a + b, nil
}

func invalid(s string) error {
	return fmt.Errorf("%w: %q", ErrInvalidAmount, s)
}
