package console

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// MaxFloatText is the longest FloatText result, excluding the NUL the
// caller appends.
const MaxFloatText = 12

// Number parse errors.
var (
	ErrSyntax = errors.New("not a number")
	ErrRange  = errors.New("number out of range")
)

// NumberError records a failed number conversion.
type NumberError struct {
	Input string
	Err   error
}

// Error returns the error message.
func (e *NumberError) Error() string {
	return fmt.Sprintf("console: parse %q: %v", e.Input, e.Err)
}

// Unwrap returns the underlying error.
func (e *NumberError) Unwrap() error {
	return e.Err
}

// Message returns the diagnostic shown to the user.
func (e *NumberError) Message() string {
	if errors.Is(e.Err, ErrRange) {
		return "Number is out of range"
	}
	return "Expected number but " + e.Input + " found"
}

// ParseInt parses a decimal int32 with an optional leading minus sign.
// An empty line is zero.
func ParseInt(s string) (int32, error) {
	if s == "" {
		return 0, nil
	}

	neg := s[0] == '-'
	digits := s
	if neg {
		digits = s[1:]
	}
	if digits == "" {
		return 0, &NumberError{Input: s, Err: ErrSyntax}
	}

	limit := int64(math.MaxInt32)
	if neg {
		limit++
	}

	var n int64
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, &NumberError{Input: s, Err: ErrSyntax}
		}
		n = n*10 + int64(c-'0')
		if n > limit {
			return 0, &NumberError{Input: s, Err: ErrRange}
		}
	}

	if neg {
		n = -n
	}
	return int32(n), nil
}

// ParseFloat parses digits with an optional leading minus sign and at most
// one decimal point. An empty line is zero.
func ParseFloat(s string) (float32, error) {
	if s == "" {
		return 0, nil
	}

	body := s
	if body[0] == '-' {
		body = body[1:]
	}

	digits, dots := 0, 0
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case c == '.':
			dots++
		case c >= '0' && c <= '9':
			digits++
		default:
			return 0, &NumberError{Input: s, Err: ErrSyntax}
		}
	}
	if digits == 0 || dots > 1 {
		return 0, &NumberError{Input: s, Err: ErrSyntax}
	}

	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &NumberError{Input: s, Err: ErrRange}
		}
		return 0, &NumberError{Input: s, Err: ErrSyntax}
	}
	return float32(f), nil
}

// FormatFloat renders f rounded to two decimals.
func FormatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', 2, 32)
}

// FloatText renders f in %f form, cut to MaxFloatText bytes.
func FloatText(f float32) string {
	s := fmt.Sprintf("%f", f)
	if len(s) > MaxFloatText {
		s = s[:MaxFloatText]
	}
	return s
}

// CompareFloat returns 1 if a > b, -1 if a < b and 0 otherwise.
func CompareFloat(a, b float32) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}
