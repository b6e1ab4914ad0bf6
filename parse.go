package mandel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPair is returned when a "<left><sep><right>" string cannot be
// split or either side fails to parse.
var ErrMalformedPair = errors.New("malformed pair")

// ParsePair splits s at the first occurrence of sep and parses both sides
// with parse. Nothing but the two values may surround the separator.
func ParsePair[T any](s string, sep rune, parse func(string) (T, error)) (T, T, error) {
	var zero T

	left, right, found := strings.Cut(s, string(sep))
	if !found {
		return zero, zero, fmt.Errorf("%w: %q has no %q separator", ErrMalformedPair, s, sep)
	}

	l, lerr := parse(left)
	r, rerr := parse(right)
	if err := errors.Join(lerr, rerr); err != nil {
		return zero, zero, fmt.Errorf("%w: %q: %w", ErrMalformedPair, s, err)
	}
	return l, r, nil
}

// ParseComplex parses a "<re><sep><im>" string such as "-1.20,0.35".
func ParseComplex(s string, sep rune) (complex128, error) {
	re, im, err := ParsePair(s, sep, parseFloat)
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
