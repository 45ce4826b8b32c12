package classify

import (
	"math"
	"unicode"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Unsigned returns the boundary classifier for an unsigned integer type:
// 0 is Zero, the type maximum is Max, everything else is Positive.
func Unsigned[T constraints.Unsigned]() Func[T] {
	hi := ^T(0)
	return func(v T) Class {
		switch v {
		case 0:
			return Zero
		case hi:
			return Max
		default:
			return Positive
		}
	}
}

// Signed returns the boundary classifier for a signed integer type.
// The type minimum and maximum always take Min and Max, even though they are
// also negative or positive.
func Signed[T constraints.Signed]() Func[T] {
	lo, hi := signedBounds[T]()
	return func(v T) Class {
		switch {
		case v == lo:
			return Min
		case v == hi:
			return Max
		case v == 0:
			return Zero
		case v < 0:
			return Negative
		default:
			return Positive
		}
	}
}

func signedBounds[T constraints.Signed]() (lo, hi T) {
	var zero T
	bits := unsafe.Sizeof(zero) * 8
	lo = T(1) << (bits - 1)
	hi = lo - 1
	return lo, hi
}

// Float returns the boundary classifier for floating point types.
// Negative zero classifies as Zero.
func Float[T constraints.Float]() Func[T] {
	return func(v T) Class {
		f := float64(v)
		switch {
		case math.IsNaN(f):
			return NaN
		case math.IsInf(f, -1):
			return NegInf
		case math.IsInf(f, 1):
			return PosInf
		case f == 0:
			return Zero
		case f < 0:
			return Negative
		default:
			return Positive
		}
	}
}

// Bool returns the classifier mapping false and true onto False and True.
func Bool() Func[bool] {
	return func(v bool) Class {
		if v {
			return True
		}
		return False
	}
}

// WhitespaceMode selects the whitespace predicate used by Text.
type WhitespaceMode string

const (
	// WhitespaceUnicode uses unicode.IsSpace (Unicode White_Space plus the
	// Latin-1 separators Go treats as space).
	WhitespaceUnicode WhitespaceMode = "unicode"
	// WhitespaceASCII only accepts ' ', '\t', '\n', '\v', '\f' and '\r'.
	WhitespaceASCII WhitespaceMode = "ascii"
)

// Valid reports whether m names a known mode.
func (m WhitespaceMode) Valid() bool {
	return m == WhitespaceUnicode || m == WhitespaceASCII
}

// Text returns the string classifier: "" is Empty, a string made only of
// whitespace is Whitespace, anything else is NonEmpty.
//
// An unknown mode falls back to WhitespaceUnicode.
func Text(mode WhitespaceMode) Func[string] {
	isSpace := unicode.IsSpace
	if mode == WhitespaceASCII {
		isSpace = isASCIISpace
	}
	return func(s string) Class {
		if s == "" {
			return Empty
		}
		for _, r := range s {
			if !isSpace(r) {
				return NonEmpty
			}
		}
		return Whitespace
	}
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}
