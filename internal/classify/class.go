package classify

import "fmt"

// Class is the Classification Value of a single input.
//
// Leaf classifiers return one of the named constants below. Combined classes
// produced by Fold are never below reservedLimit, so a leaf class and a
// combined class cannot be equal.
type Class uint64

// reservedLimit bounds the range kept for named leaf classes.
const reservedLimit Class = 64

const (
	// Absent marks a missing optional value.
	Absent Class = iota

	Min
	Negative
	Zero
	Positive
	Max

	Empty
	Whitespace
	NonEmpty

	False
	True

	NaN
	NegInf
	PosInf

	CardEmpty
	CardSingle
	CardMany
)

var classNames = map[Class]string{
	Absent:     "Absent",
	Min:        "Min",
	Negative:   "Negative",
	Zero:       "Zero",
	Positive:   "Positive",
	Max:        "Max",
	Empty:      "Empty",
	Whitespace: "Whitespace",
	NonEmpty:   "NonEmpty",
	False:      "False",
	True:       "True",
	NaN:        "NaN",
	NegInf:     "NegInf",
	PosInf:     "PosInf",
	CardEmpty:  "CardEmpty",
	CardSingle: "CardSingle",
	CardMany:   "CardMany",
}

// IsLeaf reports whether c is a named leaf class rather than a combined hash.
func (c Class) IsLeaf() bool { return c < reservedLimit }

// Hex returns the fixed-width hexadecimal form used in fixtures and logs.
func (c Class) Hex() string { return fmt.Sprintf("%016x", uint64(c)) }

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	if c.IsLeaf() {
		return fmt.Sprintf("Leaf(%d)", uint64(c))
	}
	return c.Hex()
}

// Classifier maps a value of type T onto its Class.
//
// Implementations must be total, pure and deterministic.
type Classifier[T any] interface {
	Classify(v T) Class
}

// Func adapts an ordinary function to the Classifier interface.
type Func[T any] func(v T) Class

// Classify calls f(v).
func (f Func[T]) Classify(v T) Class { return f(v) }
