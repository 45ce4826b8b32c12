// Package jsonrec classifies schemaless JSON records and reads them from
// JSON Lines streams.
package jsonrec

import (
	"strconv"

	"github.com/tidwall/gjson"

	"corpusreduce/internal/classify"
)

// Record is one JSON document read from a stream.
type Record struct {
	// Line is the 1-based line number in the source stream.
	Line int
	Raw  []byte
}

// Options selects the classification variants applied to every record.
type Options struct {
	Whitespace classify.WhitespaceMode
	// Cardinality adds the empty/single/many dimension to arrays.
	Cardinality bool
}

var (
	labelObject = classify.Label("object")
	labelArray  = classify.Label("array")
)

// Classifier maps JSON values onto classes:
//
//   - null is Absent, booleans are False/True
//   - numbers use the int64 boundaries when they parse as int64, then the
//     uint64 boundaries, then the float64 boundaries
//   - strings use the Text boundaries
//   - arrays fold their element classes as a collection
//   - objects fold (key, value class) pairs in document order
//
// Arrays and objects are tagged, so [] and {} never share a class.
type Classifier struct {
	text    classify.Func[string]
	i64     classify.Func[int64]
	u64     classify.Func[uint64]
	f64     classify.Func[float64]
	boolean classify.Func[bool]
	array   classify.Func[[]gjson.Result]
}

// New returns a Classifier for opts.
func New(opts Options) *Classifier {
	c := &Classifier{
		text:    classify.Text(opts.Whitespace),
		i64:     classify.Signed[int64](),
		u64:     classify.Unsigned[uint64](),
		f64:     classify.Float[float64](),
		boolean: classify.Bool(),
	}
	elem := classify.Func[gjson.Result](c.Value)
	if opts.Cardinality {
		c.array = classify.WithCardinality[gjson.Result](elem)
	} else {
		c.array = classify.Collection[gjson.Result](elem)
	}
	return c
}

// Classify classifies the raw document of rec.
func (c *Classifier) Classify(rec Record) classify.Class {
	return c.Value(gjson.ParseBytes(rec.Raw))
}

// Value classifies a parsed JSON value.
func (c *Classifier) Value(v gjson.Result) classify.Class {
	switch v.Type {
	case gjson.Null:
		return classify.Absent
	case gjson.False:
		return c.boolean(false)
	case gjson.True:
		return c.boolean(true)
	case gjson.String:
		return c.text(v.Str)
	case gjson.Number:
		return c.number(v)
	}

	switch {
	case v.IsArray():
		return classify.Fold(labelArray, c.array(v.Array()))
	case v.IsObject():
		h := classify.NewHasher()
		h.Write(labelObject)
		v.ForEach(func(key, val gjson.Result) bool {
			h.Write(classify.Label(key.Str))
			h.Write(c.Value(val))
			return true
		})
		return h.Sum()
	default:
		// Missing values (an empty document) classify like null.
		return classify.Absent
	}
}

func (c *Classifier) number(v gjson.Result) classify.Class {
	if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
		return c.i64(n)
	}
	if n, err := strconv.ParseUint(v.Raw, 10, 64); err == nil {
		return c.u64(n)
	}
	return c.f64(v.Num)
}
