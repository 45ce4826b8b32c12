package classify

import "slices"

// Optional wraps inner so that it accepts a value that may be missing.
// A nil pointer classifies as Absent; otherwise the inner class is returned
// unchanged.
func Optional[T any](inner Classifier[T]) Func[*T] {
	return func(p *T) Class {
		if p == nil {
			return Absent
		}
		return inner.Classify(*p)
	}
}

// Field is one declared field of a composite record type.
type Field[R any] struct {
	Name     string
	classify func(R) Class
}

// FieldOf declares a field read by get and classified by c.
func FieldOf[R, F any](name string, get func(R) F, c Classifier[F]) Field[R] {
	return Field[R]{
		Name:     name,
		classify: func(r R) Class { return c.Classify(get(r)) },
	}
}

// FieldClass is the per-field breakdown returned by Composite.Explain.
type FieldClass struct {
	Name  string
	Class Class
}

// Composite classifies a record by folding its field classes in declared
// order. Two records are equivalent only if every field yields the same class
// at the same position.
type Composite[R any] struct {
	fields []Field[R]
}

// Record builds a Composite from an ordered field list.
func Record[R any](fields ...Field[R]) *Composite[R] {
	cp := make([]Field[R], len(fields))
	copy(cp, fields)
	return &Composite[R]{fields: cp}
}

// Classify folds the field classes of r.
func (c *Composite[R]) Classify(r R) Class {
	h := NewHasher()
	for _, f := range c.fields {
		h.Write(f.classify(r))
	}
	return h.Sum()
}

// Fields returns the declared field names in fold order.
func (c *Composite[R]) Fields() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.Name
	}
	return names
}

// Explain returns the class of every field of r, in fold order.
func (c *Composite[R]) Explain(r R) []FieldClass {
	out := make([]FieldClass, len(c.fields))
	for i, f := range c.fields {
		out[i] = FieldClass{Name: f.Name, Class: f.classify(r)}
	}
	return out
}

// Collection classifies a slice by the set of its element classes. Element
// order and duplicates never change the result. The element count is never
// encoded: an empty and a one-element slice differ only because their
// element-class sets differ ({} versus {class(x)}), and [x] and [x, x] are
// equivalent. Callers that need the count should use WithCardinality or a
// separate field.
func Collection[T any](inner Classifier[T]) Func[[]T] {
	return func(xs []T) Class {
		classes := make([]Class, len(xs))
		for i, x := range xs {
			classes[i] = inner.Classify(x)
		}
		return foldSet(classes)
	}
}

// Map classifies a map by the set of its entry classes, where an entry class
// is Fold(key class, value class).
func Map[K comparable, V any](key Classifier[K], value Classifier[V]) Func[map[K]V] {
	return func(m map[K]V) Class {
		classes := make([]Class, 0, len(m))
		for k, v := range m {
			classes = append(classes, Fold(key.Classify(k), value.Classify(v)))
		}
		return foldSet(classes)
	}
}

// foldSet sorts and de-duplicates classes in place and folds the result.
func foldSet(classes []Class) Class {
	slices.Sort(classes)
	return Fold(slices.Compact(classes)...)
}

// Cardinality classifies only the element count of a slice.
func Cardinality[T any]() Func[[]T] {
	return func(xs []T) Class {
		switch len(xs) {
		case 0:
			return CardEmpty
		case 1:
			return CardSingle
		default:
			return CardMany
		}
	}
}

// WithCardinality extends Collection(inner) with the empty/single/many
// dimension.
func WithCardinality[T any](inner Classifier[T]) Func[[]T] {
	set := Collection(inner)
	card := Cardinality[T]()
	return func(xs []T) Class {
		return Fold(set(xs), card(xs))
	}
}
