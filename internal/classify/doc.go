// Package classify maps values onto deterministic equivalence classes.
//
// A Class is the identifier a classifier produces for one value. Two values
// with the same Class are expected to drive a downstream routine through the
// same behavior; distinct values routinely collapse into one Class.
//
// # Leaf classifiers
//
// Unsigned, Signed, Float, Bool and Text map primitives onto small closed sets
// of boundary classes (Zero, Max, Empty, Whitespace, ...).
//
// # Combinators
//
//   - Optional adds the Absent class to an inner classifier.
//   - Record folds per-field classes in declared field order.
//   - Collection folds the sorted, de-duplicated element classes, so element
//     order and repetition never change the result.
//   - Map applies collection semantics to key/value pairs.
//   - Cardinality and WithCardinality add an explicit empty/single/many
//     dimension; collections never carry it implicitly.
//
// # Determinism
//
// All combined classes come from Fold, a 64-bit xxHash keyed with the fixed
// Seed. The result of classifying a value is identical across calls, runs and
// processes. Changing Seed changes every combined Class and invalidates any
// reduced corpus computed before the change.
package classify
