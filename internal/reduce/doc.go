// Package reduce shrinks a stream of records to one representative per
// equivalence class.
//
// A Reducer drives a classify.Classifier over the stream. The first record
// seen for a Class becomes its representative; later records with the same
// Class only increment the occurrence count. Every record is accounted for:
// the sum of all counts always equals the number of records added.
//
// The Reducer moves through two states, accumulating and finished. Finish is
// the only transition; a finished Reducer rejects further records.
//
// ReduceParallel partitions the stream into contiguous index batches, reduces
// each batch on its own worker and combines the partial results with Merge.
// Merge keeps the representative with the lowest original stream index, so the
// parallel result is identical to the serial one.
package reduce
