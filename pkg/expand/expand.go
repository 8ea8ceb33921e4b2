// Package expand turns references into membership records by resolving each
// referent against a chain.Index.
package expand

import (
	"iter"

	"github.com/duynguyendang/listmembers/pkg/chain"
)

// Expander emits membership records for references under fixed labels.
type Expander struct {
	Index      *chain.Index
	Relation   string
	Collection string
}

// New creates an Expander.
func New(idx *chain.Index, relation, collection string) *Expander {
	return &Expander{
		Index:      idx,
		Relation:   relation,
		Collection: collection,
	}
}

// Reference returns the records for a single reference: one per member of the
// referent's list in list order, or one for the referent alone when it is not
// chained.
func (e *Expander) Reference(ref Reference) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, m := range e.Index.Resolve(ref.Referent) {
			if !yield(NewRecord(e.Relation, ref.Referrer, e.Collection, m)) {
				return
			}
		}
	}
}

// Expand lazily expands every reference in source order. A source error is
// yielded once and ends the sequence. Records are never deduplicated.
func (e *Expander) Expand(refs iter.Seq2[Reference, error]) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for ref, err := range refs {
			if err != nil {
				yield(Record{}, err)
				return
			}
			for rec := range e.Reference(ref) {
				if !yield(rec, nil) {
					return
				}
			}
		}
	}
}

// CoMembership yields (relation, m1, collection, m2) for every ordered pair of
// members of every list in idx, including m1 == m2.
func CoMembership(idx *chain.Index, relation, collection string) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for a, b := range idx.CoMembers() {
			if !yield(NewRecord(relation, a, collection, b)) {
				return
			}
		}
	}
}

// Collect drains a record sequence, stopping at the first error.
func Collect(seq iter.Seq2[Record, error]) ([]Record, error) {
	var out []Record
	for rec, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// References adapts an in-memory slice to a reference source.
func References(refs ...Reference) iter.Seq2[Reference, error] {
	return func(yield func(Reference, error) bool) {
		for _, r := range refs {
			if !yield(r, nil) {
				return
			}
		}
	}
}
