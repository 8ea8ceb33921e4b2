package chain

import "iter"

// Index maps every chained token to the List that contains it. It is
// immutable once Build returns.
type Index struct {
	heads   []string
	lists   []*List
	byToken map[string]*List
}

// Lookup returns the list containing token.
func (idx *Index) Lookup(token string) (*List, bool) {
	l, ok := idx.byToken[token]
	return l, ok
}

// Resolve returns the members of the list containing token. A token that was
// never chained is a singleton list of itself.
func (idx *Index) Resolve(token string) []string {
	if l, ok := idx.byToken[token]; ok {
		return l.Members
	}
	return []string{token}
}

// Len returns the number of indexed tokens.
func (idx *Index) Len() int {
	return len(idx.byToken)
}

// Heads returns the list heads in discovery order.
func (idx *Index) Heads() []string {
	out := make([]string, len(idx.heads))
	copy(out, idx.heads)
	return out
}

// Lists yields the materialized lists in head order.
func (idx *Index) Lists() iter.Seq[*List] {
	return func(yield func(*List) bool) {
		for _, l := range idx.lists {
			if !yield(l) {
				return
			}
		}
	}
}

// NumLists returns the number of materialized lists.
func (idx *Index) NumLists() int {
	return len(idx.lists)
}

// Tokens yields each indexed token once, in list order.
func (idx *Index) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range idx.lists {
			for _, m := range l.Members {
				if idx.byToken[m] != l {
					continue
				}
				if !yield(m) {
					return
				}
			}
		}
	}
}

// CoMembers yields every ordered (member, member) combination of every list,
// identity pairs included: n*n pairs for a list of n members.
func (idx *Index) CoMembers() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, l := range idx.lists {
			for _, a := range l.Members {
				for _, b := range l.Members {
					if !yield(a, b) {
						return
					}
				}
			}
		}
	}
}
