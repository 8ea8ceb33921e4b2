// Package chain reconstructs disjoint linked lists from predecessor/successor
// pairs and indexes every token by the list that contains it.
package chain

import (
	"fmt"
	"iter"

	"github.com/duynguyendang/listmembers/pkg/common/errors"
)

// Pair is one link of a chain: Successor directly follows Predecessor.
type Pair struct {
	Predecessor string
	Successor   string
}

// String returns the pair in input-file form.
func (p Pair) String() string {
	return p.Predecessor + " " + p.Successor
}

// List is the ordered sequence of tokens reachable from Head.
type List struct {
	Head    string
	Members []string
}

// Len returns the number of members.
func (l *List) Len() int {
	return len(l.Members)
}

// Contains reports whether token is a member of the list.
func (l *List) Contains(token string) bool {
	for _, m := range l.Members {
		if m == token {
			return true
		}
	}
	return false
}

type options struct {
	strict bool
}

// Option configures Build.
type Option func(*options)

// WithStrict rejects a predecessor that is given two different successors and
// a token reached from two different predecessors. Without it the last pair
// for a predecessor wins.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// links is the predecessor -> successor mapping with overwrite semantics.
type links struct {
	next   map[string]string
	prev   map[string]string // strict mode only
	order  []string          // predecessors in first-appearance order
	strict bool
}

func newLinks(strict bool) *links {
	l := &links{
		next:   make(map[string]string),
		strict: strict,
	}
	if strict {
		l.prev = make(map[string]string)
	}
	return l
}

func (l *links) add(p Pair) error {
	old, seen := l.next[p.Predecessor]
	if seen && l.strict && old != p.Successor {
		return fmt.Errorf("%q -> %q and %q: %w", p.Predecessor, old, p.Successor, errors.ErrDuplicatePredecessor)
	}
	if l.strict {
		if q, ok := l.prev[p.Successor]; ok && q != p.Predecessor {
			return fmt.Errorf("%q <- %q and %q: %w", p.Successor, q, p.Predecessor, errors.ErrSharedSuccessor)
		}
		l.prev[p.Successor] = p.Predecessor
	}
	if !seen {
		l.order = append(l.order, p.Predecessor)
	}
	l.next[p.Predecessor] = p.Successor
	return nil
}

// heads returns predecessors that are nobody's successor, in input order.
func (l *links) heads() []string {
	successors := make(map[string]struct{}, len(l.next))
	for _, s := range l.next {
		successors[s] = struct{}{}
	}
	var heads []string
	for _, p := range l.order {
		if _, ok := successors[p]; !ok {
			heads = append(heads, p)
		}
	}
	return heads
}

// follow walks successors from head until a token has none.
func (l *links) follow(head string) (*List, error) {
	list := &List{Head: head}
	visited := make(map[string]struct{})
	for tok, ok := head, true; ok; tok, ok = l.next[tok] {
		if _, dup := visited[tok]; dup {
			return nil, fmt.Errorf("list from %q re-enters %q: %w", head, tok, errors.ErrCycle)
		}
		visited[tok] = struct{}{}
		list.Members = append(list.Members, tok)
	}
	return list, nil
}

// Build reads every pair from the source, then materializes one List per head
// and indexes each member. Source errors are returned as is.
func Build(pairs iter.Seq2[Pair, error], opts ...Option) (*Index, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	l := newLinks(o.strict)
	for p, err := range pairs {
		if err != nil {
			return nil, err
		}
		if err := l.add(p); err != nil {
			return nil, err
		}
	}

	heads := l.heads()
	idx := &Index{
		heads:   heads,
		lists:   make([]*List, 0, len(heads)),
		byToken: make(map[string]*List, len(l.next)+len(heads)),
	}
	for _, h := range heads {
		list, err := l.follow(h)
		if err != nil {
			return nil, err
		}
		idx.lists = append(idx.lists, list)
		for _, m := range list.Members {
			idx.byToken[m] = list
		}
	}

	// Every predecessor not reached from a head sits on a headless cycle.
	for _, p := range l.order {
		if _, ok := idx.byToken[p]; !ok {
			return nil, fmt.Errorf("%q is not reachable from any head: %w", p, errors.ErrCycle)
		}
	}

	return idx, nil
}

// FromPairs builds an index from an in-memory slice of pairs.
func FromPairs(pairs []Pair, opts ...Option) (*Index, error) {
	return Build(func(yield func(Pair, error) bool) {
		for _, p := range pairs {
			if !yield(p, nil) {
				return
			}
		}
	}, opts...)
}
