// Package pipeline runs one membership job: reconstruct the lists, emit the
// co-membership closure for authority jobs, then expand references.
package pipeline

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/duynguyendang/listmembers/internal/config"
	"github.com/duynguyendang/listmembers/pkg/chain"
	"github.com/duynguyendang/listmembers/pkg/expand"
	"github.com/duynguyendang/listmembers/pkg/recordio"
)

// Sink receives records as they are produced.
type Sink interface {
	Emit(expand.Record) error
}

// IndexSource supplies the reverse index for a pair file.
type IndexSource interface {
	GetIndexWith(path string, strict bool) (*chain.Index, error)
}

// Stats summarizes one job.
type Stats struct {
	Lists      int
	Tokens     int
	CoMembers  int
	References int
	Records    int
}

// Run executes job against the indexes from src, pushing records into sink.
// Any error aborts the job; records already emitted stay emitted.
func Run(ctx context.Context, src IndexSource, job config.Job, sink Sink) (Stats, error) {
	var stats Stats
	log := Logger(ctx).With("job", job.Name, "kind", string(job.Kind))
	start := time.Now()

	idx, err := src.GetIndexWith(job.Pairs, job.Strict)
	if err != nil {
		return stats, err
	}
	stats.Lists = idx.NumLists()
	stats.Tokens = idx.Len()

	if job.Kind == config.KindAuthority {
		for rec := range expand.CoMembership(idx, job.AuthorityRelation, job.Collection) {
			if err := sink.Emit(rec); err != nil {
				return stats, fmt.Errorf("emit: %w", err)
			}
			stats.CoMembers++
			stats.Records++
		}
		log.Debug("co-membership emitted", "records", stats.CoMembers)
	}

	if job.References != "" {
		e := expand.New(idx, job.Relation, job.Collection)
		refs := countRefs(recordio.References(job.References), &stats.References)
		for rec, err := range e.Expand(refs) {
			if err != nil {
				return stats, err
			}
			if err := sink.Emit(rec); err != nil {
				return stats, fmt.Errorf("emit: %w", err)
			}
			stats.Records++
		}
	}

	log.Info("job complete",
		"lists", stats.Lists,
		"tokens", stats.Tokens,
		"references", stats.References,
		"records", stats.Records,
		"elapsed", time.Since(start))
	return stats, nil
}

// countRefs counts the values seq yields without error.
func countRefs[T any](seq iter.Seq2[T, error], n *int) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range seq {
			if err == nil {
				*n++
			}
			if !yield(v, err) {
				return
			}
		}
	}
}
