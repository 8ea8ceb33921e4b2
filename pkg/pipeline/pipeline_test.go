package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/duynguyendang/listmembers/internal/config"
	"github.com/duynguyendang/listmembers/internal/manager"
	"github.com/duynguyendang/listmembers/pkg/common/errors"
	"github.com/duynguyendang/listmembers/pkg/expand"
	"github.com/duynguyendang/listmembers/pkg/recordio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSink struct {
	recs  []expand.Record
	limit int
}

func (s *sliceSink) Emit(r expand.Record) error {
	if s.limit > 0 && len(s.recs) == s.limit {
		return fmt.Errorf("sink full")
	}
	s.recs = append(s.recs, r)
	return nil
}

func fixture(t *testing.T) (pairs, refs string) {
	t.Helper()
	dir := t.TempDir()
	pairs = filepath.Join(dir, "succeeding")
	refs = filepath.Join(dir, "editionpagenewspapers")
	require.NoError(t, os.WriteFile(pairs, []byte("np1 np2\nnp2 np3\n"), 0644))
	require.NoError(t, os.WriteFile(refs, []byte("page1 np2\npage2 np9\n"), 0644))
	return pairs, refs
}

func TestRun_Expand(t *testing.T) {
	pairs, refs := fixture(t)
	job := config.Job{
		Name: "volumes", Kind: config.KindExpand,
		Pairs: pairs, References: refs,
		Relation: "SummaVisible", Collection: "doms:Newspaper_Collection",
	}

	var out bytes.Buffer
	w := recordio.NewWriter(&out)
	stats, err := Run(context.Background(), manager.NewIndexManager(0, false), job, w)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	assert.Equal(t,
		"SummaVisible\tpage1\tdoms:Newspaper_Collection\tnp1\n"+
			"SummaVisible\tpage1\tdoms:Newspaper_Collection\tnp2\n"+
			"SummaVisible\tpage1\tdoms:Newspaper_Collection\tnp3\n"+
			"SummaVisible\tpage2\tdoms:Newspaper_Collection\tnp9\n",
		out.String())
	assert.Equal(t, Stats{Lists: 1, Tokens: 3, References: 2, Records: 4}, stats)
}

func TestRun_Authority(t *testing.T) {
	pairs, refs := fixture(t)
	job := config.Job{
		Name: "newspapers", Kind: config.KindAuthority,
		Pairs: pairs, References: refs,
		Relation: "SummaVisible", AuthorityRelation: "SummaAuthority",
		Collection: "doms:Newspaper_Collection",
	}

	sink := &sliceSink{}
	stats, err := Run(context.Background(), manager.NewIndexManager(0, false), job, sink)
	require.NoError(t, err)

	assert.Equal(t, 9, stats.CoMembers)
	assert.Equal(t, 13, stats.Records)
	require.Len(t, sink.recs, 13)

	for _, r := range sink.recs[:9] {
		assert.Equal(t, "SummaAuthority", r.Relation)
	}
	assert.Equal(t, expand.NewRecord("SummaAuthority", "np1", "doms:Newspaper_Collection", "np1"), sink.recs[0])
	assert.Equal(t, expand.NewRecord("SummaVisible", "page1", "doms:Newspaper_Collection", "np1"), sink.recs[9])
	assert.Equal(t, expand.NewRecord("SummaVisible", "page2", "doms:Newspaper_Collection", "np9"), sink.recs[12])
}

func TestRun_AuthorityWithoutReferences(t *testing.T) {
	pairs, _ := fixture(t)
	job := config.Job{
		Name: "closure", Kind: config.KindAuthority, Pairs: pairs,
		Relation: "SummaVisible", AuthorityRelation: "SummaAuthority",
		Collection: "doms:Newspaper_Collection",
	}

	sink := &sliceSink{}
	stats, err := Run(context.Background(), manager.NewIndexManager(0, false), job, sink)
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Records)
	assert.Equal(t, 0, stats.References)
}

func TestRun_MalformedReferences(t *testing.T) {
	pairs, _ := fixture(t)
	refs := filepath.Join(t.TempDir(), "refs")
	require.NoError(t, os.WriteFile(refs, []byte("page1 np1\npage2\n"), 0644))

	job := config.Job{
		Name: "bad", Kind: config.KindExpand, Pairs: pairs, References: refs,
		Relation: "r", Collection: "c",
	}
	sink := &sliceSink{}
	stats, err := Run(context.Background(), manager.NewIndexManager(0, false), job, sink)
	require.ErrorIs(t, err, errors.ErrMalformedLine)
	assert.Len(t, sink.recs, 3, "output before the bad line is not retracted")
	assert.Equal(t, 1, stats.References)
}

func TestRun_SinkError(t *testing.T) {
	pairs, refs := fixture(t)
	job := config.Job{
		Name: "full", Kind: config.KindExpand, Pairs: pairs, References: refs,
		Relation: "r", Collection: "c",
	}
	_, err := Run(context.Background(), manager.NewIndexManager(0, false), job, &sliceSink{limit: 2})
	assert.ErrorContains(t, err, "sink full")
}

func TestRun_SharedIndex(t *testing.T) {
	pairs, refs := fixture(t)
	mgr := manager.NewIndexManager(0, false)
	base := config.Job{Kind: config.KindExpand, Pairs: pairs, References: refs, Relation: "r", Collection: "c"}

	for _, name := range []string{"one", "two"} {
		job := base
		job.Name = name
		_, err := Run(context.Background(), mgr, job, &sliceSink{})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, mgr.Builds())
}

func TestLogger(t *testing.T) {
	assert.Same(t, slog.Default(), Logger(context.Background()))

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, l, Logger(WithLogger(context.Background(), l)))
}
