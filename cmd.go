package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/duynguyendang/listmembers/internal/config"
	"github.com/duynguyendang/listmembers/internal/manager"
	"github.com/duynguyendang/listmembers/pkg/common/errors"
	"github.com/duynguyendang/listmembers/pkg/pipeline"
	"github.com/duynguyendang/listmembers/pkg/recordio"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	strict   bool
	logLevel string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "listmembers",
		Short: "Expand references through linked lists into membership records",
		Long: `listmembers reconstructs linked lists from "x y" successor pairs and, for
every "referrer referent" reference, emits one membership record per member of
the referent's list:

  <relation>\t<referrer>\t<collection>\t<member>`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
				With("run_id", uuid.NewString())
			slog.SetDefault(logger)
			cmd.SetContext(pipeline.WithLogger(cmd.Context(), logger))
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%v: %w", err, errors.ErrInvalidInput)
	})

	root.PersistentFlags().BoolVar(&opts.strict, "strict", false, "reject duplicate predecessors and shared successors")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", envOrDefault(config.EnvLogLevel, "info"), "log level (debug, info, warn, error)")

	root.AddCommand(
		newExpandCmd(opts, stdout),
		newAuthorityCmd(opts, stdout),
		newRunCmd(opts, stdout),
	)
	return root
}

func newExpandCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <pair-file> <reference-file> <relation> <collection>",
		Short: "Expand references against lists built from a pair file",
		Args:  exactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			job := config.Job{
				Name:       "expand",
				Kind:       config.KindExpand,
				Pairs:      args[0],
				References: args[1],
				Relation:   args[2],
				Collection: args[3],
				Strict:     opts.strict,
			}
			if err := job.Validate(); err != nil {
				return err
			}
			return runJobs(cmd, []config.Job{job}, stdout)
		},
	}
}

func newAuthorityCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	job := config.AuthorityDefaults()

	cmd := &cobra.Command{
		Use:   "authority",
		Short: "Emit list co-membership, then expand page references (newspaper layout)",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			job.Strict = opts.strict
			if err := job.Validate(); err != nil {
				return err
			}
			return runJobs(cmd, []config.Job{job}, stdout)
		},
	}

	f := cmd.Flags()
	f.StringVar(&job.Pairs, "pairs", job.Pairs, "successor pair file")
	f.StringVar(&job.References, "references", job.References, "reference file (empty to skip expansion)")
	f.StringVar(&job.AuthorityRelation, "authority-relation", job.AuthorityRelation, "relation label for co-membership records")
	f.StringVar(&job.Relation, "visible-relation", job.Relation, "relation label for expanded references")
	f.StringVar(&job.Collection, "collection", job.Collection, "collection label")
	return cmd
}

func newRunCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	var names []string

	cmd := &cobra.Command{
		Use:   "run <manifest.yaml>",
		Short: "Run the jobs of a YAML manifest in order",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := config.Load(args[0])
			if err != nil {
				return err
			}

			jobs := m.Jobs
			if len(names) > 0 {
				jobs = make([]config.Job, 0, len(names))
				for _, n := range names {
					j, err := m.Find(n)
					if err != nil {
						return err
					}
					jobs = append(jobs, j)
				}
			}
			if opts.strict {
				for i := range jobs {
					jobs[i].Strict = true
				}
			}
			return runJobs(cmd, jobs, stdout)
		},
	}
	cmd.Flags().StringSliceVar(&names, "job", nil, "run only the named jobs (repeatable)")
	return cmd
}

// runJobs runs jobs sequentially into one buffered writer on stdout.
func runJobs(cmd *cobra.Command, jobs []config.Job, stdout io.Writer) (err error) {
	ctx := cmd.Context()
	mgr := manager.NewIndexManager(manager.DefaultMaxIndexes, false)
	defer mgr.Purge()

	w := recordio.NewWriter(stdout)
	defer func() {
		if ferr := w.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("flush output: %w", ferr)
		}
	}()

	for _, job := range jobs {
		if _, err := pipeline.Run(ctx, mgr, job, w); err != nil {
			return fmt.Errorf("job %s: %w", job.Name, err)
		}
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%s: accepts %d arg(s), received %d: %w", cmd.CommandPath(), n, len(args), errors.ErrInvalidInput)
		}
		return nil
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, errors.ErrInvalidInput)
	}
	return level, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
