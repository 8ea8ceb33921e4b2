// Package config describes membership jobs and loads them from YAML manifests
// and the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/duynguyendang/listmembers/pkg/common/errors"
	"gopkg.in/yaml.v3"
)

// Kind selects how a job expands its lists.
type Kind string

const (
	// KindExpand expands references only.
	KindExpand Kind = "expand"
	// KindAuthority also emits the co-membership closure of every list.
	KindAuthority Kind = "authority"
)

// Newspaper defaults, matching the repository's export layout.
const (
	DefaultPairs             = "succeeding"
	DefaultReferences        = "editionpagenewspapers"
	DefaultAuthorityRelation = "SummaAuthority"
	DefaultVisibleRelation   = "SummaVisible"
	DefaultCollection        = "doms:Newspaper_Collection"
)

// Environment overrides for the authority defaults.
const (
	EnvPairs             = "LISTMEMBERS_PAIRS"
	EnvReferences        = "LISTMEMBERS_REFERENCES"
	EnvCollection        = "LISTMEMBERS_COLLECTION"
	EnvAuthorityRelation = "LISTMEMBERS_AUTHORITY_RELATION"
	EnvVisibleRelation   = "LISTMEMBERS_VISIBLE_RELATION"
	EnvLogLevel          = "LISTMEMBERS_LOG_LEVEL"
)

// Job is one configured run of the pipeline.
type Job struct {
	Name       string `yaml:"name"`
	Kind       Kind   `yaml:"kind"`
	Pairs      string `yaml:"pairs"`
	References string `yaml:"references"`
	// Relation labels expanded references.
	Relation string `yaml:"relation"`
	// AuthorityRelation labels co-membership records (authority jobs only).
	AuthorityRelation string `yaml:"authority_relation"`
	Collection        string `yaml:"collection"`
	Strict            bool   `yaml:"strict"`
}

// Manifest is a list of jobs run in order.
type Manifest struct {
	Jobs []Job `yaml:"jobs"`
}

// AuthorityDefaults returns the newspaper authority job, with environment
// overrides applied.
func AuthorityDefaults() Job {
	return Job{
		Name:              "authority",
		Kind:              KindAuthority,
		Pairs:             envOr(EnvPairs, DefaultPairs),
		References:        envOr(EnvReferences, DefaultReferences),
		Relation:          envOr(EnvVisibleRelation, DefaultVisibleRelation),
		AuthorityRelation: envOr(EnvAuthorityRelation, DefaultAuthorityRelation),
		Collection:        envOr(EnvCollection, DefaultCollection),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// applyDefaults fills empty authority fields.
func (j *Job) applyDefaults() {
	if j.Kind == "" {
		j.Kind = KindExpand
	}
	if j.Kind != KindAuthority {
		return
	}
	d := AuthorityDefaults()
	if j.Pairs == "" {
		j.Pairs = d.Pairs
	}
	if j.Relation == "" {
		j.Relation = d.Relation
	}
	if j.AuthorityRelation == "" {
		j.AuthorityRelation = d.AuthorityRelation
	}
	if j.Collection == "" {
		j.Collection = d.Collection
	}
}

// Validate checks that the job has everything its kind needs.
func (j Job) Validate() error {
	var missing []string
	if j.Name == "" {
		missing = append(missing, "name")
	}
	if j.Pairs == "" {
		missing = append(missing, "pairs")
	}
	if j.Relation == "" {
		missing = append(missing, "relation")
	}
	if j.Collection == "" {
		missing = append(missing, "collection")
	}
	switch j.Kind {
	case KindExpand:
		if j.References == "" {
			missing = append(missing, "references")
		}
	case KindAuthority:
		if j.AuthorityRelation == "" {
			missing = append(missing, "authority_relation")
		}
	default:
		return fmt.Errorf("job %q: unknown kind %q: %w", j.Name, j.Kind, errors.ErrInvalidInput)
	}
	if len(missing) > 0 {
		return fmt.Errorf("job %q: missing %s: %w", j.Name, strings.Join(missing, ", "), errors.ErrInvalidInput)
	}
	return nil
}

// Load reads and validates a YAML manifest.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest %s: %w", path, errors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %v: %w", err, errors.ErrInvalidInput)
	}
	if len(m.Jobs) == 0 {
		return nil, fmt.Errorf("manifest has no jobs: %w", errors.ErrInvalidInput)
	}

	seen := make(map[string]bool, len(m.Jobs))
	for i := range m.Jobs {
		m.Jobs[i].applyDefaults()
		if err := m.Jobs[i].Validate(); err != nil {
			return nil, err
		}
		if seen[m.Jobs[i].Name] {
			return nil, fmt.Errorf("duplicate job %q: %w", m.Jobs[i].Name, errors.ErrInvalidInput)
		}
		seen[m.Jobs[i].Name] = true
	}
	return &m, nil
}

// Find returns the job called name. An unknown name reports the closest job
// name as a suggestion.
func (m *Manifest) Find(name string) (Job, error) {
	best, bestDist := "", -1
	for _, j := range m.Jobs {
		if j.Name == name {
			return j, nil
		}
		d := levenshtein.Distance(strings.ToLower(name), strings.ToLower(j.Name), nil)
		if bestDist < 0 || d < bestDist {
			best, bestDist = j.Name, d
		}
	}
	if best != "" && bestDist <= maxSuggestDistance(name) {
		return Job{}, fmt.Errorf("job %q (did you mean %q?): %w", name, best, errors.ErrNotFound)
	}
	return Job{}, fmt.Errorf("job %q: %w", name, errors.ErrNotFound)
}

func maxSuggestDistance(name string) int {
	if d := len(name) / 2; d > 2 {
		return d
	}
	return 2
}
