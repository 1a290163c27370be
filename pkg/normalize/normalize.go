// Package normalize flattens harvested ecosystem records into the relational
// rows persisted by the store: one project row per descriptor plus zero or
// more edge rows for sub-ecosystems, organizations, and repositories.
//
// Identity is assigned here, not derived from descriptor content alone,
// because ecosystem titles are not guaranteed unique. Two schemes exist:
// stable (content-derived, the default) and random (a fresh UUID per run).
package normalize

import (
	"github.com/google/uuid"

	"github.com/chainatlas/chainatlas/pkg/errors"
	"github.com/chainatlas/chainatlas/pkg/harvest"
)

// IDScheme selects how project identifiers are assigned.
type IDScheme int

const (
	// StableIDs derives the project id from folder, file, and title, so
	// re-harvesting an unchanged descriptor yields the same id.
	StableIDs IDScheme = iota
	// RandomIDs assigns a fresh random UUID per run. Re-runs produce
	// different ids; kept for compatibility with the original behavior.
	RandomIDs
)

// Namespace for stable project ids. Changing it changes every derived id,
// so it is fixed for the lifetime of the corpus.
var projectIDNamespace = uuid.MustParse("9f2c1dd4-78a5-4a63-9f0e-3d6b2c54e8a1")

// ProjectRow is one row of the projects table.
type ProjectRow struct {
	ProjectID   string
	ProjectName string
	File        string
	Folder      string
}

// SubEcosystemRow links a project to a referenced child ecosystem name.
// The name is not guaranteed to resolve to a harvested project; the relation
// may contain dangling references and cycles.
type SubEcosystemRow struct {
	ProjectID    string
	ProjectName  string
	SubEcosystem string
}

// OrganizationRow links a project to a GitHub organization URL.
type OrganizationRow struct {
	ProjectID   string
	ProjectName string
	OrgURL      string
}

// RepoRow links a project to a repository URL.
type RepoRow struct {
	ProjectID   string
	ProjectName string
	RepoURL     string
}

// Dataset holds all rows produced by one normalization pass.
type Dataset struct {
	Projects      []ProjectRow
	SubEcosystems []SubEcosystemRow
	Organizations []OrganizationRow
	Repos         []RepoRow
}

// Normalize flattens the harvested records into relational rows. A record
// with empty lists contributes exactly one project row and zero edge rows.
// A duplicate project id indicates a bug (or duplicated harvest input) and
// is returned as an error rather than silently persisted.
func Normalize(records []harvest.TaggedRecord, scheme IDScheme) (*Dataset, error) {
	ds := &Dataset{}
	seen := make(map[string]harvest.TaggedRecord, len(records))

	for _, tr := range records {
		id := assignID(tr, scheme)
		if prev, dup := seen[id]; dup {
			return nil, errors.New(errors.ErrCodeInternal,
				"duplicate project id %s for %s/%s (already assigned to %s/%s)",
				id, tr.Folder, tr.File, prev.Folder, prev.File)
		}
		seen[id] = tr

		name := tr.Record.Title
		ds.Projects = append(ds.Projects, ProjectRow{
			ProjectID:   id,
			ProjectName: name,
			File:        tr.File,
			Folder:      tr.Folder,
		})

		for _, sub := range tr.Record.SubEcosystems {
			ds.SubEcosystems = append(ds.SubEcosystems, SubEcosystemRow{
				ProjectID:    id,
				ProjectName:  name,
				SubEcosystem: sub,
			})
		}
		for _, org := range tr.Record.GithubOrganizations {
			ds.Organizations = append(ds.Organizations, OrganizationRow{
				ProjectID:   id,
				ProjectName: name,
				OrgURL:      org,
			})
		}
		for _, url := range tr.Record.RepoURLs() {
			ds.Repos = append(ds.Repos, RepoRow{
				ProjectID:   id,
				ProjectName: name,
				RepoURL:     url,
			})
		}
	}

	return ds, nil
}

func assignID(tr harvest.TaggedRecord, scheme IDScheme) string {
	if scheme == RandomIDs {
		return uuid.New().String()
	}
	key := tr.Folder + "/" + tr.File + "|" + tr.Record.Title
	return uuid.NewSHA1(projectIDNamespace, []byte(key)).String()
}
