package store

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// EnsureViews (re)creates the derived views over the base tables. Views are
// plain queries recomputed at read time; recreating them is cheap and keeps
// their definitions current after a full-table replace.
func (s *Store) EnsureViews(ctx context.Context) (err error) {
	defer s.interruptOn(ctx)()

	ddl := `
DROP VIEW IF EXISTS github_repos_stars_view;
DROP VIEW IF EXISTS project_stars_view;

CREATE VIEW github_repos_stars_view AS
SELECT
    gs.*,
    'https://github.com/' || gs.nameWithOwner AS repo_url,
    gr.project_id
FROM
    github_stars gs
JOIN
    github_repos gr ON 'https://github.com/' || gs.nameWithOwner = gr.repo_url;

CREATE VIEW project_stars_view AS
SELECT
    p.project_id,
    p.project_name,
    SUM(gs.stargazerCount) AS total_stars
FROM
    projects p
LEFT JOIN
    github_repos gr ON gr.project_id = p.project_id
LEFT JOIN
    github_stars gs ON 'https://github.com/' || gs.nameWithOwner = gr.repo_url
GROUP BY
    p.project_id, p.project_name;
`
	if err = sqlitex.ExecuteScript(s.conn, ddl, nil); err != nil {
		return fmt.Errorf("create views: %w", err)
	}
	return nil
}

// ProjectStars is one row of the project-level aggregate view. TotalStars
// is nil for projects with no resolved repositories; they are reported, not
// dropped.
type ProjectStars struct {
	ProjectID   string
	ProjectName string
	TotalStars  *int64
}

// ProjectStarTotals reads the project-level star aggregate, highest totals
// first, limited to at most limit rows (0 means no limit).
func (s *Store) ProjectStarTotals(ctx context.Context, limit int) ([]ProjectStars, error) {
	defer s.interruptOn(ctx)()

	query := `SELECT project_id, project_name, total_stars FROM project_stars_view ORDER BY total_stars DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var rows []ProjectStars
	err := sqlitex.ExecuteTransient(s.conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			row := ProjectStars{
				ProjectID:   stmt.ColumnText(0),
				ProjectName: stmt.ColumnText(1),
			}
			if stmt.ColumnType(2) != sqlite.TypeNull {
				total := stmt.ColumnInt64(2)
				row.TotalStars = &total
			}
			rows = append(rows, row)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("read project star totals: %w", err)
	}
	return rows, nil
}

// Count returns the number of rows in a base table. Used for run summaries
// and tests; name must be one of the pipeline's own tables.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	defer s.interruptOn(ctx)()

	switch table {
	case "projects", "sub_ecosystems", "github_organizations", "github_repos",
		"github_stars", "github_stars_errors":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}

	var n int64
	err := sqlitex.ExecuteTransient(s.conn, "SELECT COUNT(*) FROM "+table, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
