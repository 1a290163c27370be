// Package store materializes the pipeline's output into a SQLite database.
//
// The taxonomy tables (projects and the three edge relations) use
// full-replace semantics: one run swaps their entire contents in a single
// transaction, all tables together or none. The star tables are reset at
// the start of a stars run and then appended one batch per transaction, so
// every completed batch is durable before the next one is dispatched.
// Derived views are recomputed lazily at read time, never cached.
package store

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/chainatlas/chainatlas/pkg/normalize"
	"github.com/chainatlas/chainatlas/pkg/stars"
)

// Store wraps a single SQLite connection. The pipeline is the sole writer;
// a Store must not be shared across goroutines.
type Store struct {
	conn *sqlite.Conn
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, p := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, p, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	return &Store{conn: conn}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// interruptOn ties statement execution to ctx cancellation for the duration
// of one store operation. Callers defer the returned restore function.
func (s *Store) interruptOn(ctx context.Context) func() {
	old := s.conn.SetInterrupt(ctx.Done())
	return func() { s.conn.SetInterrupt(old) }
}

// ReplaceEcosystem atomically replaces the four taxonomy tables with the
// dataset's rows. A failure anywhere rolls the whole swap back, so readers
// never observe a partially replaced taxonomy.
func (s *Store) ReplaceEcosystem(ctx context.Context, ds *normalize.Dataset) (err error) {
	defer s.interruptOn(ctx)()

	endFn, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer endFn(&err)

	ddl := `
DROP TABLE IF EXISTS projects;
DROP TABLE IF EXISTS sub_ecosystems;
DROP TABLE IF EXISTS github_organizations;
DROP TABLE IF EXISTS github_repos;

CREATE TABLE projects (
    project_id TEXT PRIMARY KEY,
    project_name TEXT NOT NULL,
    file TEXT NOT NULL,
    folder TEXT NOT NULL
);

CREATE TABLE sub_ecosystems (
    project_id TEXT NOT NULL,
    project_name TEXT NOT NULL,
    sub_ecosystems TEXT NOT NULL
);

CREATE TABLE github_organizations (
    project_id TEXT NOT NULL,
    project_name TEXT NOT NULL,
    github_org_url TEXT NOT NULL
);

CREATE TABLE github_repos (
    project_id TEXT NOT NULL,
    project_name TEXT NOT NULL,
    repo_url TEXT NOT NULL
);
`
	if err = sqlitex.ExecuteScript(s.conn, ddl, nil); err != nil {
		return fmt.Errorf("create taxonomy tables: %w", err)
	}

	if err = s.insertProjects(ds.Projects); err != nil {
		return err
	}
	if err = s.insertSubEcosystems(ds.SubEcosystems); err != nil {
		return err
	}
	if err = s.insertOrganizations(ds.Organizations); err != nil {
		return err
	}
	return s.insertRepos(ds.Repos)
}

func (s *Store) insertProjects(rows []normalize.ProjectRow) error {
	stmt, err := s.conn.Prepare(`INSERT INTO projects (project_id, project_name, file, folder) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare project insert: %w", err)
	}
	defer stmt.Finalize()

	for _, r := range rows {
		stmt.BindText(1, r.ProjectID)
		stmt.BindText(2, r.ProjectName)
		stmt.BindText(3, r.File)
		stmt.BindText(4, r.Folder)
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert project %s: %w", r.ProjectID, err)
		}
		stmt.Reset()
	}
	return nil
}

func (s *Store) insertSubEcosystems(rows []normalize.SubEcosystemRow) error {
	stmt, err := s.conn.Prepare(`INSERT INTO sub_ecosystems (project_id, project_name, sub_ecosystems) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare sub-ecosystem insert: %w", err)
	}
	defer stmt.Finalize()

	for _, r := range rows {
		stmt.BindText(1, r.ProjectID)
		stmt.BindText(2, r.ProjectName)
		stmt.BindText(3, r.SubEcosystem)
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert sub-ecosystem %s: %w", r.SubEcosystem, err)
		}
		stmt.Reset()
	}
	return nil
}

func (s *Store) insertOrganizations(rows []normalize.OrganizationRow) error {
	stmt, err := s.conn.Prepare(`INSERT INTO github_organizations (project_id, project_name, github_org_url) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare organization insert: %w", err)
	}
	defer stmt.Finalize()

	for _, r := range rows {
		stmt.BindText(1, r.ProjectID)
		stmt.BindText(2, r.ProjectName)
		stmt.BindText(3, r.OrgURL)
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert organization %s: %w", r.OrgURL, err)
		}
		stmt.Reset()
	}
	return nil
}

func (s *Store) insertRepos(rows []normalize.RepoRow) error {
	stmt, err := s.conn.Prepare(`INSERT INTO github_repos (project_id, project_name, repo_url) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare repo insert: %w", err)
	}
	defer stmt.Finalize()

	for _, r := range rows {
		stmt.BindText(1, r.ProjectID)
		stmt.BindText(2, r.ProjectName)
		stmt.BindText(3, r.RepoURL)
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert repo %s: %w", r.RepoURL, err)
		}
		stmt.Reset()
	}
	return nil
}

// ResetStars drops and recreates the star tables. Called at the start of a
// stars run; the run then appends one batch at a time.
func (s *Store) ResetStars(ctx context.Context) (err error) {
	defer s.interruptOn(ctx)()

	endFn, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer endFn(&err)

	ddl := `
DROP TABLE IF EXISTS github_stars;
DROP TABLE IF EXISTS github_stars_errors;

CREATE TABLE github_stars (
    nameWithOwner TEXT NOT NULL,
    stargazerCount INTEGER NOT NULL
);

CREATE TABLE github_stars_errors (
    type TEXT NOT NULL,
    message TEXT NOT NULL
);
`
	if err = sqlitex.ExecuteScript(s.conn, ddl, nil); err != nil {
		return fmt.Errorf("create star tables: %w", err)
	}
	return nil
}

// AppendStarBatch durably persists one batch's snapshots and errors in a
// single transaction. This implements stars.Sink.
func (s *Store) AppendStarBatch(ctx context.Context, snaps []stars.Snapshot, errs []stars.FetchError) (err error) {
	defer s.interruptOn(ctx)()

	endFn, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer endFn(&err)

	stmt, err := s.conn.Prepare(`INSERT INTO github_stars (nameWithOwner, stargazerCount) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare star insert: %w", err)
	}
	for _, snap := range snaps {
		stmt.BindText(1, snap.NameWithOwner)
		stmt.BindInt64(2, int64(snap.StargazerCount))
		if _, err = stmt.Step(); err != nil {
			stmt.Finalize()
			return fmt.Errorf("insert star %s: %w", snap.NameWithOwner, err)
		}
		stmt.Reset()
	}
	if err = stmt.Finalize(); err != nil {
		return err
	}

	stmt, err = s.conn.Prepare(`INSERT INTO github_stars_errors (type, message) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare star error insert: %w", err)
	}
	for _, fe := range errs {
		stmt.BindText(1, fe.Kind)
		stmt.BindText(2, fe.Message)
		if _, err = stmt.Step(); err != nil {
			stmt.Finalize()
			return fmt.Errorf("insert star error for %s: %w", fe.Repo, err)
		}
		stmt.Reset()
	}
	return stmt.Finalize()
}

// DistinctRepoURLs returns the distinct hosted-platform repository URLs
// from the repo edge table, in deterministic order.
func (s *Store) DistinctRepoURLs(ctx context.Context) ([]string, error) {
	defer s.interruptOn(ctx)()

	var urls []string
	err := sqlitex.ExecuteTransient(s.conn,
		`SELECT DISTINCT repo_url FROM github_repos WHERE repo_url LIKE 'https://github.com/%' ORDER BY repo_url`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				urls = append(urls, stmt.ColumnText(0))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("select distinct repo urls: %w", err)
	}
	return urls, nil
}
