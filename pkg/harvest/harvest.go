// Package harvest drives the descriptor harvest: it walks every folder of
// the remote taxonomy tree, fetches each descriptor file, and parses it into
// an ecosystem record. Per-file failures are collected and reported, never
// fatal: one malformed descriptor must not blank out the corpus.
package harvest

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/chainatlas/chainatlas/pkg/ecosystem"
	"github.com/chainatlas/chainatlas/pkg/httputil"
)

// DefaultSuffix is the descriptor file suffix harvested from each folder.
const DefaultSuffix = ".toml"

// Source lists and fetches remote descriptor content. It is implemented by
// github.ContentClient; tests substitute a fake.
type Source interface {
	ListFolders(ctx context.Context, url string) ([]string, error)
	ListFiles(ctx context.Context, url, suffix string) ([]string, error)
	FetchRawFile(ctx context.Context, url string) (string, error)
}

// Config holds the harvest tunables.
type Config struct {
	RootURL string // content-listing API root of the descriptor tree
	RawURL  string // raw-file host root of the descriptor tree
	Suffix  string // descriptor suffix; defaults to DefaultSuffix
}

// TaggedRecord is a parsed descriptor together with its origin in the tree.
type TaggedRecord struct {
	Record *ecosystem.Record
	Folder string
	File   string
}

// Failure records one descriptor that could not be fetched or parsed.
// File is empty when the folder listing itself failed.
type Failure struct {
	Folder string
	File   string
	Err    error
}

// Result is the outcome of one harvest run.
type Result struct {
	Records  []TaggedRecord
	Failures []Failure
}

// Harvester walks the descriptor tree through a Source.
type Harvester struct {
	source Source
	cfg    Config
	logger *log.Logger
}

// New creates a Harvester. A nil logger falls back to log.Default().
func New(source Source, cfg Config, logger *log.Logger) *Harvester {
	if cfg.Suffix == "" {
		cfg.Suffix = DefaultSuffix
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Harvester{source: source, cfg: cfg, logger: logger}
}

// Run harvests every descriptor under the configured root. Only a failure
// to list the root itself (or context cancellation) aborts the run; folder
// and file level failures are recorded in the result and processing
// continues with the remaining siblings. Cancellation is honored between
// files, never mid-fetch.
func (h *Harvester) Run(ctx context.Context) (*Result, error) {
	var folders []string
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		folders, err = h.source.ListFolders(ctx, h.cfg.RootURL)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list descriptor root: %w", err)
	}

	h.logger.Debug("Listed descriptor root", "folders", len(folders))

	result := &Result{}
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h.harvestFolder(ctx, folder, result)
	}

	h.logger.Info("Harvest complete", "records", len(result.Records), "failures", len(result.Failures))
	return result, nil
}

func (h *Harvester) harvestFolder(ctx context.Context, folder string, result *Result) {
	folderURL := h.cfg.RootURL + "/" + folder

	var files []string
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		files, err = h.source.ListFiles(ctx, folderURL, h.cfg.Suffix)
		return err
	})
	if err != nil {
		h.logger.Warn("Skipping folder", "folder", folder, "err", err)
		result.Failures = append(result.Failures, Failure{Folder: folder, Err: err})
		return
	}

	for _, file := range files {
		if ctx.Err() != nil {
			return
		}

		fileURL := h.cfg.RawURL + "/" + folder + "/" + file

		var raw string
		err := httputil.RetryWithBackoff(ctx, func() error {
			var err error
			raw, err = h.source.FetchRawFile(ctx, fileURL)
			return err
		})
		if err != nil {
			h.logger.Warn("Skipping descriptor", "folder", folder, "file", file, "err", err)
			result.Failures = append(result.Failures, Failure{Folder: folder, File: file, Err: err})
			continue
		}

		rec, err := ecosystem.Parse([]byte(raw))
		if err != nil {
			h.logger.Warn("Skipping descriptor", "folder", folder, "file", file, "err", err)
			result.Failures = append(result.Failures, Failure{Folder: folder, File: file, Err: err})
			continue
		}

		result.Records = append(result.Records, TaggedRecord{Record: rec, Folder: folder, File: file})
	}
}
