package stars

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/chainatlas/chainatlas/pkg/errors"
	"github.com/chainatlas/chainatlas/pkg/integrations/github"
)

// Snapshot is the latest-known star count for one resolved repository.
type Snapshot struct {
	NameWithOwner  string
	StargazerCount int
}

// FetchError records one repository that did not resolve in this run.
// Kind is the persisted error type: the API-reported type for resolution
// failures, or one of the pipeline's own codes (MALFORMED_IDENTIFIER,
// PROTOCOL_MISMATCH).
type FetchError struct {
	Repo    string
	Kind    string
	Message string
}

// QueryRunner executes one aggregated star query. Implemented by
// github.ContentClient.
type QueryRunner interface {
	StarQuery(ctx context.Context, query string) (*github.StarResponse, github.RateInfo, error)
}

// Sink durably persists one batch's results. Implemented by store.Store.
type Sink interface {
	AppendStarBatch(ctx context.Context, snaps []Snapshot, errs []FetchError) error
}

// Summary reports the outcome of one fetch run.
type Summary struct {
	Batches   int
	Snapshots int
	Errors    map[string]int // kind -> count
}

// Fetcher resolves star counts for a set of repository URLs in aggregated
// batches, persisting each batch before the next is dispatched.
type Fetcher struct {
	runner    QueryRunner
	sink      Sink
	batchSize int
	limiter   *Limiter
	logger    *log.Logger
}

// NewFetcher creates a Fetcher. A non-positive batchSize falls back to
// DefaultBatchSize; a nil limiter gets the default pacing; a nil logger
// falls back to log.Default().
func NewFetcher(runner QueryRunner, sink Sink, batchSize int, limiter *Limiter, logger *log.Logger) *Fetcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if limiter == nil {
		limiter = NewLimiter(0)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{
		runner:    runner,
		sink:      sink,
		batchSize: batchSize,
		limiter:   limiter,
		logger:    logger,
	}
}

// Run processes every batch in order. Each batch is persisted through the
// sink before the next one is dispatched, so a later fatal failure never
// loses completed work. A transport failure on any batch aborts the run;
// per-repository resolution failures are recorded as error rows and are not
// fatal. An empty input is a clean no-op. Cancellation is honored between
// batches, never mid-batch.
func (f *Fetcher) Run(ctx context.Context, urls []string) (*Summary, error) {
	summary := &Summary{Errors: make(map[string]int)}
	batches := Partition(urls, f.batchSize)
	if len(batches) == 0 {
		f.logger.Info("No repositories to fetch")
		return summary, nil
	}

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := f.limiter.Wait(ctx); err != nil {
			return summary, err
		}

		f.logger.Debug("Dispatching batch", "batch", i+1, "of", len(batches), "repos", len(batch))

		snaps, fetchErrs, rate, dispatched, err := f.processBatch(ctx, batch)
		if err != nil {
			return summary, fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
		}

		// Every input repository accounts for exactly one output row.
		if len(snaps)+len(fetchErrs) != len(batch) {
			f.logger.Error("Batch accounting mismatch",
				"batch", i+1, "inputs", len(batch), "snapshots", len(snaps), "errors", len(fetchErrs))
		}

		if err := f.sink.AppendStarBatch(ctx, snaps, fetchErrs); err != nil {
			return summary, errors.Wrap(errors.ErrCodeStorage, err, "persist batch %d/%d", i+1, len(batches))
		}

		summary.Batches++
		summary.Snapshots += len(snaps)
		for _, fe := range fetchErrs {
			summary.Errors[fe.Kind]++
		}

		// A batch of nothing but malformed URLs issues no query; its zero
		// counters must not be mistaken for an exhausted budget.
		if dispatched {
			f.limiter.Observe(rate)
		}
	}

	f.logger.Info("Star fetch complete", "batches", summary.Batches, "snapshots", summary.Snapshots)
	return summary, nil
}

// processBatch resolves one batch: malformed URLs are emitted directly as
// error rows, the rest go out in a single aggregated query whose response
// is demultiplexed by alias. The dispatched flag reports whether a query
// actually went out, so the caller knows when the rate counters are live.
func (f *Fetcher) processBatch(ctx context.Context, batch []string) ([]Snapshot, []FetchError, github.RateInfo, bool, error) {
	var fetchErrs []FetchError
	var valid []RepoID
	var validURLs []string

	for _, url := range batch {
		id, ok := ParseRepoURL(url)
		if !ok {
			fetchErrs = append(fetchErrs, FetchError{
				Repo:    url,
				Kind:    string(errors.ErrCodeMalformedIdentifier),
				Message: fmt.Sprintf("not a repository URL: %s", url),
			})
			continue
		}
		valid = append(valid, id)
		validURLs = append(validURLs, url)
	}

	if len(valid) == 0 {
		return nil, fetchErrs, github.RateInfo{}, false, nil
	}

	resp, rate, err := f.runner.StarQuery(ctx, BuildQuery(valid))
	if err != nil {
		return nil, nil, rate, true, err
	}

	snaps, demuxErrs := f.demux(valid, validURLs, resp)
	return snaps, append(fetchErrs, demuxErrs...), rate, true, nil
}

// demux splits the aggregated response into per-repository outcomes. An
// absent value with no matching error entry violates the API contract and
// is surfaced loudly as a PROTOCOL_MISMATCH row, never silently dropped.
func (f *Fetcher) demux(repos []RepoID, urls []string, resp *github.StarResponse) ([]Snapshot, []FetchError) {
	var snaps []Snapshot
	var fetchErrs []FetchError

	for i, repo := range repos {
		alias := fmt.Sprintf("repo%d", i)

		if val := resp.Data[alias]; val != nil {
			snaps = append(snaps, Snapshot{
				NameWithOwner:  val.NameWithOwner,
				StargazerCount: val.StargazerCount,
			})
			continue
		}

		if qe, ok := findError(resp.Errors, alias); ok {
			fetchErrs = append(fetchErrs, FetchError{
				Repo:    urls[i],
				Kind:    qe.Type,
				Message: qe.Message,
			})
			continue
		}

		f.logger.Error("Response contract violated: absent value with no matching error entry",
			"alias", alias, "repo", repo.String())
		fetchErrs = append(fetchErrs, FetchError{
			Repo:    urls[i],
			Kind:    string(errors.ErrCodeProtocolMismatch),
			Message: fmt.Sprintf("no value and no error entry for %s (%s)", alias, repo),
		})
	}

	return snaps, fetchErrs
}

func findError(errs []github.QueryError, alias string) (github.QueryError, bool) {
	for _, qe := range errs {
		if len(qe.Path) == 1 && qe.Path[0] == alias {
			return qe, true
		}
	}
	return github.QueryError{}, false
}
