// Package langstats computes the language distribution of a GitHub
// organization: per-repository language byte counts folded into one
// aggregate, then converted to percentage shares.
package langstats

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/chainatlas/chainatlas/pkg/integrations/github"
)

// RepoLister provides the repository and language listings. Implemented by
// github.ContentClient.
type RepoLister interface {
	OrgRepos(ctx context.Context, org string) ([]github.Repo, error)
	RepoLanguages(ctx context.Context, owner, repo string) (map[string]int64, error)
}

// Accumulator is the running total of bytes per language. Merging is an
// explicit fold: each per-repository map is combined into a fresh copy, so
// no state is shared across iterations.
type Accumulator map[string]int64

// Merge folds one repository's language byte counts into the accumulator,
// returning the combined result. The receiver is not mutated.
func Merge(acc Accumulator, repoLangs map[string]int64) Accumulator {
	merged := make(Accumulator, len(acc)+len(repoLangs))
	for lang, n := range acc {
		merged[lang] = n
	}
	for lang, n := range repoLangs {
		merged[lang] += n
	}
	return merged
}

// Share is one language's portion of an organization's code.
type Share struct {
	Language string
	Bytes    int64
	Percent  float64
}

// Distribution converts an accumulator into percentage shares, largest
// first. An empty accumulator yields no shares.
func Distribution(acc Accumulator) []Share {
	var total int64
	for _, n := range acc {
		total += n
	}
	if total == 0 {
		return nil
	}

	shares := make([]Share, 0, len(acc))
	for lang, n := range acc {
		shares = append(shares, Share{
			Language: lang,
			Bytes:    n,
			Percent:  float64(n) / float64(total) * 100,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Bytes != shares[j].Bytes {
			return shares[i].Bytes > shares[j].Bytes
		}
		return shares[i].Language < shares[j].Language
	})
	return shares
}

// Collect fetches every repository of org and folds their language byte
// counts into one accumulator. A repository whose language fetch fails is
// logged and skipped; it must not abort the whole collection.
func Collect(ctx context.Context, lister RepoLister, org string, logger *log.Logger) (Accumulator, error) {
	if logger == nil {
		logger = log.Default()
	}

	repos, err := lister.OrgRepos(ctx, org)
	if err != nil {
		return nil, err
	}

	acc := Accumulator{}
	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		langs, err := lister.RepoLanguages(ctx, org, repo.Name)
		if err != nil {
			logger.Warn("Skipping repository languages", "repo", repo.FullName, "err", err)
			continue
		}
		acc = Merge(acc, langs)
	}
	return acc, nil
}
