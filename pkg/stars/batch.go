// Package stars implements the batched star-count fetch: repository URLs
// are partitioned into fixed-size batches, each batch is resolved in a
// single aggregated GraphQL round trip, and the per-repository results are
// demultiplexed into snapshot and error rows. Requests are paced against
// the rate-limit counters reported by the API.
package stars

import (
	"fmt"
	"strings"
)

// DefaultBatchSize is the number of repositories resolved per round trip.
const DefaultBatchSize = 100

const repoURLPrefix = "https://github.com/"

// RepoID is a repository identifier split into its owner and name.
type RepoID struct {
	Owner string
	Name  string
}

func (r RepoID) String() string { return r.Owner + "/" + r.Name }

// ParseRepoURL extracts the owner and name from a hosted-platform URL.
// Only URLs of the exact form https://github.com/{owner}/{repo} qualify;
// anything else (tree paths, bare owner URLs, other hosts) is rejected.
func ParseRepoURL(url string) (RepoID, bool) {
	rest, ok := strings.CutPrefix(url, repoURLPrefix)
	if !ok {
		return RepoID{}, false
	}
	rest = strings.TrimSuffix(strings.TrimSuffix(rest, "/"), ".git")

	owner, name, found := strings.Cut(rest, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoID{}, false
	}
	return RepoID{Owner: owner, Name: name}, true
}

// Partition splits urls into batches of at most size elements, preserving
// order. A non-positive size falls back to DefaultBatchSize.
func Partition(urls []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches [][]string
	for start := 0; start < len(urls); start += size {
		end := min(start+size, len(urls))
		batches = append(batches, urls[start:end])
	}
	return batches
}

// BuildQuery synthesizes one aggregated GraphQL query resolving every
// repository in the batch. Each repository is tagged with a batch-local
// alias (repo0, repo1, ...) so the response can be demultiplexed.
func BuildQuery(repos []RepoID) string {
	var b strings.Builder
	b.WriteString("query {\n")
	for i, r := range repos {
		fmt.Fprintf(&b, "  repo%d: repository(owner: %q, name: %q) { nameWithOwner stargazerCount }\n", i, r.Owner, r.Name)
	}
	b.WriteString("}")
	return b.String()
}
