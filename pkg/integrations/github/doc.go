// Package github provides the GitHub API clients used by the chainatlas
// pipelines.
//
// The [ContentClient] covers three surfaces:
//
//   - Repository contents: listing the descriptor folder tree and fetching
//     raw descriptor files (the taxonomy harvest side).
//   - REST metadata: organization repository listings and per-repository
//     language byte counts (the language-stats command).
//   - GraphQL: the aggregated star-count query used by the batch fetcher,
//     including rate-limit accounting from response headers.
//
// All requests authenticate with a bearer token. Transport failures are
// returned as structured errors from pkg/errors with the HTTP status mapped
// to an error code (404 -> NOT_FOUND, 401/403 -> ACCESS_DENIED, exhausted
// rate budget -> RATE_LIMITED, everything else -> NETWORK_ERROR). Transient
// statuses (5xx, 429) are additionally wrapped in httputil.RetryableError so
// callers that retry can tell them apart.
package github
