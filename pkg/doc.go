// Package pkg provides the core libraries for the ChainAtlas knowledge-base
// pipeline.
//
// # Overview
//
// ChainAtlas harvests the crypto-ecosystems taxonomy from GitHub, normalizes
// it into relational tables, and enriches it with repository star counts. The
// pkg directory is organized into three main areas:
//
//  1. Domain logic: [ecosystem], [harvest], [normalize], [stars], [langstats]
//  2. Persistence: [store]
//  3. Shared plumbing: [errors], [httputil], [integrations/github]
//
// # Architecture
//
// The typical data flow through ChainAtlas:
//
//	GitHub contents API (TOML descriptors)
//	         ↓
//	    [harvest] package (fetch + parse descriptors)
//	         ↓
//	    [normalize] package (rows with stable project IDs)
//	         ↓
//	    [store] package (SQLite tables + join views)
//	         ↓
//	    [stars] package (batched GraphQL star counts)
//
// # Main Packages
//
// [ecosystem] - TOML descriptor model. A Record holds the ecosystem title,
// sub-ecosystem references, GitHub organizations, and repository entries in
// both the plain-string and table forms the descriptor format allows.
//
// [harvest] - Walks the remote descriptor tree folder by folder, fetching and
// parsing every file. Individual failures are recorded and skipped; only a
// failure to list the root aborts the run.
//
// [normalize] - Flattens harvested records into relational rows (projects,
// sub-ecosystem edges, organizations, repositories) with content-derived
// project IDs.
//
// [stars] - Batched star-count collection over the GraphQL API: partitions
// repository URLs into aliased batches, demultiplexes the aggregated
// response, and paces itself from the rate-limit headers. Each batch is
// persisted before the next is dispatched.
//
// [langstats] - Aggregates per-repository language byte counts across an
// organization into a percentage distribution.
//
// [store] - SQLite persistence. Table loads are full replacements inside a
// single transaction; star batches append incrementally; derived views join
// repositories with their star counts.
//
// [errors] - Structured errors with stable codes, used for classification at
// package boundaries (rate limits, protocol mismatches, storage failures).
//
// [httputil] - Retry with exponential backoff for transient HTTP failures.
//
// [integrations/github] - REST and GraphQL clients for the GitHub API.
//
// [ecosystem]: https://pkg.go.dev/github.com/chainatlas/chainatlas/pkg/ecosystem
// [harvest]: https://pkg.go.dev/github.com/chainatlas/chainatlas/pkg/harvest
// [normalize]: https://pkg.go.dev/github.com/chainatlas/chainatlas/pkg/normalize
// [stars]: https://pkg.go.dev/github.com/chainatlas/chainatlas/pkg/stars
// [langstats]: https://pkg.go.dev/github.com/chainatlas/chainatlas/pkg/langstats
// [store]: https://pkg.go.dev/github.com/chainatlas/chainatlas/pkg/store
// [errors]: https://pkg.go.dev/github.com/chainatlas/chainatlas/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/chainatlas/chainatlas/pkg/httputil
// [integrations/github]: https://pkg.go.dev/github.com/chainatlas/chainatlas/pkg/integrations/github
package pkg
