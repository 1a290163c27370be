// Package ecosystem defines the descriptor model for one crypto ecosystem
// and the parser that decodes a raw descriptor file into it.
//
// Descriptors are TOML files of the shape used by the upstream taxonomy:
//
//	title = "Bitcoin"
//	sub_ecosystems = ["Lightning"]
//	github_organizations = ["https://github.com/bitcoin"]
//
//	[[repo]]
//	url = "https://github.com/bitcoin/bitcoin"
//
// All keys except title are optional and default to empty lists. The repo
// field is tolerated in two shapes: a list of {url = ...} tables (the
// canonical form) or a bare list of URL strings.
package ecosystem

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/chainatlas/chainatlas/pkg/errors"
)

// RepoRef is one repository reference inside a descriptor.
type RepoRef struct {
	URL string `toml:"url"`
}

// RepoList decodes the descriptor's repo field. It accepts both a list of
// single-key tables and a bare list of strings.
type RepoList []RepoRef

// UnmarshalTOML implements toml.Unmarshaler. The decoder hands the
// canonical [[repo]] array-of-tables form over as []map[string]any and the
// bare-array form as []any; both must decode.
func (r *RepoList) UnmarshalTOML(v any) error {
	switch items := v.(type) {
	case []map[string]any:
		refs := make(RepoList, 0, len(items))
		for _, t := range items {
			url, _ := t["url"].(string)
			refs = append(refs, RepoRef{URL: url})
		}
		*r = refs
		return nil
	case []any:
		refs := make(RepoList, 0, len(items))
		for i, item := range items {
			switch t := item.(type) {
			case string:
				refs = append(refs, RepoRef{URL: t})
			case map[string]any:
				url, _ := t["url"].(string)
				refs = append(refs, RepoRef{URL: url})
			default:
				return fmt.Errorf("repo[%d]: expected string or table, got %T", i, item)
			}
		}
		*r = refs
		return nil
	default:
		return fmt.Errorf("repo: expected a list, got %T", v)
	}
}

// Record is the in-memory form of one parsed descriptor.
type Record struct {
	Title               string   `toml:"title"`
	SubEcosystems       []string `toml:"sub_ecosystems"`
	GithubOrganizations []string `toml:"github_organizations"`
	Repo                RepoList `toml:"repo"`
}

// RepoURLs returns the declared repository URLs, skipping empty entries.
func (r *Record) RepoURLs() []string {
	urls := make([]string, 0, len(r.Repo))
	for _, ref := range r.Repo {
		if ref.URL != "" {
			urls = append(urls, ref.URL)
		}
	}
	return urls
}

// Parse decodes one raw descriptor into a Record. Missing optional keys
// yield empty slices, never nil-pointer surprises for the caller. Malformed
// TOML returns a PARSE_ERROR without panicking.
func Parse(data []byte) (*Record, error) {
	var rec Record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode descriptor")
	}

	if rec.SubEcosystems == nil {
		rec.SubEcosystems = []string{}
	}
	if rec.GithubOrganizations == nil {
		rec.GithubOrganizations = []string{}
	}
	if rec.Repo == nil {
		rec.Repo = RepoList{}
	}
	return &rec, nil
}
