package ecosystem

import (
	"testing"

	"github.com/chainatlas/chainatlas/pkg/errors"
)

func TestParseFullDescriptor(t *testing.T) {
	data := []byte(`
title = "Bitcoin"
sub_ecosystems = ["Lightning", "RSK Smart Bitcoin"]
github_organizations = ["https://github.com/bitcoin"]

[[repo]]
url = "https://github.com/bitcoin/bitcoin"

[[repo]]
url = "https://github.com/bitcoin/bips"
`)

	rec, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if rec.Title != "Bitcoin" {
		t.Errorf("Title = %q, want Bitcoin", rec.Title)
	}
	if len(rec.SubEcosystems) != 2 || rec.SubEcosystems[0] != "Lightning" {
		t.Errorf("SubEcosystems = %v", rec.SubEcosystems)
	}
	if len(rec.GithubOrganizations) != 1 {
		t.Errorf("GithubOrganizations = %v", rec.GithubOrganizations)
	}
	urls := rec.RepoURLs()
	if len(urls) != 2 || urls[1] != "https://github.com/bitcoin/bips" {
		t.Errorf("RepoURLs = %v", urls)
	}
}

func TestParseMissingOptionalKeys(t *testing.T) {
	rec, err := Parse([]byte(`title = "Tiny"`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if rec.SubEcosystems == nil || len(rec.SubEcosystems) != 0 {
		t.Errorf("SubEcosystems = %v, want empty slice", rec.SubEcosystems)
	}
	if rec.GithubOrganizations == nil || len(rec.GithubOrganizations) != 0 {
		t.Errorf("GithubOrganizations = %v, want empty slice", rec.GithubOrganizations)
	}
	if rec.Repo == nil || len(rec.Repo) != 0 {
		t.Errorf("Repo = %v, want empty list", rec.Repo)
	}
}

func TestParseRepoAsBareStringList(t *testing.T) {
	data := []byte(`
title = "Mixed"
repo = ["https://github.com/org/a", "https://github.com/org/b"]
`)

	rec, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	urls := rec.RepoURLs()
	if len(urls) != 2 || urls[0] != "https://github.com/org/a" {
		t.Errorf("RepoURLs = %v", urls)
	}
}

func TestParseSkipsEmptyRepoURLs(t *testing.T) {
	data := []byte(`
title = "Sparse"

[[repo]]
url = "https://github.com/org/a"

[[repo]]
missing_url = true
`)

	rec, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if urls := rec.RepoURLs(); len(urls) != 1 {
		t.Errorf("RepoURLs = %v, want one entry", urls)
	}
}

func TestParseMalformedDescriptor(t *testing.T) {
	_, err := Parse([]byte(`title = "Truncated`))
	if err == nil {
		t.Fatal("expected error for malformed TOML")
	}
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("code = %v, want PARSE_ERROR", errors.GetCode(err))
	}
}
