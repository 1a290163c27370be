package stars

import (
	"strings"
	"testing"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		url       string
		wantOwner string
		wantName  string
		wantOK    bool
	}{
		{url: "https://github.com/bitcoin/bitcoin", wantOwner: "bitcoin", wantName: "bitcoin", wantOK: true},
		{url: "https://github.com/org/repo/", wantOwner: "org", wantName: "repo", wantOK: true},
		{url: "https://github.com/org/repo.git", wantOwner: "org", wantName: "repo", wantOK: true},
		{url: "https://github.com/orgonly", wantOK: false},
		{url: "https://github.com/org/repo/tree/main", wantOK: false},
		{url: "https://gitlab.com/org/repo", wantOK: false},
		{url: "not a url", wantOK: false},
		{url: "https://github.com//repo", wantOK: false},
	}

	for _, tt := range tests {
		id, ok := ParseRepoURL(tt.url)
		if ok != tt.wantOK {
			t.Errorf("ParseRepoURL(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			continue
		}
		if ok && (id.Owner != tt.wantOwner || id.Name != tt.wantName) {
			t.Errorf("ParseRepoURL(%q) = %v, want %s/%s", tt.url, id, tt.wantOwner, tt.wantName)
		}
	}
}

func TestPartition(t *testing.T) {
	urls := []string{"a", "b", "c", "d", "e"}

	batches := Partition(urls, 2)
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	if len(batches[0]) != 2 || len(batches[2]) != 1 {
		t.Errorf("batch sizes = %d,%d,%d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
	if batches[2][0] != "e" {
		t.Errorf("order not preserved: last batch = %v", batches[2])
	}
}

func TestPartitionEmptyInput(t *testing.T) {
	if batches := Partition(nil, 100); len(batches) != 0 {
		t.Errorf("got %d batches for empty input, want 0", len(batches))
	}
}

func TestPartitionDefaultSize(t *testing.T) {
	urls := make([]string, DefaultBatchSize+1)
	batches := Partition(urls, 0)
	if len(batches) != 2 {
		t.Errorf("got %d batches, want 2", len(batches))
	}
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery([]RepoID{
		{Owner: "bitcoin", Name: "bitcoin"},
		{Owner: "ethereum", Name: "go-ethereum"},
	})

	for _, want := range []string{
		`repo0: repository(owner: "bitcoin", name: "bitcoin")`,
		`repo1: repository(owner: "ethereum", name: "go-ethereum")`,
		"nameWithOwner stargazerCount",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing %q:\n%s", want, q)
		}
	}
}
