package langstats

import (
	"context"
	"testing"

	apperrors "github.com/chainatlas/chainatlas/pkg/errors"
	"github.com/chainatlas/chainatlas/pkg/integrations/github"
)

type fakeLister struct {
	repos []github.Repo
	langs map[string]map[string]int64 // repo name -> languages
}

func (f *fakeLister) OrgRepos(ctx context.Context, org string) ([]github.Repo, error) {
	return f.repos, nil
}

func (f *fakeLister) RepoLanguages(ctx context.Context, owner, repo string) (map[string]int64, error) {
	langs, ok := f.langs[repo]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "no languages for %s", repo)
	}
	return langs, nil
}

func TestMergeIsAFoldWithoutSharedState(t *testing.T) {
	acc := Accumulator{"Go": 100}
	merged := Merge(acc, map[string]int64{"Go": 50, "C": 25})

	if merged["Go"] != 150 || merged["C"] != 25 {
		t.Errorf("merged = %v", merged)
	}
	if acc["Go"] != 100 || len(acc) != 1 {
		t.Errorf("input accumulator mutated: %v", acc)
	}
}

func TestDistribution(t *testing.T) {
	shares := Distribution(Accumulator{"Go": 750, "C": 250})

	if len(shares) != 2 {
		t.Fatalf("got %d shares, want 2", len(shares))
	}
	if shares[0].Language != "Go" || shares[0].Percent != 75.0 {
		t.Errorf("shares[0] = %+v", shares[0])
	}
	if shares[1].Language != "C" || shares[1].Percent != 25.0 {
		t.Errorf("shares[1] = %+v", shares[1])
	}
}

func TestDistributionEmpty(t *testing.T) {
	if shares := Distribution(Accumulator{}); shares != nil {
		t.Errorf("shares = %v, want nil", shares)
	}
}

func TestCollectFoldsAcrossRepos(t *testing.T) {
	lister := &fakeLister{
		repos: []github.Repo{
			{Name: "a", FullName: "org/a"},
			{Name: "b", FullName: "org/b"},
		},
		langs: map[string]map[string]int64{
			"a": {"Go": 100, "C": 10},
			"b": {"Go": 50, "Rust": 40},
		},
	}

	acc, err := Collect(context.Background(), lister, "org", nil)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if acc["Go"] != 150 || acc["C"] != 10 || acc["Rust"] != 40 {
		t.Errorf("acc = %v", acc)
	}
}

func TestCollectSkipsFailingRepo(t *testing.T) {
	lister := &fakeLister{
		repos: []github.Repo{
			{Name: "a", FullName: "org/a"},
			{Name: "gone", FullName: "org/gone"},
		},
		langs: map[string]map[string]int64{
			"a": {"Go": 100},
		},
	}

	acc, err := Collect(context.Background(), lister, "org", nil)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if acc["Go"] != 100 || len(acc) != 1 {
		t.Errorf("acc = %v", acc)
	}
}
