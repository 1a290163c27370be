package harvest

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/chainatlas/chainatlas/pkg/errors"
)

// fakeSource serves a canned descriptor tree. Keys of files are
// "folder/file"; a missing key yields a NOT_FOUND error.
type fakeSource struct {
	folders    []string
	files      map[string][]string // folder -> file names
	contents   map[string]string   // "folder/file" -> raw content
	failFolder string              // folder whose listing fails
}

func (f *fakeSource) ListFolders(ctx context.Context, url string) ([]string, error) {
	return f.folders, nil
}

func (f *fakeSource) ListFiles(ctx context.Context, url, suffix string) ([]string, error) {
	folder := url[strings.LastIndex(url, "/")+1:]
	if folder == f.failFolder {
		return nil, apperrors.New(apperrors.ErrCodeNetwork, "listing failed for %s", folder)
	}
	return f.files[folder], nil
}

func (f *fakeSource) FetchRawFile(ctx context.Context, url string) (string, error) {
	parts := strings.Split(url, "/")
	key := strings.Join(parts[len(parts)-2:], "/")
	content, ok := f.contents[key]
	if !ok {
		return "", apperrors.New(apperrors.ErrCodeNotFound, "no such file %s", key)
	}
	return content, nil
}

func TestRunIsolatesPerFileFailures(t *testing.T) {
	src := &fakeSource{
		folders: []string{"b"},
		files:   map[string][]string{"b": {"bitcoin.toml", "broken.toml"}},
		contents: map[string]string{
			"b/bitcoin.toml": "title = \"Bitcoin\"\n",
			"b/broken.toml":  "title = \"Trunc", // truncated TOML
		},
	}

	h := New(src, Config{RootURL: "https://api.example/contents", RawURL: "https://raw.example"}, nil)
	result, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(result.Records))
	}
	rec := result.Records[0]
	if rec.Record.Title != "Bitcoin" || rec.Folder != "b" || rec.File != "bitcoin.toml" {
		t.Errorf("record = %+v", rec)
	}

	if len(result.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(result.Failures))
	}
	fail := result.Failures[0]
	if fail.File != "broken.toml" || !apperrors.Is(fail.Err, apperrors.ErrCodeParse) {
		t.Errorf("failure = %+v", fail)
	}
}

func TestRunContinuesPastFailedFolder(t *testing.T) {
	src := &fakeSource{
		folders:    []string{"a", "b"},
		failFolder: "a",
		files:      map[string][]string{"b": {"eth.toml"}},
		contents:   map[string]string{"b/eth.toml": "title = \"Ethereum\"\n"},
	}

	h := New(src, Config{RootURL: "https://api.example/contents", RawURL: "https://raw.example"}, nil)
	result, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Records) != 1 || result.Records[0].Record.Title != "Ethereum" {
		t.Errorf("records = %+v", result.Records)
	}
	if len(result.Failures) != 1 || result.Failures[0].Folder != "a" || result.Failures[0].File != "" {
		t.Errorf("failures = %+v", result.Failures)
	}
}

func TestRunMissingFileRecorded(t *testing.T) {
	src := &fakeSource{
		folders:  []string{"b"},
		files:    map[string][]string{"b": {"gone.toml"}},
		contents: map[string]string{},
	}

	h := New(src, Config{RootURL: "https://api.example/contents", RawURL: "https://raw.example"}, nil)
	result, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Records) != 0 || len(result.Failures) != 1 {
		t.Fatalf("records=%d failures=%d, want 0/1", len(result.Records), len(result.Failures))
	}
	if !apperrors.Is(result.Failures[0].Err, apperrors.ErrCodeNotFound) {
		t.Errorf("failure code = %v", apperrors.GetCode(result.Failures[0].Err))
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{folders: []string{"a"}}
	h := New(src, Config{RootURL: "u", RawURL: "r"}, nil)
	if _, err := h.Run(ctx); err == nil {
		t.Fatal("expected cancellation error")
	}
}
