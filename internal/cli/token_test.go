package cli

import (
	"testing"

	"github.com/chainatlas/chainatlas/pkg/errors"
)

func TestGithubTokenPrefersOwnVariable(t *testing.T) {
	t.Setenv("CHAINATLAS_GITHUB_TOKEN", "own-token")
	t.Setenv("GITHUB_TOKEN", "generic-token")

	token, err := githubToken()
	if err != nil {
		t.Fatalf("githubToken failed: %v", err)
	}
	if token != "own-token" {
		t.Errorf("token = %q, want own-token", token)
	}
}

func TestGithubTokenFallsBack(t *testing.T) {
	t.Setenv("CHAINATLAS_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "generic-token")

	token, err := githubToken()
	if err != nil {
		t.Fatalf("githubToken failed: %v", err)
	}
	if token != "generic-token" {
		t.Errorf("token = %q, want generic-token", token)
	}
}

func TestGithubTokenMissing(t *testing.T) {
	t.Setenv("CHAINATLAS_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")

	_, err := githubToken()
	if err == nil {
		t.Fatal("expected error when no token is set")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %v, want INVALID_INPUT", errors.GetCode(err))
	}
}
