package cli

import (
	"os"

	"github.com/chainatlas/chainatlas/pkg/errors"
)

// tokenEnvVars are checked in order for the GitHub bearer credential.
var tokenEnvVars = []string{"CHAINATLAS_GITHUB_TOKEN", "GITHUB_TOKEN"}

// githubToken resolves the bearer credential from the process environment.
// Both the descriptor source and the star-count endpoint require it.
func githubToken() (string, error) {
	for _, key := range tokenEnvVars {
		if v := os.Getenv(key); v != "" {
			return v, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput,
		"no GitHub token found: set CHAINATLAS_GITHUB_TOKEN or GITHUB_TOKEN")
}
