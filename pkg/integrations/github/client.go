package github

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chainatlas/chainatlas/pkg/errors"
	"github.com/chainatlas/chainatlas/pkg/httputil"
)

// ContentClient provides access to GitHub repository content and metadata.
// Use this for listing descriptor folders, fetching raw descriptor files,
// and enumerating organization repositories.
type ContentClient struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

// NewContentClient creates a new content client with the given access token.
func NewContentClient(token string) *ContentClient {
	return &ContentClient{
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.github.com",
	}
}

// ListFolders lists the directory entries under a contents API URL.
// Entries whose type is not "dir" are skipped.
func (c *ContentClient) ListFolders(ctx context.Context, url string) ([]string, error) {
	items, err := c.listContents(ctx, url)
	if err != nil {
		return nil, err
	}

	var folders []string
	for _, item := range items {
		if item.Type == "dir" {
			folders = append(folders, item.Name)
		}
	}
	return folders, nil
}

// ListFiles lists the file entries under a contents API URL whose name ends
// with suffix. Pass an empty suffix to list every file.
func (c *ContentClient) ListFiles(ctx context.Context, url, suffix string) ([]string, error) {
	items, err := c.listContents(ctx, url)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, item := range items {
		if item.Type == "file" && strings.HasSuffix(item.Name, suffix) {
			files = append(files, item.Name)
		}
	}
	return files, nil
}

func (c *ContentClient) listContents(ctx context.Context, url string) ([]ContentItem, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &httputil.RetryableError{Err: transportError(err, "list %s", url)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp, url)
	}

	var items []ContentItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode listing %s", url)
	}
	return items, nil
}

// FetchRawFile retrieves the raw content of a file from a raw-host URL.
func (c *ContentClient) FetchRawFile(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &httputil.RetryableError{Err: transportError(err, "fetch %s", url)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp, url)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url)
	}
	return string(content), nil
}

// OrgRepos retrieves all repositories of an organization, following the
// paginated listing until an empty page is returned.
func (c *ContentClient) OrgRepos(ctx context.Context, org string) ([]Repo, error) {
	var all []Repo
	page := 1

	for {
		url := fmt.Sprintf("%s/orgs/%s/repos?per_page=100&page=%d", c.baseURL, org, page)
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, transportError(err, "list repos for %s", org)
		}

		if resp.StatusCode != http.StatusOK {
			err := c.statusError(resp, url)
			resp.Body.Close()
			return nil, err
		}

		var repos []Repo
		err = json.NewDecoder(resp.Body).Decode(&repos)
		resp.Body.Close()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "decode repo listing for %s", org)
		}

		if len(repos) == 0 {
			break
		}
		all = append(all, repos...)
		page++

		// Safety limit to avoid infinite loops
		if page > 50 {
			break
		}
	}

	return all, nil
}

// RepoLanguages retrieves the language byte counts for a repository.
func (c *ContentClient) RepoLanguages(ctx context.Context, owner, repo string) (map[string]int64, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/languages", c.baseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err, "fetch languages for %s/%s", owner, repo)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp, url)
	}

	var langs map[string]int64
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode languages for %s/%s", owner, repo)
	}
	return langs, nil
}

// setHeaders sets common headers for GitHub API requests.
func (c *ContentClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// transportError classifies a failed round trip: deadline expiry (context
// deadline or the client's own timeout) is reported as TIMEOUT, everything
// else as NETWORK_ERROR.
func transportError(cause error, format string, args ...any) *errors.Error {
	code := errors.ErrCodeNetwork
	if stderrors.Is(cause, context.DeadlineExceeded) {
		code = errors.ErrCodeTimeout
	}
	return errors.Wrap(code, cause, format, args...)
}

// statusError maps a non-2xx response to a structured error. The response
// body is read for the message; transient statuses are wrapped so callers
// using httputil.Retry attempt them again.
func (c *ContentClient) statusError(resp *http.Response, url string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))

	var err error
	switch {
	case resp.StatusCode == http.StatusNotFound:
		err = errors.New(errors.ErrCodeNotFound, "GitHub API error (%d) for %s: %s", resp.StatusCode, url, msg)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		if resp.Header.Get("x-ratelimit-remaining") == "0" {
			err = errors.New(errors.ErrCodeRateLimited, "GitHub rate limit exhausted for %s", url)
		} else {
			err = errors.New(errors.ErrCodeAccessDenied, "GitHub API error (%d) for %s: %s", resp.StatusCode, url, msg)
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		err = errors.New(errors.ErrCodeRateLimited, "GitHub API error (%d) for %s", resp.StatusCode, url)
	default:
		err = errors.New(errors.ErrCodeNetwork, "GitHub API error (%d) for %s: %s", resp.StatusCode, url, msg)
	}

	if httputil.IsRetryableStatus(resp.StatusCode) {
		return &httputil.RetryableError{Err: err}
	}
	return err
}
