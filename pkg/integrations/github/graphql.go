package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/chainatlas/chainatlas/pkg/errors"
)

// RepoStars is the resolved value for one repository alias in an aggregated
// star query. A nil value in [StarResponse.Data] means the repository did
// not resolve; the matching entry in Errors explains why.
type RepoStars struct {
	NameWithOwner  string `json:"nameWithOwner"`
	StargazerCount int    `json:"stargazerCount"`
}

// QueryError is one entry of the GraphQL error list. Path identifies the
// alias the error belongs to.
type QueryError struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Path    []string `json:"path"`
}

// StarResponse is the decoded body of an aggregated star query.
type StarResponse struct {
	Data   map[string]*RepoStars `json:"data"`
	Errors []QueryError          `json:"errors"`
}

// RateInfo carries the rate-limit counters reported in response headers.
type RateInfo struct {
	Remaining int
	Used      int
}

// StarQuery executes an aggregated GraphQL query against the star-count
// endpoint and returns the decoded response together with the rate-limit
// counters from the response headers. A non-2xx status is fatal: the whole
// batch response is undecodable, so there is no partial interpretation.
func (c *ContentClient) StarQuery(ctx context.Context, query string) (*StarResponse, RateInfo, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, RateInfo{}, fmt.Errorf("encode query: %w", err)
	}

	url := c.baseURL + "/graphql"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, RateInfo{}, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, RateInfo{}, transportError(err, "star query")
	}
	defer resp.Body.Close()

	rate := rateInfoFrom(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, rate, c.statusError(resp, url)
	}

	var sr StarResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, rate, errors.Wrap(errors.ErrCodeParse, err, "decode star query response")
	}
	return &sr, rate, nil
}

func rateInfoFrom(resp *http.Response) RateInfo {
	remaining, _ := strconv.Atoi(resp.Header.Get("x-ratelimit-remaining"))
	used, _ := strconv.Atoi(resp.Header.Get("x-ratelimit-used"))
	return RateInfo{Remaining: remaining, Used: used}
}
