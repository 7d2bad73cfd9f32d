package redmine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tracking-dashboard/config"
)

const (
	pageSize         = 100
	projectListLimit = 1000
	requestTimeout   = 10 * time.Second
)

var (
	// ErrProjectNotFound means the named project does not exist in the
	// tracker's project list.
	ErrProjectNotFound = errors.New("project not found")
	// ErrUnavailable covers transport failures, timeouts and non-2xx
	// responses from the tracker.
	ErrUnavailable = errors.New("tracker unavailable")
)

// Client handles Redmine API operations for one tracker endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Redmine client
func NewClient(baseURL, apiKey string, logger *zap.Logger) Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// makeRequest performs an authenticated GET against the tracker
func (c Client) makeRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Redmine-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// ResolveProject looks up a project by its human-readable name. The
// tracker has no name lookup endpoint, so the full project list is
// fetched and matched exactly after trimming whitespace.
func (c Client) ResolveProject(ctx context.Context, name string) (ProjectRef, error) {
	reqURL := fmt.Sprintf("%s/projects.json?limit=%d", c.baseURL, projectListLimit)
	body, err := c.makeRequest(ctx, reqURL)
	if err != nil {
		return ProjectRef{}, fmt.Errorf("fetching project list: %w", err)
	}

	var response struct {
		Projects []ProjectRef `json:"projects"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return ProjectRef{}, fmt.Errorf("parsing project list: %w", err)
	}

	want := strings.TrimSpace(name)
	for _, p := range response.Projects {
		if strings.TrimSpace(p.Name) == want {
			return p, nil
		}
	}

	c.logger.Warn("project not found in tracker", zap.String("project", name))
	return ProjectRef{}, fmt.Errorf("%w: %q", ErrProjectNotFound, name)
}

// IssueFilter narrows a fetch. Zero values mean no constraint; the
// assignee filter is caller-supplied, never implied.
type IssueFilter struct {
	StatusIDs    []string // status ids, or empty for all ("*")
	CreatedFrom  string   // YYYY-MM-DD, inclusive
	CreatedTo    string   // YYYY-MM-DD, inclusive
	AssignedToID string   // e.g. "me" or a numeric user id
}

func (f IssueFilter) query(project string, limit, offset int) url.Values {
	params := url.Values{}
	params.Set("project_id", project)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("include", "attachments")

	if len(f.StatusIDs) > 0 {
		params.Set("status_id", strings.Join(f.StatusIDs, "|"))
	} else {
		params.Set("status_id", "*")
	}
	switch {
	case f.CreatedFrom != "" && f.CreatedTo != "":
		params.Set("created_on", "><"+f.CreatedFrom+"|"+f.CreatedTo)
	case f.CreatedFrom != "":
		params.Set("created_on", ">="+f.CreatedFrom)
	case f.CreatedTo != "":
		params.Set("created_on", "<="+f.CreatedTo)
	}
	if f.AssignedToID != "" {
		params.Set("assigned_to_id", f.AssignedToID)
	}
	return params
}

// FetchIssues retrieves every issue for a project, paginating with a
// fixed page size. The project may be a numeric id or a string
// identifier; Redmine accepts both. A page shorter than the page size
// marks the end of the data; total_count is advisory only and never
// drives termination, since it can be stale while the tracker is
// writing.
func (c Client) FetchIssues(ctx context.Context, project string, filter IssueFilter) ([]Issue, error) {
	var issues []Issue
	offset := 0

	for {
		params := filter.query(project, pageSize, offset)
		reqURL := fmt.Sprintf("%s/issues.json?%s", c.baseURL, params.Encode())

		body, err := c.makeRequest(ctx, reqURL)
		if err != nil {
			return nil, fmt.Errorf("fetching issues for project %s: %w", project, err)
		}

		var response struct {
			Issues     []Issue `json:"issues"`
			TotalCount int     `json:"total_count"`
			Limit      int     `json:"limit"`
			Offset     int     `json:"offset"`
		}
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("parsing issues response: %w", err)
		}

		for _, issue := range response.Issues {
			issue.URL = fmt.Sprintf("%s/issues/%d", c.baseURL, issue.ID)
			issues = append(issues, issue)
		}

		if len(response.Issues) < pageSize {
			break
		}
		offset += pageSize
	}

	return issues, nil
}

// FetchProjectIssues resolves a project name and fetches its issues in
// one call. A missing project yields an empty list and ErrProjectNotFound.
func (c Client) FetchProjectIssues(ctx context.Context, projectName string, filter IssueFilter) ([]Issue, error) {
	project, err := c.ResolveProject(ctx, projectName)
	if err != nil {
		return nil, err
	}
	return c.FetchIssues(ctx, strconv.Itoa(project.ID), filter)
}

// MergeIssues merges issue batches, deduplicating by issue id. Order
// follows the first occurrence of each id; the value kept is the last
// one seen, so a re-fetch with fresher data wins.
func MergeIssues(batches ...[]Issue) []Issue {
	index := make(map[int]int)
	var merged []Issue
	for _, batch := range batches {
		for _, issue := range batch {
			if at, ok := index[issue.ID]; ok {
				merged[at] = issue
				continue
			}
			index[issue.ID] = len(merged)
			merged = append(merged, issue)
		}
	}
	return merged
}

// ProjectResult is the outcome of fetching one configured project. Err
// distinguishes a failed fetch from a project that legitimately has no
// issues, so the caller can show a warning instead of an empty state.
type ProjectResult struct {
	Project config.Project
	Issues  []Issue
	Err     error
}

// FetchAll fetches issues for every configured project sequentially.
// A failing project is recorded in its result and logged; it never
// aborts the remaining projects.
func FetchAll(ctx context.Context, projects []config.Project, filter IssueFilter, logger *zap.Logger) []ProjectResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]ProjectResult, 0, len(projects))
	for _, project := range projects {
		client := NewClient(project.RedmineURL, project.RedmineAPIKey, logger)
		issues, err := client.FetchProjectIssues(ctx, project.RedmineName, filter)
		if err != nil {
			logger.Error("fetch failed for project",
				zap.String("project", project.ProjectID),
				zap.Error(err))
		} else {
			logger.Info("fetched issues",
				zap.String("project", project.ProjectID),
				zap.Int("count", len(issues)))
		}
		results = append(results, ProjectResult{Project: project, Issues: issues, Err: err})
	}
	return results
}

// CollectIssues folds tagged results into one deduplicated issue list,
// skipping failed projects.
func CollectIssues(results []ProjectResult) []Issue {
	batches := make([][]Issue, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		batches = append(batches, r.Issues)
	}
	return MergeIssues(batches...)
}
