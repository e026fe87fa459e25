package crawler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.github.com"

// GitHubClient fetches repository contents over the GitHub REST API.
type GitHubClient struct {
	token   string
	apiURL  string
	httpCli *http.Client
}

// NewGitHubClient creates a GitHub client. The token may be empty for public
// repositories, at the cost of tight rate limits; GITHUB_API_URL overrides
// the endpoint for GitHub Enterprise.
func NewGitHubClient(token string) *GitHubClient {
	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	apiURL = strings.TrimRight(apiURL, "/")

	return &GitHubClient{
		token:   token,
		apiURL:  apiURL,
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}
}

// HasToken reports whether the client will authenticate its requests.
func (c *GitHubClient) HasToken() bool { return c.token != "" }

// Repo identifies a repository and an optional ref.
type Repo struct {
	Owner string
	Name  string
	Ref   string
}

// ParseRepo accepts "owner/repo", "owner/repo@ref", or a github.com URL
// (optionally with /tree/<ref>).
func ParseRepo(s string) (Repo, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Repo{}, fmt.Errorf("empty repository")
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return Repo{}, fmt.Errorf("parsing repository URL: %w", err)
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) < 2 {
			return Repo{}, fmt.Errorf("repository URL must include owner and name: %s", s)
		}
		repo := Repo{Owner: parts[0], Name: strings.TrimSuffix(parts[1], ".git")}
		if len(parts) >= 4 && parts[2] == "tree" {
			repo.Ref = strings.Join(parts[3:], "/")
		}
		return repo, nil
	}

	spec := s
	if at := strings.LastIndex(spec, "@"); at > 0 {
		specRef := spec[at+1:]
		spec = spec[:at]
		parts := strings.Split(spec, "/")
		if len(parts) != 2 {
			return Repo{}, fmt.Errorf("repository must be owner/repo[@ref]: %s", s)
		}
		return Repo{Owner: parts[0], Name: parts[1], Ref: specRef}, nil
	}
	parts := strings.Split(spec, "/")
	if len(parts) != 2 {
		return Repo{}, fmt.Errorf("repository must be owner/repo[@ref]: %s", s)
	}
	return Repo{Owner: parts[0], Name: parts[1]}, nil
}

// FetchRepo downloads the files of a repository at the given ref (or the
// default branch) that pass the crawl options.
func (c *GitHubClient) FetchRepo(ctx context.Context, repo Repo, opts Options) (Result, error) {
	ref := repo.Ref
	if ref == "" {
		branch, err := c.defaultBranch(ctx, repo)
		if err != nil {
			return Result{}, err
		}
		ref = branch
	}

	entries, err := c.tree(ctx, repo, ref)
	if err != nil {
		return Result{}, err
	}

	result := Result{ProjectName: repo.Name}
	for _, entry := range entries {
		if entry.Type != "blob" {
			continue
		}
		if !opts.Selected(entry.Path) {
			result.Skipped++
			continue
		}
		if opts.MaxFileSize > 0 && entry.Size > opts.MaxFileSize {
			result.Skipped++
			continue
		}
		data, err := c.blob(ctx, repo, entry.SHA)
		if err != nil {
			return Result{}, fmt.Errorf("fetching %s: %w", entry.Path, err)
		}
		if !usableContent(data) {
			result.Skipped++
			continue
		}
		result.Files = append(result.Files, File{Path: entry.Path, Content: string(data)})
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	if len(result.Files) == 0 {
		return Result{}, fmt.Errorf("no files selected in %s/%s (check include/exclude patterns)", repo.Owner, repo.Name)
	}
	return result, nil
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int    `json:"size"`
}

func (c *GitHubClient) defaultBranch(ctx context.Context, repo Repo) (string, error) {
	var meta struct {
		DefaultBranch string `json:"default_branch"`
	}
	url := fmt.Sprintf("%s/repos/%s/%s", c.apiURL, repo.Owner, repo.Name)
	if err := c.getJSON(ctx, url, &meta); err != nil {
		return "", err
	}
	if meta.DefaultBranch == "" {
		return "", fmt.Errorf("repository %s/%s has no default branch", repo.Owner, repo.Name)
	}
	return meta.DefaultBranch, nil
}

func (c *GitHubClient) tree(ctx context.Context, repo Repo, ref string) ([]treeEntry, error) {
	var tree struct {
		Entries   []treeEntry `json:"tree"`
		Truncated bool        `json:"truncated"`
	}
	url := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", c.apiURL, repo.Owner, repo.Name, ref)
	if err := c.getJSON(ctx, url, &tree); err != nil {
		return nil, err
	}
	if tree.Truncated {
		fmt.Fprintf(os.Stderr, "Warning: repository tree is truncated; some files were not listed\n")
	}
	return tree.Entries, nil
}

func (c *GitHubClient) blob(ctx context.Context, repo Repo, sha string) ([]byte, error) {
	var blob struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	url := fmt.Sprintf("%s/repos/%s/%s/git/blobs/%s", c.apiURL, repo.Owner, repo.Name, sha)
	if err := c.getJSON(ctx, url, &blob); err != nil {
		return nil, err
	}
	if blob.Encoding != "base64" {
		return []byte(blob.Content), nil
	}
	return base64.StdEncoding.DecodeString(strings.ReplaceAll(blob.Content, "\n", ""))
}

func (c *GitHubClient) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("calling GitHub API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == 404 {
		return fmt.Errorf("not found: %s", url)
	}
	if resp.StatusCode == 401 {
		return fmt.Errorf("authentication failed: %s", string(body))
	}
	if resp.StatusCode == 403 || resp.StatusCode == 429 {
		return fmt.Errorf("rate limited or forbidden (consider setting GITHUB_TOKEN): %s", string(body))
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
