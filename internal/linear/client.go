package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrUnauthorized = errors.New("Linear authentication failed, check LINEAR_API_KEY")
	ErrNotFound     = errors.New("entity not found")
	ErrRateLimited  = errors.New("Linear rate limit exceeded")
)

// API is the set of backend capabilities the tool layer calls through.
// Collection reads with limit <= 0 fetch every page.
type API interface {
	Viewer(ctx context.Context) (User, error)
	Teams(ctx context.Context) ([]Team, error)
	Team(ctx context.Context, id string) (Team, error)
	Users(ctx context.Context) ([]User, error)
	User(ctx context.Context, id string) (User, error)
	UserTeams(ctx context.Context, userID string) ([]Team, error)
	WorkflowStates(ctx context.Context, teamID string) ([]WorkflowState, error)
	WorkflowState(ctx context.Context, id string) (WorkflowState, error)
	Labels(ctx context.Context, teamID string) ([]Label, error)
	IssueLabels(ctx context.Context, issueID string) ([]Label, error)
	Projects(ctx context.Context, filter map[string]any, limit int) ([]Project, error)
	Project(ctx context.Context, id string) (Project, error)
	Cycles(ctx context.Context, filter map[string]any, limit int) ([]Cycle, error)
	Issues(ctx context.Context, filter map[string]any, limit int) ([]Issue, error)
	SearchIssues(ctx context.Context, term string, limit int) ([]Issue, error)
	Issue(ctx context.Context, id string) (Issue, error)
	IssueComments(ctx context.Context, issueID string) ([]Comment, error)
	Roadmaps(ctx context.Context, limit int) ([]Roadmap, error)

	CreateIssue(ctx context.Context, input map[string]any) (Issue, error)
	UpdateIssue(ctx context.Context, id string, input map[string]any) (Issue, error)
	DeleteIssue(ctx context.Context, id string) error
	CreateComment(ctx context.Context, input map[string]any) (Comment, error)
	CreateProject(ctx context.Context, input map[string]any) (Project, error)
	UpdateProject(ctx context.Context, id string, input map[string]any) (Project, error)
	DeleteProject(ctx context.Context, id string) error
	CreateCycle(ctx context.Context, input map[string]any) (Cycle, error)
	CreateLabel(ctx context.Context, input map[string]any) (Label, error)
	CreateIssueRelation(ctx context.Context, input map[string]any) (IssueRelation, error)
	CreateAttachment(ctx context.Context, input map[string]any) (Attachment, error)
}

// Config holds the connection settings for the Linear GraphQL API.
type Config struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

const DefaultAPIURL = "https://api.linear.app/graphql"

// Client talks to the Linear GraphQL endpoint.
type Client struct {
	apiURL string
	apiKey string
	http   *http.Client
}

var _ API = (*Client)(nil)

// NewClient creates a new Linear client based on the provided configuration.
func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code                   string `json:"code"`
		Type                   string `json:"type"`
		UserPresentableMessage string `json:"userPresentableMessage"`
	} `json:"extensions"`
}

// GraphQLError carries the error list returned in a GraphQL response body.
type GraphQLError struct {
	Errors []gqlError
}

func (e *GraphQLError) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msg := err.Message
		if err.Extensions.UserPresentableMessage != "" {
			msg = err.Extensions.UserPresentableMessage
		}
		messages = append(messages, msg)
	}
	return strings.Join(messages, "; ")
}

// Is maps well-known Linear error codes onto the package sentinels.
func (e *GraphQLError) Is(target error) bool {
	for _, err := range e.Errors {
		code := strings.ToUpper(err.Extensions.Code)
		switch target {
		case ErrNotFound:
			if code == "ENTITY_NOT_FOUND" || code == "NOT_FOUND" || strings.Contains(strings.ToLower(err.Message), "not found") {
				return true
			}
		case ErrUnauthorized:
			if code == "AUTHENTICATION_ERROR" || code == "FORBIDDEN" {
				return true
			}
		case ErrRateLimited:
			if code == "RATELIMITED" {
				return true
			}
		}
	}
	return false
}

func (c *Client) do(ctx context.Context, op, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	if token := normalizeToken(c.apiKey); token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	log.Debug().Str("op", op).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("Linear request")

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			return fmt.Errorf("%w (retry after %s seconds)", ErrRateLimited, retryAfter)
		}
		return ErrRateLimited
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}

	var gqlResp gqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("Linear API returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	if len(gqlResp.Errors) > 0 {
		return &GraphQLError{Errors: gqlResp.Errors}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Linear API returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", op, err)
	}
	return nil
}

// Personal API keys are sent as-is; a pasted "Bearer " prefix is dropped.
func normalizeToken(token string) string {
	trimmed := strings.TrimSpace(token)
	if strings.HasPrefix(strings.ToLower(trimmed), "bearer ") {
		return strings.TrimSpace(trimmed[7:])
	}
	return trimmed
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type connection[N any] struct {
	Nodes    []N      `json:"nodes"`
	PageInfo pageInfo `json:"pageInfo"`
}

const maxPageSize = 250

// collect walks a top-level connection field page by page until limit nodes
// are gathered or the backend reports no further pages. The query must accept
// $first and $after and select nodes plus pageInfo under the given field.
func collect[N any, T any](ctx context.Context, c *Client, op, query, field string, vars map[string]any, limit int, conv func(N) T) ([]T, error) {
	out := []T{}
	after := ""
	for {
		first := maxPageSize
		if limit > 0 && limit-len(out) < first {
			first = limit - len(out)
		}
		pageVars := map[string]any{"first": first}
		for k, v := range vars {
			pageVars[k] = v
		}
		if after != "" {
			pageVars["after"] = after
		}

		var resp map[string]connection[N]
		if err := c.do(ctx, op, query, pageVars, &resp); err != nil {
			return nil, err
		}
		page := resp[field]
		for _, node := range page.Nodes {
			out = append(out, conv(node))
		}

		if !page.PageInfo.HasNextPage || page.PageInfo.EndCursor == "" {
			return out, nil
		}
		if limit > 0 && len(out) >= limit {
			return out, nil
		}
		after = page.PageInfo.EndCursor
	}
}
