package linear

import (
	"context"
	"fmt"
)

// fetchOne reads a single top-level entity field. A null field is reported
// as ErrNotFound, the same as Linear's "Entity not found" error.
func fetchOne[N any, T any](ctx context.Context, c *Client, op, query, field string, vars map[string]any, conv func(N) T) (T, error) {
	var zero T
	var resp map[string]*N
	if err := c.do(ctx, op, query, vars, &resp); err != nil {
		return zero, err
	}
	node := resp[field]
	if node == nil {
		return zero, ErrNotFound
	}
	return conv(*node), nil
}

func (c *Client) Viewer(ctx context.Context) (User, error) {
	query := `query { viewer { ` + userFields + ` } }`
	return fetchOne(ctx, c, "viewer", query, "viewer", nil, toUser)
}

func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	query := `query($first: Int, $after: String) {
  teams(first: $first, after: $after) {
    nodes { ` + teamFields + ` }
    pageInfo { hasNextPage endCursor }
  }
}`
	return collect(ctx, c, "teams", query, "teams", nil, 0, toTeam)
}

func (c *Client) Team(ctx context.Context, id string) (Team, error) {
	query := `query($id: String!) { team(id: $id) { ` + teamFields + ` } }`
	return fetchOne(ctx, c, "team", query, "team", map[string]any{"id": id}, toTeam)
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	query := `query($first: Int, $after: String) {
  users(first: $first, after: $after) {
    nodes { ` + userFields + ` }
    pageInfo { hasNextPage endCursor }
  }
}`
	return collect(ctx, c, "users", query, "users", nil, 0, toUser)
}

func (c *Client) User(ctx context.Context, id string) (User, error) {
	query := `query($id: String!) { user(id: $id) { ` + userFields + ` } }`
	return fetchOne(ctx, c, "user", query, "user", map[string]any{"id": id}, toUser)
}

func (c *Client) UserTeams(ctx context.Context, userID string) ([]Team, error) {
	query := `query($id: String!) {
  user(id: $id) {
    teams(first: 250) { nodes { ` + teamFields + ` } }
  }
}`
	var resp struct {
		User *struct {
			Teams struct {
				Nodes []teamNode `json:"nodes"`
			} `json:"teams"`
		} `json:"user"`
	}
	if err := c.do(ctx, "userTeams", query, map[string]any{"id": userID}, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, ErrNotFound
	}
	teams := make([]Team, 0, len(resp.User.Teams.Nodes))
	for _, node := range resp.User.Teams.Nodes {
		teams = append(teams, toTeam(node))
	}
	return teams, nil
}

func (c *Client) WorkflowStates(ctx context.Context, teamID string) ([]WorkflowState, error) {
	query := `query($filter: WorkflowStateFilter, $first: Int, $after: String) {
  workflowStates(filter: $filter, first: $first, after: $after) {
    nodes { ` + stateFields + ` }
    pageInfo { hasNextPage endCursor }
  }
}`
	vars := map[string]any{
		"filter": map[string]any{"team": map[string]any{"id": map[string]any{"eq": teamID}}},
	}
	return collect(ctx, c, "workflowStates", query, "workflowStates", vars, 0, toState)
}

func (c *Client) WorkflowState(ctx context.Context, id string) (WorkflowState, error) {
	query := `query($id: String!) { workflowState(id: $id) { ` + stateFields + ` } }`
	return fetchOne(ctx, c, "workflowState", query, "workflowState", map[string]any{"id": id}, toState)
}

// Labels returns every label visible to a team: the team's own labels and
// workspace labels. An empty teamID returns all labels.
func (c *Client) Labels(ctx context.Context, teamID string) ([]Label, error) {
	query := `query($filter: IssueLabelFilter, $first: Int, $after: String) {
  issueLabels(filter: $filter, first: $first, after: $after) {
    nodes { ` + labelFields + ` }
    pageInfo { hasNextPage endCursor }
  }
}`
	var vars map[string]any
	if teamID != "" {
		vars = map[string]any{
			"filter": map[string]any{
				"or": []any{
					map[string]any{"team": map[string]any{"id": map[string]any{"eq": teamID}}},
					map[string]any{"team": map[string]any{"null": true}},
				},
			},
		}
	}
	return collect(ctx, c, "issueLabels", query, "issueLabels", vars, 0, toLabel)
}

func (c *Client) IssueLabels(ctx context.Context, issueID string) ([]Label, error) {
	query := `query($id: String!) {
  issue(id: $id) {
    labels(first: 250) { nodes { ` + labelFields + ` } }
  }
}`
	var resp struct {
		Issue *struct {
			Labels struct {
				Nodes []labelNode `json:"nodes"`
			} `json:"labels"`
		} `json:"issue"`
	}
	if err := c.do(ctx, "issueLabels", query, map[string]any{"id": issueID}, &resp); err != nil {
		return nil, err
	}
	if resp.Issue == nil {
		return nil, ErrNotFound
	}
	labels := make([]Label, 0, len(resp.Issue.Labels.Nodes))
	for _, node := range resp.Issue.Labels.Nodes {
		labels = append(labels, toLabel(node))
	}
	return labels, nil
}

func (c *Client) Projects(ctx context.Context, filter map[string]any, limit int) ([]Project, error) {
	query := `query($filter: ProjectFilter, $first: Int, $after: String) {
  projects(filter: $filter, first: $first, after: $after) {
    nodes { ` + projectFields + ` }
    pageInfo { hasNextPage endCursor }
  }
}`
	return collect(ctx, c, "projects", query, "projects", filterVars(filter), limit, toProject)
}

func (c *Client) Project(ctx context.Context, id string) (Project, error) {
	query := `query($id: String!) { project(id: $id) { ` + projectFields + ` } }`
	return fetchOne(ctx, c, "project", query, "project", map[string]any{"id": id}, toProject)
}

func (c *Client) Cycles(ctx context.Context, filter map[string]any, limit int) ([]Cycle, error) {
	query := `query($filter: CycleFilter, $first: Int, $after: String) {
  cycles(filter: $filter, first: $first, after: $after) {
    nodes { ` + cycleFields + ` }
    pageInfo { hasNextPage endCursor }
  }
}`
	return collect(ctx, c, "cycles", query, "cycles", filterVars(filter), limit, toCycle)
}

func (c *Client) Issues(ctx context.Context, filter map[string]any, limit int) ([]Issue, error) {
	query := `query($filter: IssueFilter, $first: Int, $after: String) {
  issues(filter: $filter, first: $first, after: $after) {
    nodes { ` + issueFields + ` }
    pageInfo { hasNextPage endCursor }
  }
}`
	return collect(ctx, c, "issues", query, "issues", filterVars(filter), limit, toIssue)
}

func (c *Client) SearchIssues(ctx context.Context, term string, limit int) ([]Issue, error) {
	query := `query($term: String!, $first: Int, $after: String) {
  searchIssues(term: $term, first: $first, after: $after) {
    nodes { ` + issueFields + ` }
    pageInfo { hasNextPage endCursor }
  }
}`
	return collect(ctx, c, "searchIssues", query, "searchIssues", map[string]any{"term": term}, limit, toIssue)
}

// Issue accepts either the UUID or the human identifier (e.g. ENG-123).
func (c *Client) Issue(ctx context.Context, id string) (Issue, error) {
	query := `query($id: String!) { issue(id: $id) { ` + issueFields + ` } }`
	return fetchOne(ctx, c, "issue", query, "issue", map[string]any{"id": id}, toIssue)
}

func (c *Client) IssueComments(ctx context.Context, issueID string) ([]Comment, error) {
	query := `query($filter: CommentFilter, $first: Int, $after: String) {
  comments(filter: $filter, first: $first, after: $after) {
    nodes { ` + commentFields + ` }
    pageInfo { hasNextPage endCursor }
  }
}`
	vars := map[string]any{
		"filter": map[string]any{"issue": map[string]any{"id": map[string]any{"eq": issueID}}},
	}
	return collect(ctx, c, "comments", query, "comments", vars, 0, toComment)
}

func (c *Client) Roadmaps(ctx context.Context, limit int) ([]Roadmap, error) {
	query := `query($first: Int, $after: String) {
  roadmaps(first: $first, after: $after) {
    nodes { ` + roadmapFields + ` }
    pageInfo { hasNextPage endCursor }
  }
}`
	return collect(ctx, c, "roadmaps", query, "roadmaps", nil, limit, toRoadmap)
}

func filterVars(filter map[string]any) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	return map[string]any{"filter": filter}
}

func requireID(id, kind string) error {
	if id == "" {
		return fmt.Errorf("%s id is required", kind)
	}
	return nil
}
