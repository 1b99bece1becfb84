package mcp

import (
	"context"
	"fmt"

	"linear-mcp/internal/format"
	"linear-mcp/internal/linear"
	"linear-mcp/internal/resolve"
	"linear-mcp/internal/safe"

	"golang.org/x/sync/errgroup"
)

const defaultLimit = 20

func (s *Server) listIssues(ctx context.Context, c *call) (any, error) {
	limit, err := c.args.limit(defaultLimit)
	if err != nil {
		return nil, err
	}
	issues, err := s.api.Issues(ctx, c.filter, limit)
	if err != nil {
		return nil, err
	}
	return c.load.issues(ctx, issues)
}

func (s *Server) getIssue(ctx context.Context, c *call) (any, error) {
	id, err := c.args.required("issueId")
	if err != nil {
		return nil, err
	}
	issue, ok, err := s.lookupIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return issueNotFound(id), nil
	}

	var rel format.IssueRelations
	g, gctx := errgroup.WithContext(ctx)
	safe.Go(g, func() (err error) {
		rel.State, err = c.load.state(gctx, issue.StateID)
		return err
	})
	safe.Go(g, func() (err error) {
		rel.Assignee, err = c.load.user(gctx, issue.AssigneeID)
		return err
	})
	safe.Go(g, func() (err error) {
		rel.Team, err = c.load.team(gctx, issue.TeamID)
		return err
	})
	safe.Go(g, func() (err error) {
		rel.Project, err = c.load.project(gctx, issue.ProjectID)
		return err
	})
	safe.Go(g, func() (err error) {
		rel.Labels, err = s.api.IssueLabels(gctx, issue.ID)
		return err
	})
	safe.Go(g, func() (err error) {
		rel.Comments, err = s.api.IssueComments(gctx, issue.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return format.FormatIssueDetail(issue, rel), nil
}

func (s *Server) createIssue(ctx context.Context, c *call) (any, error) {
	title, err := c.args.required("title")
	if err != nil {
		return nil, err
	}
	teamKey, err := c.args.required("teamKey")
	if err != nil {
		return nil, err
	}
	requestID, err := s.requestID(c.args)
	if err != nil {
		return nil, err
	}
	team, ok, err := s.resolver.Team(ctx, teamKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return teamNotFound(teamKey), nil
	}

	input := map[string]any{
		"id":     requestID,
		"teamId": team.ID,
		"title":  title,
	}
	if c.args.has("description") {
		input["description"] = c.args.str("description")
	}
	if c.args.has("priority") {
		p, err := c.args.integer("priority", 0)
		if err != nil {
			return nil, err
		}
		input["priority"] = p
	}
	if c.args.has("estimate") {
		e, ok := asFloat(c.args["estimate"])
		if !ok {
			return nil, fmt.Errorf("argument %q must be a number", "estimate")
		}
		input["estimate"] = e
	}

	refs, err := s.resolveIssueRefs(ctx, c.args, team.ID)
	if err != nil {
		return nil, err
	}
	refs.apply(input)
	if labels := c.args.list("labelNames"); len(labels) > 0 {
		ids, err := s.resolveLabels(ctx, labels, team.ID)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			input["labelIds"] = ids
		}
	}

	issue, err := s.api.CreateIssue(ctx, input)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Created issue %s: %s\nURL: %s", issue.Identifier, issue.Title, issue.URL), nil
}

func (s *Server) updateIssue(ctx context.Context, c *call) (any, error) {
	id, err := c.args.required("issueId")
	if err != nil {
		return nil, err
	}
	issue, ok, err := s.lookupIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return issueNotFound(id), nil
	}

	input := map[string]any{}
	if title := c.args.str("title"); title != "" {
		input["title"] = title
	}
	if desc := c.args.str("description"); desc != "" {
		input["description"] = desc
	}
	if c.args.has("priority") {
		p, err := c.args.integer("priority", 0)
		if err != nil {
			return nil, err
		}
		input["priority"] = p
	}
	if c.args.has("estimate") {
		e, ok := asFloat(c.args["estimate"])
		if !ok {
			return nil, fmt.Errorf("argument %q must be a number", "estimate")
		}
		input["estimate"] = e
	}
	refs, err := s.resolveIssueRefs(ctx, c.args, issue.TeamID)
	if err != nil {
		return nil, err
	}
	refs.apply(input)

	if len(input) > 0 {
		if _, err := s.api.UpdateIssue(ctx, issue.ID, input); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("Updated issue %s", issue.Identifier), nil
}

func (s *Server) deleteIssue(ctx context.Context, c *call) (any, error) {
	id, err := c.args.required("issueId")
	if err != nil {
		return nil, err
	}
	issue, ok, err := s.lookupIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return issueNotFound(id), nil
	}
	if err := s.api.DeleteIssue(ctx, issue.ID); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Deleted issue %s", issue.Identifier), nil
}

func (s *Server) addComment(ctx context.Context, c *call) (any, error) {
	id, err := c.args.required("issueId")
	if err != nil {
		return nil, err
	}
	body, err := c.args.required("body")
	if err != nil {
		return nil, err
	}
	requestID, err := s.requestID(c.args)
	if err != nil {
		return nil, err
	}
	issue, ok, err := s.lookupIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return issueNotFound(id), nil
	}
	if _, err := s.api.CreateComment(ctx, map[string]any{"id": requestID, "issueId": issue.ID, "body": body}); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Added comment to %s", issue.Identifier), nil
}

func (s *Server) searchIssues(ctx context.Context, c *call) (any, error) {
	query, err := c.args.required("query")
	if err != nil {
		return nil, err
	}
	limit, err := c.args.limit(defaultLimit)
	if err != nil {
		return nil, err
	}
	issues, err := s.api.SearchIssues(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return c.load.issues(ctx, issues)
}

func (s *Server) getMyIssues(ctx context.Context, c *call) (any, error) {
	limit, err := c.args.limit(defaultLimit)
	if err != nil {
		return nil, err
	}
	me, err := s.api.Viewer(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := s.resolver.IssueFilter(ctx, resolve.FilterArgs{AssigneeID: me.ID, Status: c.args.str("status")})
	if err != nil {
		return nil, err
	}
	issues, err := s.api.Issues(ctx, filter, limit)
	if err != nil {
		return nil, err
	}
	return c.load.issues(ctx, issues)
}

// issueRefs holds the optional references of a create or update that
// resolved; the rest are dropped.
type issueRefs struct {
	assigneeID string
	stateID    string
	projectID  string
}

func (r issueRefs) apply(input map[string]any) {
	if r.assigneeID != "" {
		input["assigneeId"] = r.assigneeID
	}
	if r.stateID != "" {
		input["stateId"] = r.stateID
	}
	if r.projectID != "" {
		input["projectId"] = r.projectID
	}
}

func (s *Server) resolveIssueRefs(ctx context.Context, a args, teamID string) (issueRefs, error) {
	var refs issueRefs
	g, ctx := errgroup.WithContext(ctx)
	if email := a.str("assigneeEmail"); email != "" {
		safe.Go(g, func() error {
			u, ok, err := s.resolver.User(ctx, email)
			if ok {
				refs.assigneeID = u.ID
			}
			return err
		})
	}
	if status := a.str("status"); status != "" {
		safe.Go(g, func() error {
			st, ok, err := s.resolver.State(ctx, teamID, status)
			if ok {
				refs.stateID = st.ID
			}
			return err
		})
	}
	if name := a.str("projectName"); name != "" {
		safe.Go(g, func() error {
			p, ok, err := s.resolver.Project(ctx, name)
			if ok {
				refs.projectID = p.ID
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return issueRefs{}, err
	}
	return refs, nil
}

// resolveLabels returns the ids of the names that resolve within the team,
// without duplicates.
func (s *Server) resolveLabels(ctx context.Context, names []string, teamID string) ([]string, error) {
	ids := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, name := range names {
		l, ok, err := s.resolver.Label(ctx, name, teamID)
		if err != nil {
			return nil, err
		}
		if ok && !seen[l.ID] {
			seen[l.ID] = true
			ids = append(ids, l.ID)
		}
	}
	return ids, nil
}

func (s *Server) issueTeamKey(ctx context.Context, l *loader, issue linear.Issue) (string, error) {
	team, err := l.team(ctx, issue.TeamID)
	if err != nil || team == nil {
		return "", err
	}
	return team.Key, nil
}
