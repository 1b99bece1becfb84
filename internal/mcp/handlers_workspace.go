package mcp

import (
	"context"
	"fmt"

	"linear-mcp/internal/format"
	"linear-mcp/internal/linear"
	"linear-mcp/internal/safe"

	"golang.org/x/sync/errgroup"
)

func (s *Server) listTeams(ctx context.Context, c *call) (any, error) {
	teams, err := s.api.Teams(ctx)
	if err != nil {
		return nil, err
	}
	return format.Map(teams, format.FormatTeam), nil
}

func (s *Server) listUsers(ctx context.Context, c *call) (any, error) {
	users, err := s.api.Users(ctx)
	if err != nil {
		return nil, err
	}
	return format.Map(users, format.FormatUser), nil
}

func (s *Server) getUser(ctx context.Context, c *call) (any, error) {
	email, err := c.args.required("email")
	if err != nil {
		return nil, err
	}
	user, ok, err := s.resolver.User(ctx, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return fmt.Sprintf("User %s not found", email), nil
	}
	teams, err := s.api.UserTeams(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return format.FormatUserDetail(user, teams), nil
}

func (s *Server) listWorkflowStates(ctx context.Context, c *call) (any, error) {
	key, err := c.args.required("teamKey")
	if err != nil {
		return nil, err
	}
	team, ok, err := s.resolver.Team(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return teamNotFound(key), nil
	}
	states, err := s.api.WorkflowStates(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	return format.FormatWorkflowStates(states), nil
}

func (s *Server) createIssueRelation(ctx context.Context, c *call) (any, error) {
	fromID, err := c.args.required("issueId")
	if err != nil {
		return nil, err
	}
	toID, err := c.args.required("relatedIssueId")
	if err != nil {
		return nil, err
	}
	kind, err := c.args.required("type")
	if err != nil {
		return nil, err
	}
	switch kind {
	case linear.RelationBlocks, linear.RelationDuplicate, linear.RelationRelated:
	default:
		return nil, fmt.Errorf("unsupported relation type %q, expected blocks, duplicate or related", kind)
	}

	var (
		from, to     linear.Issue
		fromOK, toOK bool
	)
	g, gctx := errgroup.WithContext(ctx)
	safe.Go(g, func() (err error) {
		from, fromOK, err = s.lookupIssue(gctx, fromID)
		return err
	})
	safe.Go(g, func() (err error) {
		to, toOK, err = s.lookupIssue(gctx, toID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !fromOK {
		return issueNotFound(fromID), nil
	}
	if !toOK {
		return issueNotFound(toID), nil
	}

	_, err = s.api.CreateIssueRelation(ctx, map[string]any{
		"issueId":        from.ID,
		"relatedIssueId": to.ID,
		"type":           kind,
	})
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Created relation: %s %s %s", from.Identifier, kind, to.Identifier), nil
}

func (s *Server) listRoadmaps(ctx context.Context, c *call) (any, error) {
	limit, err := c.args.limit(defaultLimit)
	if err != nil {
		return nil, err
	}
	roadmaps, err := s.api.Roadmaps(ctx, limit)
	if err != nil {
		return nil, err
	}
	return format.Map(roadmaps, format.FormatRoadmap), nil
}

func (s *Server) addAttachment(ctx context.Context, c *call) (any, error) {
	id, err := c.args.required("issueId")
	if err != nil {
		return nil, err
	}
	url, err := c.args.required("url")
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

	title := c.args.str("title")
	if title == "" {
		title = url
	}
	input := map[string]any{"id": requestID, "issueId": issue.ID, "url": url, "title": title}
	if sub := c.args.str("subtitle"); sub != "" {
		input["subtitle"] = sub
	}
	if _, err := s.api.CreateAttachment(ctx, input); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Added attachment %s to %s", title, issue.Identifier), nil
}
