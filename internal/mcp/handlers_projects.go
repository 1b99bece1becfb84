package mcp

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"linear-mcp/internal/format"
	"linear-mcp/internal/linear"
	"linear-mcp/internal/safe"

	"golang.org/x/sync/errgroup"
)

func projectNotFound(name string) string {
	return fmt.Sprintf("Project %s not found", name)
}

func (s *Server) listProjects(ctx context.Context, c *call) (any, error) {
	limit, err := c.args.limit(defaultLimit)
	if err != nil {
		return nil, err
	}
	var filter map[string]any
	if key := c.args.str("teamKey"); key != "" {
		team, ok, err := s.resolver.Team(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			filter = map[string]any{"accessibleTeams": map[string]any{"some": map[string]any{"id": map[string]any{"eq": team.ID}}}}
		}
	}
	projects, err := s.api.Projects(ctx, filter, limit)
	if err != nil {
		return nil, err
	}
	return format.Map(projects, format.FormatProject), nil
}

func (s *Server) getProject(ctx context.Context, c *call) (any, error) {
	name, err := c.args.required("projectName")
	if err != nil {
		return nil, err
	}
	ref, ok, err := s.resolver.Project(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return projectNotFound(name), nil
	}

	var (
		project linear.Project
		lead    *linear.User
		teams   []linear.Team
	)
	// The cached collection may be stale; read the project itself.
	project, err = s.api.Project(ctx, ref.ID)
	if errors.Is(err, linear.ErrNotFound) {
		return projectNotFound(name), nil
	}
	if err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	safe.Go(g, func() (err error) {
		lead, err = c.load.user(gctx, project.LeadID)
		return err
	})
	safe.Go(g, func() (err error) {
		teams, err = c.load.teamList(gctx, project.TeamIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return format.FormatProjectDetail(project, lead, teams), nil
}

func (s *Server) createProject(ctx context.Context, c *call) (any, error) {
	name, err := c.args.required("name")
	if err != nil {
		return nil, err
	}
	requestID, err := s.requestID(c.args)
	if err != nil {
		return nil, err
	}

	keys := c.args.list("teamKeys")
	teamIDs := make([]string, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		safe.Go(g, func() error {
			team, ok, err := s.resolver.Team(gctx, key)
			if ok {
				teamIDs[i] = team.ID
			}
			return err
		})
	}
	var leadID string
	if email := c.args.str("leadEmail"); email != "" {
		safe.Go(g, func() error {
			u, ok, err := s.resolver.User(gctx, email)
			if ok {
				leadID = u.ID
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	valid := make([]string, 0, len(teamIDs))
	for _, id := range teamIDs {
		if id != "" && !slices.Contains(valid, id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return "No valid teams found", nil
	}

	input := map[string]any{"id": requestID, "name": name, "teamIds": valid}
	copyProjectFields(c.args, input)
	if leadID != "" {
		input["leadId"] = leadID
	}
	project, err := s.api.CreateProject(ctx, input)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Created project %s\nURL: %s", project.Name, project.URL), nil
}

func (s *Server) updateProject(ctx context.Context, c *call) (any, error) {
	name, err := c.args.required("projectName")
	if err != nil {
		return nil, err
	}
	project, ok, err := s.resolver.Project(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return projectNotFound(name), nil
	}

	input := map[string]any{}
	if newName := c.args.str("name"); newName != "" {
		input["name"] = newName
	}
	copyProjectFields(c.args, input)
	if email := c.args.str("leadEmail"); email != "" {
		u, ok, err := s.resolver.User(ctx, email)
		if err != nil {
			return nil, err
		}
		if ok {
			input["leadId"] = u.ID
		}
	}
	if len(input) == 0 {
		return fmt.Sprintf("Updated project %s", project.Name), nil
	}
	updated, err := s.api.UpdateProject(ctx, project.ID, input)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Updated project %s", updated.Name), nil
}

func (s *Server) deleteProject(ctx context.Context, c *call) (any, error) {
	name, err := c.args.required("projectName")
	if err != nil {
		return nil, err
	}
	project, ok, err := s.resolver.Project(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return projectNotFound(name), nil
	}
	if err := s.api.DeleteProject(ctx, project.ID); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Deleted project %s", project.Name), nil
}

func copyProjectFields(a args, input map[string]any) {
	for _, key := range []string{"description", "state", "startDate", "targetDate"} {
		if v := a.str(key); v != "" {
			input[key] = v
		}
	}
}
