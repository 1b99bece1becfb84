package mcp

import (
	"context"
	"fmt"

	"linear-mcp/internal/format"
	"linear-mcp/internal/linear"
)

const (
	defaultCycleLimit = 10
	// activeCycleIssueLimit bounds the issues listed with the active cycle.
	activeCycleIssueLimit = 100
)

func teamClause(teamID string) map[string]any {
	return map[string]any{"id": map[string]any{"eq": teamID}}
}

func (s *Server) listCycles(ctx context.Context, c *call) (any, error) {
	key, err := c.args.required("teamKey")
	if err != nil {
		return nil, err
	}
	limit, err := c.args.limit(defaultCycleLimit)
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
	cycles, err := s.api.Cycles(ctx, map[string]any{"team": teamClause(team.ID)}, limit)
	if err != nil {
		return nil, err
	}
	return format.Map(cycles, format.FormatCycle), nil
}

func (s *Server) getActiveCycle(ctx context.Context, c *call) (any, error) {
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
	cycles, err := s.api.Cycles(ctx, map[string]any{
		"team":     teamClause(team.ID),
		"isActive": map[string]any{"eq": true},
	}, 1)
	if err != nil {
		return nil, err
	}
	if len(cycles) == 0 {
		return fmt.Sprintf("No active cycle found for team %s", team.Key), nil
	}
	cycle := cycles[0]

	issues, err := s.api.Issues(ctx, map[string]any{"cycle": map[string]any{"id": map[string]any{"eq": cycle.ID}}}, activeCycleIssueLimit)
	if err != nil {
		return nil, err
	}
	formatted, err := c.load.issues(ctx, issues)
	if err != nil {
		return nil, err
	}
	return format.ActiveCycle{Cycle: format.FormatCycle(cycle), Issues: formatted}, nil
}

func (s *Server) createCycle(ctx context.Context, c *call) (any, error) {
	key, err := c.args.required("teamKey")
	if err != nil {
		return nil, err
	}
	startsAt, err := c.args.required("startsAt")
	if err != nil {
		return nil, err
	}
	endsAt, err := c.args.required("endsAt")
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

	input := map[string]any{"teamId": team.ID, "startsAt": startsAt, "endsAt": endsAt}
	for _, field := range []string{"name", "description"} {
		if v := c.args.str(field); v != "" {
			input[field] = v
		}
	}
	cycle, err := s.api.CreateCycle(ctx, input)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Created cycle %d for team %s", cycle.Number, team.Key), nil
}

func (s *Server) addIssueToCycle(ctx context.Context, c *call) (any, error) {
	id, err := c.args.required("issueId")
	if err != nil {
		return nil, err
	}
	number, err := c.args.requiredInt("cycleNumber")
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

	cycle, found, err := s.cycleByNumber(ctx, issue.TeamID, number)
	if err != nil {
		return nil, err
	}
	if !found {
		key, err := s.issueTeamKey(ctx, c.load, issue)
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("Cycle %d not found for team %s", number, key), nil
	}
	if _, err := s.api.UpdateIssue(ctx, issue.ID, map[string]any{"cycleId": cycle.ID}); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Added issue %s to cycle %d", issue.Identifier, number), nil
}

func (s *Server) cycleByNumber(ctx context.Context, teamID string, number int) (linear.Cycle, bool, error) {
	cycles, err := s.api.Cycles(ctx, map[string]any{
		"team":   teamClause(teamID),
		"number": map[string]any{"eq": number},
	}, 1)
	if err != nil || len(cycles) == 0 {
		return linear.Cycle{}, false, err
	}
	return cycles[0], true, nil
}
