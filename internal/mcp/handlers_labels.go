package mcp

import (
	"context"
	"fmt"
	"slices"

	"linear-mcp/internal/format"
)

func labelNotFound(name string) string {
	return fmt.Sprintf("Label %s not found", name)
}

func (s *Server) listLabels(ctx context.Context, c *call) (any, error) {
	var teamID string
	if key := c.args.str("teamKey"); key != "" {
		team, ok, err := s.resolver.Team(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			teamID = team.ID
		}
	}
	labels, err := s.api.Labels(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return format.Map(labels, format.FormatLabel), nil
}

func (s *Server) createLabel(ctx context.Context, c *call) (any, error) {
	name, err := c.args.required("name")
	if err != nil {
		return nil, err
	}
	requestID, err := s.requestID(c.args)
	if err != nil {
		return nil, err
	}
	input := map[string]any{"id": requestID, "name": name}
	if key := c.args.str("teamKey"); key != "" {
		team, ok, err := s.resolver.Team(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return teamNotFound(key), nil
		}
		input["teamId"] = team.ID
	}
	for _, field := range []string{"color", "description"} {
		if v := c.args.str(field); v != "" {
			input[field] = v
		}
	}
	label, err := s.api.CreateLabel(ctx, input)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("Created label %s", label.Name), nil
}

func (s *Server) addLabelToIssue(ctx context.Context, c *call) (any, error) {
	id, err := c.args.required("issueId")
	if err != nil {
		return nil, err
	}
	name, err := c.args.required("labelName")
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
	label, ok, err := s.resolver.Label(ctx, name, issue.TeamID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return labelNotFound(name), nil
	}

	ids := slices.Clone(issue.LabelIDs)
	if !slices.Contains(ids, label.ID) {
		ids = append(ids, label.ID)
	}
	if _, err := s.api.UpdateIssue(ctx, issue.ID, map[string]any{"labelIds": ids}); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Added label %s to %s", label.Name, issue.Identifier), nil
}

func (s *Server) removeLabelFromIssue(ctx context.Context, c *call) (any, error) {
	id, err := c.args.required("issueId")
	if err != nil {
		return nil, err
	}
	name, err := c.args.required("labelName")
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
	label, ok, err := s.resolver.Label(ctx, name, issue.TeamID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return labelNotFound(name), nil
	}
	if !slices.Contains(issue.LabelIDs, label.ID) {
		return fmt.Sprintf("Issue %s does not have label %s", issue.Identifier, label.Name), nil
	}

	ids := slices.DeleteFunc(slices.Clone(issue.LabelIDs), func(id string) bool { return id == label.ID })
	if _, err := s.api.UpdateIssue(ctx, issue.ID, map[string]any{"labelIds": ids}); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Removed label %s from %s", label.Name, issue.Identifier), nil
}
