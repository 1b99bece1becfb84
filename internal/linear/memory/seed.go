package memory

import (
	"context"
	"fmt"
	"time"
)

// Seed fills the store with a small demo workspace: two teams, a handful of
// users, labels, one project, an active cycle per team and a backlog of
// issues spread over the workflow.
func Seed(s *Store) error {
	ctx := context.Background()
	now := s.now().UTC()
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(time.RFC3339)
	}

	eng := s.AddTeam("ENG", "Engineering", "Product engineering")
	ops := s.AddTeam("OPS", "Operations", "Infrastructure and on-call")

	ada := s.AddUser("Ada Lovelace", "ada@example.com", true, eng.ID, ops.ID)
	grace := s.AddUser("Grace Hopper", "grace@example.com", false, eng.ID)
	linus := s.AddUser("Linus Torvalds", "linus@example.com", false, ops.ID)

	labels := map[string]string{}
	for _, spec := range []struct{ name, color, teamID string }{
		{"Bug", "#eb5757", ""},
		{"Feature", "#bb87fc", ""},
		{"Performance", "#4cb782", eng.ID},
		{"Incident", "#f2994a", ops.ID},
	} {
		l, err := s.CreateLabel(ctx, map[string]any{"name": spec.name, "color": spec.color, "teamId": spec.teamID})
		if err != nil {
			return fmt.Errorf("seed label %s: %w", spec.name, err)
		}
		labels[spec.name] = l.ID
	}

	project, err := s.CreateProject(ctx, map[string]any{
		"name":        "Q4 Platform",
		"description": "Platform hardening for the end of the year",
		"state":       "started",
		"teamIds":     []string{eng.ID, ops.ID},
		"leadId":      ada.ID,
		"startDate":   now.AddDate(0, 0, -30).Format(time.DateOnly),
		"targetDate":  now.AddDate(0, 0, 60).Format(time.DateOnly),
	})
	if err != nil {
		return fmt.Errorf("seed project: %w", err)
	}

	cycles := map[string]string{}
	for _, teamID := range []string{eng.ID, ops.ID} {
		if _, err := s.CreateCycle(ctx, map[string]any{"teamId": teamID, "startsAt": day(-21), "endsAt": day(-7)}); err != nil {
			return fmt.Errorf("seed cycle: %w", err)
		}
		c, err := s.CreateCycle(ctx, map[string]any{"teamId": teamID, "startsAt": day(-7), "endsAt": day(7)})
		if err != nil {
			return fmt.Errorf("seed cycle: %w", err)
		}
		cycles[teamID] = c.ID
	}

	states := map[string]map[string]string{}
	for _, teamID := range []string{eng.ID, ops.ID} {
		list, _ := s.WorkflowStates(ctx, teamID)
		states[teamID] = map[string]string{}
		for _, st := range list {
			states[teamID][st.Name] = st.ID
		}
	}

	for _, spec := range []struct {
		teamID, title, state, assignee, label string
		priority                              int
		inProject, inCycle                    bool
	}{
		{eng.ID, "Login page times out on slow networks", "In Progress", grace.ID, "Bug", 1, true, true},
		{eng.ID, "Add dark mode to settings", "Todo", "", "Feature", 3, false, true},
		{eng.ID, "Cache project lookups", "In Review", ada.ID, "Performance", 2, true, true},
		{eng.ID, "Remove legacy export endpoint", "Backlog", "", "", 4, false, false},
		{eng.ID, "Fix flaky billing test", "Done", grace.ID, "Bug", 2, false, true},
		{ops.ID, "Rotate database credentials", "Todo", linus.ID, "", 1, true, true},
		{ops.ID, "Disk alert on build runners", "In Progress", linus.ID, "Incident", 1, false, true},
		{ops.ID, "Document on-call handover", "Backlog", "", "", 0, false, false},
	} {
		input := map[string]any{
			"teamId":   spec.teamID,
			"title":    spec.title,
			"priority": spec.priority,
			"stateId":  states[spec.teamID][spec.state],
		}
		if spec.assignee != "" {
			input["assigneeId"] = spec.assignee
		}
		if spec.label != "" {
			input["labelIds"] = []string{labels[spec.label]}
		}
		if spec.inProject {
			input["projectId"] = project.ID
		}
		if spec.inCycle {
			input["cycleId"] = cycles[spec.teamID]
		}
		issue, err := s.CreateIssue(ctx, input)
		if err != nil {
			return fmt.Errorf("seed issue %q: %w", spec.title, err)
		}
		if spec.priority == 1 {
			if _, err := s.CreateComment(ctx, map[string]any{"issueId": issue.ID, "body": "Picked up, investigating."}); err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}
	}

	s.AddRoadmap("2026 Platform", "Reliability and developer experience")
	return nil
}
