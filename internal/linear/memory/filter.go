package memory

import (
	"fmt"
	"slices"
	"strings"

	"linear-mcp/internal/linear"
)

// The matchers understand the subset of Linear's filter language the tool
// layer produces: relation fields holding attribute comparators such as
// {"team": {"id": {"eq": "..."}}}, plus "some" on the labels connection.

func (s *Store) matchIssue(issue linear.Issue, filter map[string]any) (bool, error) {
	for field, spec := range filter {
		var (
			ok  bool
			err error
		)
		switch field {
		case "team":
			team, _ := findByID(s.teams, issue.TeamID, func(t linear.Team) string { return t.ID })
			ok, err = matchAttrs(spec, map[string]any{"id": issue.TeamID, "key": team.Key})
		case "state":
			st, _ := findByID(s.states, issue.StateID, func(st linear.WorkflowState) string { return st.ID })
			ok, err = matchAttrs(spec, map[string]any{"id": issue.StateID, "name": st.Name, "type": st.Type})
		case "assignee":
			u, _ := findByID(s.users, issue.AssigneeID, func(u linear.User) string { return u.ID })
			ok, err = matchAttrs(spec, map[string]any{"id": issue.AssigneeID, "email": u.Email})
		case "project":
			p, _ := findByID(s.projects, issue.ProjectID, func(p linear.Project) string { return p.ID })
			ok, err = matchAttrs(spec, map[string]any{"id": issue.ProjectID, "name": p.Name})
		case "cycle":
			c, _ := findByID(s.cycles, issue.CycleID, func(c linear.Cycle) string { return c.ID })
			attrs := map[string]any{"id": issue.CycleID, "number": ""}
			if issue.CycleID != "" {
				attrs["number"] = c.Number
			}
			ok, err = matchAttrs(spec, attrs)
		case "labels":
			ok, err = s.matchLabels(issue.LabelIDs, spec)
		case "priority":
			ok, err = matchComparator(spec, issue.Priority)
		default:
			return false, fmt.Errorf("unsupported issue filter field %q", field)
		}
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (s *Store) matchLabels(labelIDs []string, spec any) (bool, error) {
	m, ok := spec.(map[string]any)
	if !ok {
		return false, fmt.Errorf("labels filter must be an object")
	}
	inner, ok := m["some"]
	if !ok || len(m) != 1 {
		return false, fmt.Errorf("labels filter supports only \"some\"")
	}
	for _, l := range s.labels {
		if !slices.Contains(labelIDs, l.ID) {
			continue
		}
		matched, err := matchAttrs(inner, map[string]any{"id": l.ID, "name": l.Name})
		if err != nil || matched {
			return matched, err
		}
	}
	return false, nil
}

func (s *Store) matchProject(p linear.Project, filter map[string]any) (bool, error) {
	for field, spec := range filter {
		var (
			ok  bool
			err error
		)
		switch field {
		case "accessibleTeams":
			ok, err = s.matchTeams(p.TeamIDs, spec)
		case "name", "state", "id":
			value := map[string]any{"name": p.Name, "state": p.State, "id": p.ID}[field]
			ok, err = matchComparator(spec, value)
		default:
			return false, fmt.Errorf("unsupported project filter field %q", field)
		}
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (s *Store) matchTeams(teamIDs []string, spec any) (bool, error) {
	m, ok := spec.(map[string]any)
	if !ok || len(m) != 1 || m["some"] == nil {
		return false, fmt.Errorf("accessibleTeams filter supports only \"some\"")
	}
	for _, t := range s.teams {
		if !slices.Contains(teamIDs, t.ID) {
			continue
		}
		matched, err := matchAttrs(m["some"], map[string]any{"id": t.ID, "key": t.Key})
		if err != nil || matched {
			return matched, err
		}
	}
	return false, nil
}

func (s *Store) matchCycle(c linear.Cycle, filter map[string]any) (bool, error) {
	for field, spec := range filter {
		var (
			ok  bool
			err error
		)
		switch field {
		case "team":
			ok, err = matchAttrs(spec, map[string]any{"id": c.TeamID})
		case "number":
			ok, err = matchComparator(spec, c.Number)
		case "isActive":
			ok, err = matchComparator(spec, s.activeWindow(c))
		default:
			return false, fmt.Errorf("unsupported cycle filter field %q", field)
		}
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// matchAttrs applies {"attr": comparator, ...} to a related entity. The
// special key "null" tests whether the relation is unset.
func matchAttrs(spec any, attrs map[string]any) (bool, error) {
	m, ok := spec.(map[string]any)
	if !ok {
		return false, fmt.Errorf("relation filter must be an object, got %T", spec)
	}
	for attr, cmp := range m {
		if attr == "null" {
			want, _ := cmp.(bool)
			if (str(attrs["id"]) == "") != want {
				return false, nil
			}
			continue
		}
		value, ok := attrs[attr]
		if !ok {
			return false, fmt.Errorf("unsupported filter attribute %q", attr)
		}
		matched, err := matchComparator(cmp, value)
		if err != nil || !matched {
			return false, err
		}
	}
	return true, nil
}

func matchComparator(spec any, value any) (bool, error) {
	m, ok := spec.(map[string]any)
	if !ok {
		return false, fmt.Errorf("comparator must be an object, got %T", spec)
	}
	got := fmt.Sprint(value)
	for op, want := range m {
		var matched bool
		switch op {
		case "eq":
			matched = got == fmt.Sprint(want)
		case "neq":
			matched = got != fmt.Sprint(want)
		case "eqIgnoreCase":
			matched = strings.EqualFold(got, fmt.Sprint(want))
		case "in":
			matched = slices.Contains(strs(want), got)
		case "nin":
			matched = !slices.Contains(strs(want), got)
		default:
			return false, fmt.Errorf("unsupported comparator %q", op)
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func num(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	}
	return 0, false
}

func strs(v any) []string {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, str(item))
		}
		return out
	}
	return nil
}
