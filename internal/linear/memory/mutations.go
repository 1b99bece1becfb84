package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"linear-mcp/internal/linear"

	"github.com/google/uuid"
)

// entityID honours a client supplied id and rejects reuse, the way Linear
// rejects a duplicate id on create.
func entityID(input map[string]any, exists func(string) bool) (string, error) {
	id := str(input["id"])
	if id == "" {
		return uuid.NewString(), nil
	}
	if exists(id) {
		return "", fmt.Errorf("an entity with id %s already exists", id)
	}
	return id, nil
}

func (s *Store) CreateIssue(ctx context.Context, input map[string]any) (linear.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamID := str(input["teamId"])
	team, err := findByID(s.teams, teamID, func(t linear.Team) string { return t.ID })
	if err != nil {
		return linear.Issue{}, s.errUnknown("team", teamID)
	}
	title := str(input["title"])
	if strings.TrimSpace(title) == "" {
		return linear.Issue{}, fmt.Errorf("title is required")
	}
	id, err := entityID(input, func(id string) bool { _, ok := s.issueLocked(id); return ok })
	if err != nil {
		return linear.Issue{}, err
	}

	s.issueSeq[team.ID]++
	identifier := fmt.Sprintf("%s-%d", team.Key, s.issueSeq[team.ID])
	now := s.timestamp()
	issue := linear.Issue{
		ID:         id,
		Identifier: identifier,
		Title:      title,
		URL:        "https://linear.app/mock/issue/" + identifier,
		CreatedAt:  now,
		UpdatedAt:  now,
		TeamID:     team.ID,
		StateID:    s.defaultStateLocked(team.ID),
		LabelIDs:   []string{},
	}
	if err := s.applyIssueInput(&issue, input); err != nil {
		return linear.Issue{}, err
	}
	s.issues = append(s.issues, issue)
	return cloneIssue(issue), nil
}

func (s *Store) UpdateIssue(ctx context.Context, id string, input map[string]any) (linear.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issueLocked(id)
	if !ok {
		return linear.Issue{}, s.errUnknown("issue", id)
	}
	updated := cloneIssue(*issue)
	if err := s.applyIssueInput(&updated, input); err != nil {
		return linear.Issue{}, err
	}
	updated.UpdatedAt = s.timestamp()
	*issue = updated
	return cloneIssue(updated), nil
}

func (s *Store) applyIssueInput(issue *linear.Issue, input map[string]any) error {
	for key, value := range input {
		switch key {
		case "id", "teamId":
		case "title":
			issue.Title = str(value)
		case "description":
			issue.Description = str(value)
		case "priority":
			p, _ := num(value)
			issue.Priority = int(p)
		case "estimate":
			if e, ok := num(value); ok {
				issue.Estimate = &e
			}
		case "stateId":
			st, err := findByID(s.states, str(value), func(st linear.WorkflowState) string { return st.ID })
			if err != nil || st.TeamID != issue.TeamID {
				return fmt.Errorf("workflow state %s does not belong to the issue's team", str(value))
			}
			issue.StateID = st.ID
		case "assigneeId":
			if _, err := findByID(s.users, str(value), func(u linear.User) string { return u.ID }); err != nil {
				return s.errUnknown("user", str(value))
			}
			issue.AssigneeID = str(value)
		case "projectId":
			if _, err := findByID(s.projects, str(value), func(p linear.Project) string { return p.ID }); err != nil {
				return s.errUnknown("project", str(value))
			}
			issue.ProjectID = str(value)
		case "cycleId":
			if _, err := findByID(s.cycles, str(value), func(c linear.Cycle) string { return c.ID }); err != nil {
				return s.errUnknown("cycle", str(value))
			}
			issue.CycleID = str(value)
		case "labelIds":
			ids := strs(value)
			for _, lid := range ids {
				if _, err := findByID(s.labels, lid, func(l linear.Label) string { return l.ID }); err != nil {
					return s.errUnknown("label", lid)
				}
			}
			issue.LabelIDs = ids
		default:
			return fmt.Errorf("unsupported issue field %q", key)
		}
	}
	return nil
}

// defaultStateLocked picks the team's first backlog state, falling back to
// the lowest positioned state.
func (s *Store) defaultStateLocked(teamID string) string {
	var fallback string
	for _, st := range s.states {
		if st.TeamID != teamID {
			continue
		}
		if st.Type == "backlog" {
			return st.ID
		}
		if fallback == "" {
			fallback = st.ID
		}
	}
	return fallback
}

func (s *Store) DeleteIssue(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.issues {
		if s.issues[i].ID == id {
			s.issues = slices.Delete(s.issues, i, i+1)
			delete(s.comments, id)
			return nil
		}
	}
	return s.errUnknown("issue", id)
}

func (s *Store) CreateComment(ctx context.Context, input map[string]any) (linear.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issueLocked(str(input["issueId"]))
	if !ok {
		return linear.Comment{}, s.errUnknown("issue", str(input["issueId"]))
	}
	id, err := entityID(input, func(id string) bool {
		for _, cs := range s.comments {
			for _, c := range cs {
				if c.ID == id {
					return true
				}
			}
		}
		return false
	})
	if err != nil {
		return linear.Comment{}, err
	}
	c := linear.Comment{ID: id, Body: str(input["body"]), CreatedAt: s.timestamp()}
	s.comments[issue.ID] = append(s.comments[issue.ID], c)
	return c, nil
}

func (s *Store) CreateProject(ctx context.Context, input map[string]any) (linear.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamIDs := strs(input["teamIds"])
	if len(teamIDs) == 0 {
		return linear.Project{}, fmt.Errorf("a project needs at least one team")
	}
	id, err := entityID(input, func(id string) bool {
		_, err := findByID(s.projects, id, func(p linear.Project) string { return p.ID })
		return err == nil
	})
	if err != nil {
		return linear.Project{}, err
	}
	p := linear.Project{
		ID:      id,
		Name:    str(input["name"]),
		State:   "planned",
		URL:     "https://linear.app/mock/project/" + shortID(id),
		TeamIDs: teamIDs,
	}
	if err := applyProjectInput(&p, input); err != nil {
		return linear.Project{}, err
	}
	s.projects = append(s.projects, p)
	return cloneProject(p), nil
}

func (s *Store) UpdateProject(ctx context.Context, id string, input map[string]any) (linear.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID != id {
			continue
		}
		p := cloneProject(s.projects[i])
		if err := applyProjectInput(&p, input); err != nil {
			return linear.Project{}, err
		}
		s.projects[i] = p
		return cloneProject(p), nil
	}
	return linear.Project{}, s.errUnknown("project", id)
}

func applyProjectInput(p *linear.Project, input map[string]any) error {
	for key, value := range input {
		switch key {
		case "id", "teamIds":
		case "name":
			p.Name = str(value)
		case "description":
			p.Description = str(value)
		case "state":
			p.State = str(value)
		case "startDate":
			p.StartDate = str(value)
		case "targetDate":
			p.TargetDate = str(value)
		case "leadId":
			p.LeadID = str(value)
		default:
			return fmt.Errorf("unsupported project field %q", key)
		}
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects = slices.Delete(s.projects, i, i+1)
			for j := range s.issues {
				if s.issues[j].ProjectID == id {
					s.issues[j].ProjectID = ""
				}
			}
			return nil
		}
	}
	return s.errUnknown("project", id)
}

func (s *Store) CreateCycle(ctx context.Context, input map[string]any) (linear.Cycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamID := str(input["teamId"])
	if _, err := findByID(s.teams, teamID, func(t linear.Team) string { return t.ID }); err != nil {
		return linear.Cycle{}, s.errUnknown("team", teamID)
	}
	number := 1
	for _, c := range s.cycles {
		if c.TeamID == teamID && c.Number >= number {
			number = c.Number + 1
		}
	}
	c := linear.Cycle{
		ID:       uuid.NewString(),
		Number:   number,
		Name:     str(input["name"]),
		StartsAt: str(input["startsAt"]),
		EndsAt:   str(input["endsAt"]),
		TeamID:   teamID,
	}
	c.IsActive = s.activeWindow(c)
	s.cycles = append(s.cycles, c)
	return c, nil
}

// activeWindow reports whether now falls inside the cycle's date range.
func (s *Store) activeWindow(c linear.Cycle) bool {
	now := s.timestamp()
	return c.StartsAt != "" && c.EndsAt != "" && c.StartsAt <= now && now < c.EndsAt
}

func (s *Store) CreateLabel(ctx context.Context, input map[string]any) (linear.Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := entityID(input, func(id string) bool {
		_, err := findByID(s.labels, id, func(l linear.Label) string { return l.ID })
		return err == nil
	})
	if err != nil {
		return linear.Label{}, err
	}
	l := linear.Label{
		ID:          id,
		Name:        str(input["name"]),
		Color:       str(input["color"]),
		Description: str(input["description"]),
		TeamID:      str(input["teamId"]),
	}
	for _, existing := range s.labels {
		if strings.EqualFold(existing.Name, l.Name) && existing.TeamID == l.TeamID {
			return linear.Label{}, fmt.Errorf("duplicate label name %q", l.Name)
		}
	}
	s.labels = append(s.labels, l)
	return l, nil
}

func (s *Store) CreateIssueRelation(ctx context.Context, input map[string]any) (linear.IssueRelation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.issueLocked(str(input["issueId"]))
	if !ok {
		return linear.IssueRelation{}, s.errUnknown("issue", str(input["issueId"]))
	}
	to, ok := s.issueLocked(str(input["relatedIssueId"]))
	if !ok {
		return linear.IssueRelation{}, s.errUnknown("issue", str(input["relatedIssueId"]))
	}
	r := linear.IssueRelation{ID: uuid.NewString(), Type: str(input["type"]), IssueID: from.ID, RelatedIssueID: to.ID}
	s.relations = append(s.relations, r)
	return r, nil
}

// Relations returns the relations created so far. It is not part of linear.API.
func (s *Store) Relations() []linear.IssueRelation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.relations)
}

func (s *Store) CreateAttachment(ctx context.Context, input map[string]any) (linear.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issueLocked(str(input["issueId"]))
	if !ok {
		return linear.Attachment{}, s.errUnknown("issue", str(input["issueId"]))
	}
	id, err := entityID(input, func(id string) bool {
		for _, as := range s.attachments {
			for _, a := range as {
				if a.ID == id {
					return true
				}
			}
		}
		return false
	})
	if err != nil {
		return linear.Attachment{}, err
	}
	a := linear.Attachment{ID: id, Title: str(input["title"]), Subtitle: str(input["subtitle"]), URL: str(input["url"])}
	s.attachments[issue.ID] = append(s.attachments[issue.ID], a)
	return a, nil
}

// Attachments returns the attachments of an issue. It is not part of linear.API.
func (s *Store) Attachments(issueID string) []linear.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if issue, ok := s.issueLocked(issueID); ok {
		issueID = issue.ID
	}
	return slices.Clone(s.attachments[issueID])
}
