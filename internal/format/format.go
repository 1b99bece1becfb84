// Package format flattens Linear entities into the records the tools return.
// Missing relations never fail formatting; they fall back to fixed defaults.
package format

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"linear-mcp/internal/linear"
)

const (
	unknown    = "Unknown"
	unassigned = "Unassigned"
	none       = "None"
)

var priorities = []string{"No priority", "Urgent", "High", "Normal", "Low"}

// Priority maps Linear's 0-4 priority onto its label.
func Priority(p int) string {
	if p < 0 || p >= len(priorities) {
		return unknown
	}
	return priorities[p]
}

// Progress renders a 0..1 ratio as a whole percentage.
func Progress(p float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(p*100)))
}

type Issue struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Assignee    string `json:"assignee"`
	Team        string `json:"team"`
	URL         string `json:"url"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func FormatIssue(issue linear.Issue, state *linear.WorkflowState, assignee *linear.User, team *linear.Team) Issue {
	out := Issue{
		ID:          issue.Identifier,
		Title:       issue.Title,
		Description: issue.Description,
		Status:      unknown,
		Priority:    Priority(issue.Priority),
		Assignee:    unassigned,
		Team:        unknown,
		URL:         issue.URL,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
	if state != nil && state.Name != "" {
		out.Status = state.Name
	}
	if assignee != nil && assignee.Name != "" {
		out.Assignee = assignee.Name
	}
	if team != nil && team.Name != "" {
		out.Team = team.Name
	}
	return out
}

type Comment struct {
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

type IssueDetail struct {
	Issue
	Labels   []string  `json:"labels"`
	Project  string    `json:"project"`
	Estimate *float64  `json:"estimate"`
	Comments []Comment `json:"comments"`
}

// IssueRelations groups what the detail view shows next to the issue itself.
type IssueRelations struct {
	State    *linear.WorkflowState
	Assignee *linear.User
	Team     *linear.Team
	Project  *linear.Project
	Labels   []linear.Label
	Comments []linear.Comment
}

func FormatIssueDetail(issue linear.Issue, rel IssueRelations) IssueDetail {
	out := IssueDetail{
		Issue:    FormatIssue(issue, rel.State, rel.Assignee, rel.Team),
		Labels:   make([]string, 0, len(rel.Labels)),
		Project:  none,
		Estimate: issue.Estimate,
		Comments: make([]Comment, 0, len(rel.Comments)),
	}
	for _, l := range rel.Labels {
		out.Labels = append(out.Labels, l.Name)
	}
	if rel.Project != nil && rel.Project.Name != "" {
		out.Project = rel.Project.Name
	}
	comments := slices.Clone(rel.Comments)
	// RFC 3339 timestamps in UTC order lexically.
	slices.SortStableFunc(comments, func(a, b linear.Comment) int { return cmp.Compare(a.CreatedAt, b.CreatedAt) })
	for _, c := range comments {
		out.Comments = append(out.Comments, Comment{Body: c.Body, CreatedAt: c.CreatedAt})
	}
	return out
}

type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	State       string `json:"state"`
	Progress    string `json:"progress"`
	URL         string `json:"url"`
}

func FormatProject(p linear.Project) Project {
	return Project{
		Name:        p.Name,
		Description: p.Description,
		State:       p.State,
		Progress:    Progress(p.Progress),
		URL:         p.URL,
	}
}

type ProjectDetail struct {
	Project
	Lead       string   `json:"lead"`
	Teams      []string `json:"teams"`
	StartDate  string   `json:"startDate"`
	TargetDate string   `json:"targetDate"`
}

func FormatProjectDetail(p linear.Project, lead *linear.User, teams []linear.Team) ProjectDetail {
	out := ProjectDetail{
		Project:    FormatProject(p),
		Lead:       none,
		Teams:      make([]string, 0, len(teams)),
		StartDate:  p.StartDate,
		TargetDate: p.TargetDate,
	}
	if lead != nil && lead.Name != "" {
		out.Lead = lead.Name
	}
	for _, t := range teams {
		out.Teams = append(out.Teams, t.Name)
	}
	return out
}

type Cycle struct {
	Number   int    `json:"number"`
	Name     string `json:"name"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
	Progress string `json:"progress"`
	IsActive bool   `json:"isActive"`
}

func FormatCycle(c linear.Cycle) Cycle {
	name := c.Name
	if name == "" {
		name = fmt.Sprintf("Cycle %d", c.Number)
	}
	return Cycle{
		Number:   c.Number,
		Name:     name,
		StartsAt: c.StartsAt,
		EndsAt:   c.EndsAt,
		Progress: Progress(c.Progress),
		IsActive: c.IsActive,
	}
}

type ActiveCycle struct {
	Cycle
	Issues []Issue `json:"issues"`
}

type Label struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

func FormatLabel(l linear.Label) Label {
	return Label{Name: l.Name, Color: l.Color, Description: l.Description}
}

type Team struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func FormatTeam(t linear.Team) Team {
	return Team{Key: t.Key, Name: t.Name, Description: t.Description}
}

type User struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Active      bool   `json:"active"`
	Admin       bool   `json:"admin"`
}

func FormatUser(u linear.User) User {
	return User{Name: u.Name, DisplayName: u.DisplayName, Email: u.Email, Active: u.Active, Admin: u.Admin}
}

type UserDetail struct {
	User
	Teams []string `json:"teams"`
}

func FormatUserDetail(u linear.User, teams []linear.Team) UserDetail {
	out := UserDetail{User: FormatUser(u), Teams: make([]string, 0, len(teams))}
	for _, t := range teams {
		out.Teams = append(out.Teams, t.Key)
	}
	return out
}

type WorkflowState struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Color    string  `json:"color"`
	Position float64 `json:"position"`
}

// FormatWorkflowStates orders states the way Linear's board shows them.
func FormatWorkflowStates(states []linear.WorkflowState) []WorkflowState {
	sorted := slices.Clone(states)
	slices.SortStableFunc(sorted, func(a, b linear.WorkflowState) int { return cmp.Compare(a.Position, b.Position) })
	out := make([]WorkflowState, 0, len(sorted))
	for _, st := range sorted {
		out = append(out, WorkflowState{Name: st.Name, Type: st.Type, Color: st.Color, Position: st.Position})
	}
	return out
}

type Roadmap struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	CreatedAt   string `json:"createdAt"`
}

func FormatRoadmap(r linear.Roadmap) Roadmap {
	return Roadmap{Name: r.Name, Description: r.Description, URL: r.URL, CreatedAt: r.CreatedAt}
}

// Map formats every element of a collection, never returning nil so empty
// results render as [].
func Map[T, R any](items []T, f func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, f(item))
	}
	return out
}
