// Package memory is an in-process implementation of linear.API. It backs the
// --mock server mode and the dispatcher tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"linear-mcp/internal/linear"

	"github.com/google/uuid"
)

// Store holds a whole workspace in memory. All methods are safe for
// concurrent use.
type Store struct {
	mu sync.Mutex

	teams       []linear.Team
	users       []linear.User
	userTeams   map[string][]string
	viewerID    string
	states      []linear.WorkflowState
	labels      []linear.Label
	projects    []linear.Project
	cycles      []linear.Cycle
	issues      []linear.Issue
	comments    map[string][]linear.Comment
	relations   []linear.IssueRelation
	attachments map[string][]linear.Attachment
	roadmaps    []linear.Roadmap
	issueSeq    map[string]int

	now func() time.Time
}

var _ linear.API = (*Store)(nil)

func New() *Store {
	return &Store{
		userTeams:   make(map[string][]string),
		comments:    make(map[string][]linear.Comment),
		attachments: make(map[string][]linear.Attachment),
		issueSeq:    make(map[string]int),
		now:         time.Now,
	}
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// defaultStates mirrors the workflow Linear gives a new team.
var defaultStates = []struct {
	name, kind, color string
}{
	{"Backlog", "backlog", "#bec2c8"},
	{"Todo", "unstarted", "#e2e2e2"},
	{"In Progress", "started", "#f2c94c"},
	{"In Review", "started", "#0f783c"},
	{"Done", "completed", "#5e6ad2"},
	{"Canceled", "canceled", "#95a2b3"},
}

// AddTeam registers a team together with the default workflow states.
func (s *Store) AddTeam(key, name, description string) linear.Team {
	s.mu.Lock()
	defer s.mu.Unlock()

	team := linear.Team{ID: uuid.NewString(), Key: key, Name: name, Description: description}
	s.teams = append(s.teams, team)
	for i, st := range defaultStates {
		s.states = append(s.states, linear.WorkflowState{
			ID:       uuid.NewString(),
			Name:     st.name,
			Type:     st.kind,
			Color:    st.color,
			Position: float64(i),
			TeamID:   team.ID,
		})
	}
	return team
}

// AddUser registers a user as a member of the given teams.
func (s *Store) AddUser(name, email string, admin bool, teamIDs ...string) linear.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := linear.User{
		ID:          uuid.NewString(),
		Name:        name,
		DisplayName: displayName(name, email),
		Email:       email,
		Active:      true,
		Admin:       admin,
	}
	s.users = append(s.users, user)
	s.userTeams[user.ID] = append([]string(nil), teamIDs...)
	if s.viewerID == "" {
		s.viewerID = user.ID
	}
	return user
}

// SetViewer selects the user the API key belongs to.
func (s *Store) SetViewer(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewerID = userID
}

func (s *Store) AddRoadmap(name, description string) linear.Roadmap {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	rm := linear.Roadmap{
		ID:          id,
		Name:        name,
		Description: description,
		URL:         "https://linear.app/mock/roadmap/" + shortID(id),
		CreatedAt:   s.timestamp(),
	}
	s.roadmaps = append(s.roadmaps, rm)
	return rm
}

func (s *Store) Viewer(ctx context.Context) (linear.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == s.viewerID {
			return u, nil
		}
	}
	return linear.User{}, linear.ErrNotFound
}

func (s *Store) Teams(ctx context.Context) ([]linear.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.teams), nil
}

func (s *Store) Team(ctx context.Context, id string) (linear.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findByID(s.teams, id, func(t linear.Team) string { return t.ID })
}

func (s *Store) Users(ctx context.Context) ([]linear.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users), nil
}

func (s *Store) User(ctx context.Context, id string) (linear.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findByID(s.users, id, func(u linear.User) string { return u.ID })
}

func (s *Store) UserTeams(ctx context.Context, userID string) ([]linear.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, ok := s.userTeams[userID]
	if !ok {
		return nil, linear.ErrNotFound
	}
	var out []linear.Team
	for _, t := range s.teams {
		if slices.Contains(ids, t.ID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) WorkflowStates(ctx context.Context, teamID string) ([]linear.WorkflowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []linear.WorkflowState
	for _, st := range s.states {
		if st.TeamID == teamID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *Store) WorkflowState(ctx context.Context, id string) (linear.WorkflowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findByID(s.states, id, func(st linear.WorkflowState) string { return st.ID })
}

func (s *Store) Labels(ctx context.Context, teamID string) ([]linear.Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []linear.Label
	for _, l := range s.labels {
		if teamID == "" || l.TeamID == "" || l.TeamID == teamID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) IssueLabels(ctx context.Context, issueID string) ([]linear.Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issueLocked(issueID)
	if !ok {
		return nil, linear.ErrNotFound
	}
	var out []linear.Label
	for _, l := range s.labels {
		if slices.Contains(issue.LabelIDs, l.ID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) Projects(ctx context.Context, filter map[string]any, limit int) ([]linear.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []linear.Project
	for _, p := range s.projects {
		ok, err := s.matchProject(p, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, cloneProject(p))
		}
	}
	return truncate(out, limit), nil
}

func (s *Store) Project(ctx context.Context, id string) (linear.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := findByID(s.projects, id, func(p linear.Project) string { return p.ID })
	return cloneProject(p), err
}

func (s *Store) Cycles(ctx context.Context, filter map[string]any, limit int) ([]linear.Cycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []linear.Cycle
	for _, c := range s.cycles {
		ok, err := s.matchCycle(c, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s.withProgress(c))
		}
	}
	return truncate(out, limit), nil
}

func (s *Store) Issues(ctx context.Context, filter map[string]any, limit int) ([]linear.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []linear.Issue
	for _, issue := range s.issues {
		ok, err := s.matchIssue(issue, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, cloneIssue(issue))
		}
	}
	return truncate(out, limit), nil
}

// SearchIssues matches every term against identifier, title and description.
func (s *Store) SearchIssues(ctx context.Context, term string, limit int) ([]linear.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	words := strings.Fields(strings.ToLower(term))
	var out []linear.Issue
	for _, issue := range s.issues {
		haystack := strings.ToLower(issue.Identifier + " " + issue.Title + " " + issue.Description)
		matched := len(words) > 0
		for _, w := range words {
			if !strings.Contains(haystack, w) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, cloneIssue(issue))
		}
	}
	return truncate(out, limit), nil
}

func (s *Store) Issue(ctx context.Context, id string) (linear.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issueLocked(id)
	if !ok {
		return linear.Issue{}, linear.ErrNotFound
	}
	return cloneIssue(*issue), nil
}

func (s *Store) IssueComments(ctx context.Context, issueID string) ([]linear.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issueLocked(issueID)
	if !ok {
		return nil, linear.ErrNotFound
	}
	return slices.Clone(s.comments[issue.ID]), nil
}

func (s *Store) Roadmaps(ctx context.Context, limit int) ([]linear.Roadmap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return truncate(slices.Clone(s.roadmaps), limit), nil
}

// issueLocked looks an issue up by id or identifier. Callers hold s.mu.
func (s *Store) issueLocked(id string) (*linear.Issue, bool) {
	for i := range s.issues {
		if s.issues[i].ID == id || strings.EqualFold(s.issues[i].Identifier, id) {
			return &s.issues[i], true
		}
	}
	return nil, false
}

func findByID[T any](items []T, id string, key func(T) string) (T, error) {
	for _, item := range items {
		if key(item) == id {
			return item, nil
		}
	}
	var zero T
	return zero, linear.ErrNotFound
}

func truncate[T any](items []T, limit int) []T {
	if items == nil {
		items = []T{}
	}
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func cloneIssue(i linear.Issue) linear.Issue {
	i.LabelIDs = slices.Clone(i.LabelIDs)
	return i
}

func cloneProject(p linear.Project) linear.Project {
	p.TeamIDs = slices.Clone(p.TeamIDs)
	return p
}

// withProgress derives cycle progress from the share of completed issues
// and activity from the current time.
func (s *Store) withProgress(c linear.Cycle) linear.Cycle {
	c.IsActive = s.activeWindow(c)
	total, done := 0, 0
	for _, issue := range s.issues {
		if issue.CycleID != c.ID {
			continue
		}
		total++
		if st, err := findByID(s.states, issue.StateID, func(st linear.WorkflowState) string { return st.ID }); err == nil && st.Type == "completed" {
			done++
		}
	}
	if total > 0 {
		c.Progress = float64(done) / float64(total)
	}
	return c
}

func displayName(name, email string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return strings.ToLower(fields[0])
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (s *Store) errUnknown(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, linear.ErrNotFound)
}
