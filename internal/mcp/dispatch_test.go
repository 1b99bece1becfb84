package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"linear-mcp/internal/linear"
	"linear-mcp/internal/linear/memory"
	"linear-mcp/internal/resolve"
)

// fakeAPI delegates to the embedded API unless a hook is set.
type fakeAPI struct {
	linear.API
	teams         func(ctx context.Context) ([]linear.Team, error)
	issue         func(ctx context.Context, id string) (linear.Issue, error)
	updateIssue   func(ctx context.Context, id string, input map[string]any) (linear.Issue, error)
	createProject func(ctx context.Context, input map[string]any) (linear.Project, error)
	state         func(ctx context.Context, id string) (linear.WorkflowState, error)
}

func (f *fakeAPI) WorkflowState(ctx context.Context, id string) (linear.WorkflowState, error) {
	if f.state != nil {
		return f.state(ctx, id)
	}
	return f.API.WorkflowState(ctx, id)
}

func (f *fakeAPI) Teams(ctx context.Context) ([]linear.Team, error) {
	if f.teams != nil {
		return f.teams(ctx)
	}
	return f.API.Teams(ctx)
}

func (f *fakeAPI) Issue(ctx context.Context, id string) (linear.Issue, error) {
	if f.issue != nil {
		return f.issue(ctx, id)
	}
	return f.API.Issue(ctx, id)
}

func (f *fakeAPI) UpdateIssue(ctx context.Context, id string, input map[string]any) (linear.Issue, error) {
	if f.updateIssue != nil {
		return f.updateIssue(ctx, id, input)
	}
	return f.API.UpdateIssue(ctx, id, input)
}

func (f *fakeAPI) CreateProject(ctx context.Context, input map[string]any) (linear.Project, error) {
	if f.createProject != nil {
		return f.createProject(ctx, input)
	}
	return f.API.CreateProject(ctx, input)
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	if err := memory.Seed(store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func newTestServer(t *testing.T, api linear.API) *Server {
	t.Helper()
	cache := resolve.NewCache(time.Minute, resolve.DefaultCacheMaxEntries)
	return NewServer(api, resolve.New(api, cache))
}

func mustCall(t *testing.T, s *Server, name string, arguments map[string]any) string {
	t.Helper()
	res := s.Call(context.Background(), name, arguments)
	if res.IsError {
		t.Fatalf("%s returned error: %s", name, res.Text)
	}
	return res.Text
}

func decode[T any](t *testing.T, text string) T {
	t.Helper()
	var out T
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	return out
}

func TestCatalogue(t *testing.T) {
	s := NewServer(memory.New(), nil)
	tools := s.Tools()
	if len(tools) != 28 {
		t.Fatalf("expected 28 tools, got %d", len(tools))
	}
	seen := map[string]bool{}
	for _, def := range tools {
		if !strings.HasPrefix(def.Name, "linear_") {
			t.Errorf("tool %s lacks the linear_ prefix", def.Name)
		}
		if seen[def.Name] {
			t.Errorf("duplicate tool %s", def.Name)
		}
		seen[def.Name] = true
		if def.InputSchema == nil || def.Description == "" {
			t.Errorf("tool %s lacks a schema or description", def.Name)
		}
	}
}

func TestUnknownTool(t *testing.T) {
	s := NewServer(memory.New(), nil)
	res := s.Call(context.Background(), "linear_nope", nil)
	if res.IsError || res.Text != "Unknown tool: linear_nope" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestGetIssueNotFound(t *testing.T) {
	s := newTestServer(t, seededStore(t))
	res := s.Call(context.Background(), "linear_get_issue", map[string]any{"issueId": "ENG-999"})
	if res.IsError || res.Text != "Issue ENG-999 not found" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestMissingRequiredArgument(t *testing.T) {
	s := newTestServer(t, seededStore(t))
	res := s.Call(context.Background(), "linear_get_issue", map[string]any{})
	if !res.IsError || res.Text != `Error: missing required argument "issueId"` {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestCreateThenGetIssue(t *testing.T) {
	store := seededStore(t)
	s := newTestServer(t, store)
	s.newID = func() string { return "client-id-1" }

	text := mustCall(t, s, "linear_create_issue", map[string]any{
		"title":      "Broken export",
		"teamKey":    "eng",
		"labelNames": []any{"Bug", "bug", "Nonexistent"},
	})
	if !strings.HasPrefix(text, "Created issue ENG-6: Broken export\nURL: ") {
		t.Fatalf("unexpected confirmation %q", text)
	}

	if _, err := store.Issue(context.Background(), "client-id-1"); err != nil {
		t.Errorf("client id was not sent with the create: %v", err)
	}

	detail := decode[map[string]any](t, mustCall(t, s, "linear_get_issue", map[string]any{"issueId": "ENG-6"}))
	if detail["status"] != "Backlog" || detail["assignee"] != "Unassigned" || detail["team"] != "Engineering" {
		t.Errorf("unexpected detail %v", detail)
	}
	if detail["project"] != "None" || detail["estimate"] != nil {
		t.Errorf("unexpected defaults %v", detail)
	}
	if labels, _ := detail["labels"].([]any); len(labels) != 1 {
		t.Errorf("expected one de-duplicated label, got %v", detail["labels"])
	}
}

func TestCreateIssueUnknownTeam(t *testing.T) {
	s := newTestServer(t, seededStore(t))
	res := s.Call(context.Background(), "linear_create_issue", map[string]any{"title": "x", "teamKey": "NOPE"})
	if res.IsError || res.Text != "Team NOPE not found" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestCreateRetryWithRequestIDIsRejected(t *testing.T) {
	s := newTestServer(t, seededStore(t))
	const requestID = "0b6d7a3e-5f4c-4c1e-9d1a-2f8e6c7b9a10"
	args := map[string]any{"title": "Retry me", "teamKey": "ENG", "requestId": requestID}

	before := decode[[]map[string]any](t, mustCall(t, s, "linear_list_issues", map[string]any{"teamKey": "ENG"}))
	mustCall(t, s, "linear_create_issue", args)
	res := s.Call(context.Background(), "linear_create_issue", args)
	if !res.IsError || !strings.Contains(res.Text, requestID) {
		t.Errorf("expected the retried create to be rejected, got %+v", res)
	}
	after := decode[[]map[string]any](t, mustCall(t, s, "linear_list_issues", map[string]any{"teamKey": "ENG"}))
	if len(after) != len(before)+1 {
		t.Errorf("expected exactly one new issue, got %d -> %d", len(before), len(after))
	}

	res = s.Call(context.Background(), "linear_add_comment", map[string]any{"issueId": "ENG-1", "body": "x", "requestId": "not-a-uuid"})
	if !res.IsError || !strings.HasPrefix(res.Text, `Error: argument "requestId" must be a UUID`) {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestFractionalPriorityIsRejected(t *testing.T) {
	s := newTestServer(t, seededStore(t))
	res := s.Call(context.Background(), "linear_update_issue", map[string]any{"issueId": "ENG-1", "priority": 2.7})
	if !res.IsError || res.Text != `Error: argument "priority" must be an integer` {
		t.Errorf("unexpected result %+v", res)
	}
	detail := decode[map[string]any](t, mustCall(t, s, "linear_get_issue", map[string]any{"issueId": "ENG-1"}))
	if detail["priority"] != "Urgent" {
		t.Errorf("priority changed after a rejected update: %v", detail["priority"])
	}
}

func TestListIssuesFilters(t *testing.T) {
	s := newTestServer(t, seededStore(t))

	tests := []struct {
		name string
		args map[string]any
		want int
	}{
		{"team", map[string]any{"teamKey": "OPS"}, 3},
		{"team and status", map[string]any{"teamKey": "ENG", "status": "in progress"}, 1},
		{"assignee", map[string]any{"assigneeEmail": "GRACE@example.com"}, 2},
		{"label", map[string]any{"teamKey": "ENG", "labelName": "bug"}, 2},
		{"cycle", map[string]any{"teamKey": "ENG", "cycleNumber": float64(2)}, 4},
		{"unresolved team is ignored", map[string]any{"teamKey": "NOPE"}, 8},
		{"limit", map[string]any{"limit": float64(3)}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := decode[[]map[string]any](t, mustCall(t, s, "linear_list_issues", tt.args))
			if len(issues) != tt.want {
				t.Errorf("expected %d issues, got %d", tt.want, len(issues))
			}
		})
	}
}

func TestEmptyListRendersArray(t *testing.T) {
	s := newTestServer(t, seededStore(t))
	text := mustCall(t, s, "linear_list_issues", map[string]any{"teamKey": "OPS", "status": "Canceled"})
	if text != "[]" {
		t.Errorf("expected [], got %q", text)
	}
}

func TestGetMyIssues(t *testing.T) {
	s := newTestServer(t, seededStore(t))
	issues := decode[[]map[string]any](t, mustCall(t, s, "linear_get_my_issues", nil))
	if len(issues) != 1 || issues[0]["assignee"] != "Ada Lovelace" {
		t.Errorf("unexpected issues %v", issues)
	}
}

func TestBackendFailureIsOneErrorResult(t *testing.T) {
	api := &fakeAPI{
		API:   seededStore(t),
		teams: func(context.Context) ([]linear.Team, error) { return nil, errors.New("connection reset") },
	}
	s := newTestServer(t, api)
	res := s.Call(context.Background(), "linear_list_teams", nil)
	if !res.IsError || res.Text != "Error: connection reset" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPanicBecomesErrorResult(t *testing.T) {
	api := &fakeAPI{
		API:   seededStore(t),
		issue: func(context.Context, string) (linear.Issue, error) { panic("nil map") },
	}
	s := newTestServer(t, api)
	res := s.Call(context.Background(), "linear_get_issue", map[string]any{"issueId": "ENG-1"})
	if !res.IsError || !strings.HasPrefix(res.Text, "Error: internal error: nil map") {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPanicInFanOutBecomesErrorResult(t *testing.T) {
	api := &fakeAPI{
		API: seededStore(t),
		state: func(context.Context, string) (linear.WorkflowState, error) {
			var seen map[string]bool
			seen["x"] = true
			return linear.WorkflowState{}, nil
		},
	}
	s := newTestServer(t, api)

	for _, tc := range []struct {
		name string
		args map[string]any
	}{
		{"linear_get_issue", map[string]any{"issueId": "ENG-1"}},
		// Several issues share a state, so waiters on the panicking fetch must be released.
		{"linear_list_issues", map[string]any{"teamKey": "ENG"}},
	} {
		res := s.Call(context.Background(), tc.name, tc.args)
		if !res.IsError || res.Text != "Error: internal error: assignment to entry in nil map" {
			t.Errorf("%s: unexpected result %+v", tc.name, res)
		}
	}
}

func TestCreateProjectWithoutValidTeams(t *testing.T) {
	var writes atomic.Int32
	api := &fakeAPI{
		API: seededStore(t),
		createProject: func(context.Context, map[string]any) (linear.Project, error) {
			writes.Add(1)
			return linear.Project{}, nil
		},
	}
	s := newTestServer(t, api)
	res := s.Call(context.Background(), "linear_create_project", map[string]any{"name": "Ghost", "teamKeys": []any{"NOPE", "MISSING"}})
	if res.IsError || res.Text != "No valid teams found" {
		t.Errorf("unexpected result %+v", res)
	}
	if writes.Load() != 0 {
		t.Errorf("expected no create, got %d", writes.Load())
	}
}

func TestCreateProjectInvalidatesCache(t *testing.T) {
	s := newTestServer(t, seededStore(t))

	if text := mustCall(t, s, "linear_get_project", map[string]any{"projectName": "Billing"}); text != "Project Billing not found" {
		t.Fatalf("unexpected result %q", text)
	}
	text := mustCall(t, s, "linear_create_project", map[string]any{"name": "Billing", "teamKeys": "ENG, OPS, ENG", "leadEmail": "ada@example.com"})
	if !strings.HasPrefix(text, "Created project Billing\nURL: ") {
		t.Fatalf("unexpected confirmation %q", text)
	}

	detail := decode[map[string]any](t, mustCall(t, s, "linear_get_project", map[string]any{"projectName": "billing"}))
	if detail["lead"] != "Ada Lovelace" {
		t.Errorf("unexpected lead %v", detail["lead"])
	}
	if teams, _ := detail["teams"].([]any); len(teams) != 2 {
		t.Errorf("expected two distinct teams, got %v", detail["teams"])
	}
}

func TestAddLabelToIssue(t *testing.T) {
	store := seededStore(t)
	s := newTestServer(t, store)
	ctx := context.Background()

	// ENG-1 already carries Bug.
	if text := mustCall(t, s, "linear_add_label_to_issue", map[string]any{"issueId": "ENG-1", "labelName": "bug"}); text != "Added label Bug to ENG-1" {
		t.Errorf("unexpected confirmation %q", text)
	}
	issue, _ := store.Issue(ctx, "ENG-1")
	if len(issue.LabelIDs) != 1 {
		t.Errorf("label was duplicated: %v", issue.LabelIDs)
	}

	mustCall(t, s, "linear_add_label_to_issue", map[string]any{"issueId": "ENG-1", "labelName": "Performance"})
	issue, _ = store.Issue(ctx, "ENG-1")
	if len(issue.LabelIDs) != 2 {
		t.Errorf("expected two labels, got %v", issue.LabelIDs)
	}

	// Incident belongs to OPS and is not visible from an ENG issue.
	if text := mustCall(t, s, "linear_add_label_to_issue", map[string]any{"issueId": "ENG-1", "labelName": "Incident"}); text != "Label Incident not found" {
		t.Errorf("unexpected result %q", text)
	}
}

func TestRemoveLabelFromIssue(t *testing.T) {
	var writes atomic.Int32
	store := seededStore(t)
	api := &fakeAPI{
		API: store,
		updateIssue: func(ctx context.Context, id string, input map[string]any) (linear.Issue, error) {
			writes.Add(1)
			return store.UpdateIssue(ctx, id, input)
		},
	}
	s := newTestServer(t, api)

	text := mustCall(t, s, "linear_remove_label_from_issue", map[string]any{"issueId": "ENG-2", "labelName": "Bug"})
	if text != "Issue ENG-2 does not have label Bug" || writes.Load() != 0 {
		t.Errorf("unexpected result %q after %d writes", text, writes.Load())
	}

	text = mustCall(t, s, "linear_remove_label_from_issue", map[string]any{"issueId": "ENG-2", "labelName": "feature"})
	if text != "Removed label Feature from ENG-2" || writes.Load() != 1 {
		t.Errorf("unexpected result %q after %d writes", text, writes.Load())
	}
	issue, _ := store.Issue(context.Background(), "ENG-2")
	if len(issue.LabelIDs) != 0 {
		t.Errorf("label still present: %v", issue.LabelIDs)
	}
}

func TestCycles(t *testing.T) {
	store := seededStore(t)
	s := newTestServer(t, store)

	active := decode[map[string]any](t, mustCall(t, s, "linear_get_active_cycle", map[string]any{"teamKey": "ENG"}))
	if active["number"] != float64(2) || active["progress"] != "25%" {
		t.Errorf("unexpected active cycle %v", active)
	}
	if issues, _ := active["issues"].([]any); len(issues) != 4 {
		t.Errorf("expected 4 cycle issues, got %d", len(issues))
	}

	text := mustCall(t, s, "linear_create_cycle", map[string]any{
		"teamKey":  "OPS",
		"startsAt": time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
		"endsAt":   time.Now().AddDate(0, 0, 21).Format(time.RFC3339),
	})
	if text != "Created cycle 3 for team OPS" {
		t.Errorf("unexpected confirmation %q", text)
	}

	if text := mustCall(t, s, "linear_add_issue_to_cycle", map[string]any{"issueId": "OPS-3", "cycleNumber": float64(3)}); text != "Added issue OPS-3 to cycle 3" {
		t.Errorf("unexpected confirmation %q", text)
	}
	if text := mustCall(t, s, "linear_add_issue_to_cycle", map[string]any{"issueId": "ENG-4", "cycleNumber": float64(9)}); text != "Cycle 9 not found for team ENG" {
		t.Errorf("unexpected result %q", text)
	}

	cycles := decode[[]map[string]any](t, mustCall(t, s, "linear_list_cycles", map[string]any{"teamKey": "OPS"}))
	if len(cycles) != 3 {
		t.Errorf("expected 3 cycles, got %d", len(cycles))
	}
}

func TestNoActiveCycle(t *testing.T) {
	store := memory.New()
	store.AddTeam("NEW", "Newcomers", "")
	s := newTestServer(t, store)
	if text := mustCall(t, s, "linear_get_active_cycle", map[string]any{"teamKey": "new"}); text != "No active cycle found for team NEW" {
		t.Errorf("unexpected result %q", text)
	}
}

func TestCreateIssueRelation(t *testing.T) {
	store := seededStore(t)
	s := newTestServer(t, store)

	res := s.Call(context.Background(), "linear_create_issue_relation", map[string]any{"issueId": "ENG-1", "relatedIssueId": "ENG-2", "type": "causes"})
	if !res.IsError {
		t.Errorf("expected invalid type to fail, got %+v", res)
	}
	if text := mustCall(t, s, "linear_create_issue_relation", map[string]any{"issueId": "ENG-1", "relatedIssueId": "OPS-9", "type": "blocks"}); text != "Issue OPS-9 not found" {
		t.Errorf("unexpected result %q", text)
	}
	if len(store.Relations()) != 0 {
		t.Fatal("relation written despite missing issue")
	}

	text := mustCall(t, s, "linear_create_issue_relation", map[string]any{"issueId": "ENG-1", "relatedIssueId": "OPS-1", "type": "blocks"})
	if text != "Created relation: ENG-1 blocks OPS-1" || len(store.Relations()) != 1 {
		t.Errorf("unexpected result %q", text)
	}
}

func TestAddAttachmentDefaultsTitle(t *testing.T) {
	store := seededStore(t)
	s := newTestServer(t, store)

	text := mustCall(t, s, "linear_add_attachment", map[string]any{"issueId": "ENG-3", "url": "https://example.com/trace"})
	if text != "Added attachment https://example.com/trace to ENG-3" {
		t.Errorf("unexpected confirmation %q", text)
	}
	issue, _ := store.Issue(context.Background(), "ENG-3")
	if got := store.Attachments(issue.ID); len(got) != 1 || got[0].Title != "https://example.com/trace" {
		t.Errorf("unexpected attachments %+v", got)
	}
}

func TestWorkspaceTools(t *testing.T) {
	s := newTestServer(t, seededStore(t))

	if teams := decode[[]map[string]any](t, mustCall(t, s, "linear_list_teams", nil)); len(teams) != 2 {
		t.Errorf("expected 2 teams, got %d", len(teams))
	}
	user := decode[map[string]any](t, mustCall(t, s, "linear_get_user", map[string]any{"email": "Ada@Example.com"}))
	if teams, _ := user["teams"].([]any); len(teams) != 2 || teams[0] != "ENG" {
		t.Errorf("unexpected user teams %v", user["teams"])
	}
	if text := mustCall(t, s, "linear_get_user", map[string]any{"email": "nobody@example.com"}); text != "User nobody@example.com not found" {
		t.Errorf("unexpected result %q", text)
	}
	states := decode[[]map[string]any](t, mustCall(t, s, "linear_list_workflow_states", map[string]any{"teamKey": "ENG"}))
	if len(states) != 6 || states[0]["name"] != "Backlog" {
		t.Errorf("unexpected states %v", states)
	}
	if labels := decode[[]map[string]any](t, mustCall(t, s, "linear_list_labels", map[string]any{"teamKey": "OPS"})); len(labels) != 3 {
		t.Errorf("expected workspace plus OPS labels, got %d", len(labels))
	}
	if roadmaps := decode[[]map[string]any](t, mustCall(t, s, "linear_list_roadmaps", nil)); len(roadmaps) != 1 {
		t.Errorf("expected 1 roadmap, got %d", len(roadmaps))
	}
}

func TestCreateLabelInvalidatesCache(t *testing.T) {
	s := newTestServer(t, seededStore(t))

	if text := mustCall(t, s, "linear_add_label_to_issue", map[string]any{"issueId": "OPS-1", "labelName": "Security"}); text != "Label Security not found" {
		t.Fatalf("unexpected result %q", text)
	}
	if text := mustCall(t, s, "linear_create_label", map[string]any{"name": "Security", "teamKey": "OPS"}); text != "Created label Security" {
		t.Fatalf("unexpected confirmation %q", text)
	}
	if text := mustCall(t, s, "linear_add_label_to_issue", map[string]any{"issueId": "OPS-1", "labelName": "security"}); text != "Added label Security to OPS-1" {
		t.Errorf("unexpected result %q", text)
	}
	if text := mustCall(t, s, "linear_create_label", map[string]any{"name": "x", "teamKey": "NOPE"}); text != "Team NOPE not found" {
		t.Errorf("unexpected result %q", text)
	}
}

func TestIssueLifecycle(t *testing.T) {
	store := seededStore(t)
	s := newTestServer(t, store)
	ctx := context.Background()

	text := mustCall(t, s, "linear_update_issue", map[string]any{
		"issueId":       "eng-4",
		"status":        "in review",
		"assigneeEmail": "grace@example.com",
		"priority":      float64(1),
		"projectName":   "Nonexistent",
	})
	if text != "Updated issue ENG-4" {
		t.Fatalf("unexpected confirmation %q", text)
	}
	issue := decode[map[string]any](t, mustCall(t, s, "linear_get_issue", map[string]any{"issueId": "ENG-4"}))
	if issue["status"] != "In Review" || issue["assignee"] != "Grace Hopper" || issue["priority"] != "Urgent" || issue["project"] != "None" {
		t.Errorf("unexpected issue after update %v", issue)
	}

	if text := mustCall(t, s, "linear_add_comment", map[string]any{"issueId": "ENG-4", "body": "On it"}); text != "Added comment to ENG-4" {
		t.Errorf("unexpected confirmation %q", text)
	}
	comments, _ := store.IssueComments(ctx, "ENG-4")
	if len(comments) != 1 || comments[0].Body != "On it" {
		t.Errorf("unexpected comments %+v", comments)
	}

	found := decode[[]map[string]any](t, mustCall(t, s, "linear_search_issues", map[string]any{"query": "legacy export"}))
	if len(found) != 1 || found[0]["id"] != "ENG-4" {
		t.Errorf("unexpected search result %v", found)
	}

	if text := mustCall(t, s, "linear_delete_issue", map[string]any{"issueId": "ENG-4"}); text != "Deleted issue ENG-4" {
		t.Errorf("unexpected confirmation %q", text)
	}
	if text := mustCall(t, s, "linear_delete_issue", map[string]any{"issueId": "ENG-4"}); text != "Issue ENG-4 not found" {
		t.Errorf("unexpected result %q", text)
	}
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestServer(t, seededStore(t))

	projects := decode[[]map[string]any](t, mustCall(t, s, "linear_list_projects", map[string]any{"teamKey": "OPS"}))
	if len(projects) != 1 || projects[0]["name"] != "Q4 Platform" {
		t.Fatalf("unexpected projects %v", projects)
	}

	text := mustCall(t, s, "linear_update_project", map[string]any{"projectName": "q4 platform", "name": "Q1 Platform", "state": "paused"})
	if text != "Updated project Q1 Platform" {
		t.Errorf("unexpected confirmation %q", text)
	}
	if text := mustCall(t, s, "linear_get_project", map[string]any{"projectName": "Q4 Platform"}); text != "Project Q4 Platform not found" {
		t.Errorf("renamed project still resolves by its old name: %q", text)
	}
	detail := decode[map[string]any](t, mustCall(t, s, "linear_get_project", map[string]any{"projectName": "Q1 Platform"}))
	if detail["state"] != "paused" {
		t.Errorf("unexpected state %v", detail["state"])
	}

	if text := mustCall(t, s, "linear_delete_project", map[string]any{"projectName": "Q1 Platform"}); text != "Deleted project Q1 Platform" {
		t.Errorf("unexpected confirmation %q", text)
	}
	if text := mustCall(t, s, "linear_list_projects", nil); text != "[]" {
		t.Errorf("expected no projects, got %q", text)
	}
	issue := decode[map[string]any](t, mustCall(t, s, "linear_get_issue", map[string]any{"issueId": "ENG-1"}))
	if issue["project"] != "None" {
		t.Errorf("deleted project still linked: %v", issue["project"])
	}
}
