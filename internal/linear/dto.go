package linear

// GraphQL selections and node shapes. Nodes mirror the JSON returned by the
// API; the to* helpers flatten them into the package types.

const (
	teamFields    = `id key name description`
	userFields    = `id name displayName email active admin`
	stateFields   = `id name type color position team { id }`
	labelFields   = `id name color description team { id }`
	projectFields = `id name description state progress url startDate targetDate lead { id } teams { nodes { id } }`
	cycleFields   = `id number name startsAt endsAt progress isActive team { id }`
	issueFields   = `id identifier title description priority estimate url createdAt updatedAt
    team { id } state { id } assignee { id } project { id } cycle { id } labels { nodes { id } }`
	commentFields    = `id body createdAt`
	relationFields   = `id type issue { id } relatedIssue { id }`
	attachmentFields = `id title subtitle url`
	roadmapFields    = `id name description url createdAt`
)

type idRef struct {
	ID string `json:"id"`
}

func refID(r *idRef) string {
	if r == nil {
		return ""
	}
	return r.ID
}

type idNodes struct {
	Nodes []idRef `json:"nodes"`
}

func (n idNodes) ids() []string {
	out := make([]string, 0, len(n.Nodes))
	for _, node := range n.Nodes {
		out = append(out, node.ID)
	}
	return out
}

type teamNode struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toTeam(n teamNode) Team {
	return Team{ID: n.ID, Key: n.Key, Name: n.Name, Description: n.Description}
}

type userNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Active      bool   `json:"active"`
	Admin       bool   `json:"admin"`
}

func toUser(n userNode) User {
	return User{ID: n.ID, Name: n.Name, DisplayName: n.DisplayName, Email: n.Email, Active: n.Active, Admin: n.Admin}
}

type stateNode struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Color    string  `json:"color"`
	Position float64 `json:"position"`
	Team     *idRef  `json:"team"`
}

func toState(n stateNode) WorkflowState {
	return WorkflowState{ID: n.ID, Name: n.Name, Type: n.Type, Color: n.Color, Position: n.Position, TeamID: refID(n.Team)}
}

type labelNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
	Team        *idRef `json:"team"`
}

func toLabel(n labelNode) Label {
	return Label{ID: n.ID, Name: n.Name, Color: n.Color, Description: n.Description, TeamID: refID(n.Team)}
}

type projectNode struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	State       string  `json:"state"`
	Progress    float64 `json:"progress"`
	URL         string  `json:"url"`
	StartDate   string  `json:"startDate"`
	TargetDate  string  `json:"targetDate"`
	Lead        *idRef  `json:"lead"`
	Teams       idNodes `json:"teams"`
}

func toProject(n projectNode) Project {
	return Project{
		ID:          n.ID,
		Name:        n.Name,
		Description: n.Description,
		State:       n.State,
		Progress:    n.Progress,
		URL:         n.URL,
		StartDate:   n.StartDate,
		TargetDate:  n.TargetDate,
		LeadID:      refID(n.Lead),
		TeamIDs:     n.Teams.ids(),
	}
}

type cycleNode struct {
	ID       string  `json:"id"`
	Number   int     `json:"number"`
	Name     string  `json:"name"`
	StartsAt string  `json:"startsAt"`
	EndsAt   string  `json:"endsAt"`
	Progress float64 `json:"progress"`
	IsActive bool    `json:"isActive"`
	Team     *idRef  `json:"team"`
}

func toCycle(n cycleNode) Cycle {
	return Cycle{
		ID:       n.ID,
		Number:   n.Number,
		Name:     n.Name,
		StartsAt: n.StartsAt,
		EndsAt:   n.EndsAt,
		Progress: n.Progress,
		IsActive: n.IsActive,
		TeamID:   refID(n.Team),
	}
}

type issueNode struct {
	ID          string   `json:"id"`
	Identifier  string   `json:"identifier"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	Estimate    *float64 `json:"estimate"`
	URL         string   `json:"url"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	Team        *idRef   `json:"team"`
	State       *idRef   `json:"state"`
	Assignee    *idRef   `json:"assignee"`
	Project     *idRef   `json:"project"`
	Cycle       *idRef   `json:"cycle"`
	Labels      idNodes  `json:"labels"`
}

func toIssue(n issueNode) Issue {
	return Issue{
		ID:          n.ID,
		Identifier:  n.Identifier,
		Title:       n.Title,
		Description: n.Description,
		Priority:    n.Priority,
		Estimate:    n.Estimate,
		URL:         n.URL,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		TeamID:      refID(n.Team),
		StateID:     refID(n.State),
		AssigneeID:  refID(n.Assignee),
		ProjectID:   refID(n.Project),
		CycleID:     refID(n.Cycle),
		LabelIDs:    n.Labels.ids(),
	}
}

type commentNode struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

func toComment(n commentNode) Comment {
	return Comment{ID: n.ID, Body: n.Body, CreatedAt: n.CreatedAt}
}

type relationNode struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Issue        *idRef `json:"issue"`
	RelatedIssue *idRef `json:"relatedIssue"`
}

func toRelation(n relationNode) IssueRelation {
	return IssueRelation{ID: n.ID, Type: n.Type, IssueID: refID(n.Issue), RelatedIssueID: refID(n.RelatedIssue)}
}

type attachmentNode struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	URL      string `json:"url"`
}

func toAttachment(n attachmentNode) Attachment {
	return Attachment{ID: n.ID, Title: n.Title, Subtitle: n.Subtitle, URL: n.URL}
}

type roadmapNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	CreatedAt   string `json:"createdAt"`
}

func toRoadmap(n roadmapNode) Roadmap {
	return Roadmap{ID: n.ID, Name: n.Name, Description: n.Description, URL: n.URL, CreatedAt: n.CreatedAt}
}
