package linear

// Team is a Linear team; Key is the short code used in issue identifiers.
type Team struct {
	ID          string
	Key         string
	Name        string
	Description string
}

type User struct {
	ID          string
	Name        string
	DisplayName string
	Email       string
	Active      bool
	Admin       bool
}

type WorkflowState struct {
	ID       string
	Name     string
	Type     string
	Color    string
	Position float64
	TeamID   string
}

// Label is an issue label. TeamID is empty for workspace-level labels.
type Label struct {
	ID          string
	Name        string
	Color       string
	Description string
	TeamID      string
}

type Project struct {
	ID          string
	Name        string
	Description string
	State       string
	Progress    float64
	URL         string
	StartDate   string
	TargetDate  string
	LeadID      string
	TeamIDs     []string
}

type Cycle struct {
	ID       string
	Number   int
	Name     string
	StartsAt string
	EndsAt   string
	Progress float64
	IsActive bool
	TeamID   string
}

// Issue holds the scalar fields of an issue plus the identifiers of its
// related entities. Related entities are fetched separately by the caller.
type Issue struct {
	ID          string
	Identifier  string
	Title       string
	Description string
	Priority    int
	Estimate    *float64
	URL         string
	CreatedAt   string
	UpdatedAt   string

	TeamID     string
	StateID    string
	AssigneeID string
	ProjectID  string
	CycleID    string
	LabelIDs   []string
}

type Comment struct {
	ID        string
	Body      string
	CreatedAt string
}

// Relation types accepted by issueRelationCreate.
const (
	RelationBlocks    = "blocks"
	RelationDuplicate = "duplicate"
	RelationRelated   = "related"
)

type IssueRelation struct {
	ID             string
	Type           string
	IssueID        string
	RelatedIssueID string
}

type Attachment struct {
	ID       string
	Title    string
	Subtitle string
	URL      string
}

type Roadmap struct {
	ID          string
	Name        string
	Description string
	URL         string
	CreatedAt   string
}
