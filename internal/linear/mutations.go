package linear

import (
	"context"
	"encoding/json"
	"fmt"
)

// mutate runs a create/update mutation whose payload is
// { success <entity> { ... } } and converts the returned entity.
func mutate[N any, T any](ctx context.Context, c *Client, op, query, entity string, vars map[string]any, conv func(N) T) (T, error) {
	var zero T
	var resp map[string]map[string]json.RawMessage
	if err := c.do(ctx, op, query, vars, &resp); err != nil {
		return zero, err
	}
	payload := resp[op]
	var success bool
	if raw, ok := payload["success"]; ok {
		_ = json.Unmarshal(raw, &success)
	}
	if !success {
		return zero, fmt.Errorf("%s was not successful", op)
	}
	raw, ok := payload[entity]
	if !ok || string(raw) == "null" {
		return zero, fmt.Errorf("%s returned no %s", op, entity)
	}
	var node N
	if err := json.Unmarshal(raw, &node); err != nil {
		return zero, fmt.Errorf("decode %s %s: %w", op, entity, err)
	}
	return conv(node), nil
}

func (c *Client) deleteEntity(ctx context.Context, op, id string) error {
	query := fmt.Sprintf(`mutation($id: String!) { %s(id: $id) { success } }`, op)
	var resp map[string]struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, op, query, map[string]any{"id": id}, &resp); err != nil {
		return err
	}
	if !resp[op].Success {
		return fmt.Errorf("%s was not successful", op)
	}
	return nil
}

func (c *Client) CreateIssue(ctx context.Context, input map[string]any) (Issue, error) {
	query := `mutation($input: IssueCreateInput!) {
  issueCreate(input: $input) { success issue { ` + issueFields + ` } }
}`
	return mutate(ctx, c, "issueCreate", query, "issue", map[string]any{"input": input}, toIssue)
}

func (c *Client) UpdateIssue(ctx context.Context, id string, input map[string]any) (Issue, error) {
	if err := requireID(id, "issue"); err != nil {
		return Issue{}, err
	}
	query := `mutation($id: String!, $input: IssueUpdateInput!) {
  issueUpdate(id: $id, input: $input) { success issue { ` + issueFields + ` } }
}`
	return mutate(ctx, c, "issueUpdate", query, "issue", map[string]any{"id": id, "input": input}, toIssue)
}

func (c *Client) DeleteIssue(ctx context.Context, id string) error {
	if err := requireID(id, "issue"); err != nil {
		return err
	}
	return c.deleteEntity(ctx, "issueDelete", id)
}

func (c *Client) CreateComment(ctx context.Context, input map[string]any) (Comment, error) {
	query := `mutation($input: CommentCreateInput!) {
  commentCreate(input: $input) { success comment { ` + commentFields + ` } }
}`
	return mutate(ctx, c, "commentCreate", query, "comment", map[string]any{"input": input}, toComment)
}

func (c *Client) CreateProject(ctx context.Context, input map[string]any) (Project, error) {
	query := `mutation($input: ProjectCreateInput!) {
  projectCreate(input: $input) { success project { ` + projectFields + ` } }
}`
	return mutate(ctx, c, "projectCreate", query, "project", map[string]any{"input": input}, toProject)
}

func (c *Client) UpdateProject(ctx context.Context, id string, input map[string]any) (Project, error) {
	if err := requireID(id, "project"); err != nil {
		return Project{}, err
	}
	query := `mutation($id: String!, $input: ProjectUpdateInput!) {
  projectUpdate(id: $id, input: $input) { success project { ` + projectFields + ` } }
}`
	return mutate(ctx, c, "projectUpdate", query, "project", map[string]any{"id": id, "input": input}, toProject)
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if err := requireID(id, "project"); err != nil {
		return err
	}
	return c.deleteEntity(ctx, "projectDelete", id)
}

func (c *Client) CreateCycle(ctx context.Context, input map[string]any) (Cycle, error) {
	query := `mutation($input: CycleCreateInput!) {
  cycleCreate(input: $input) { success cycle { ` + cycleFields + ` } }
}`
	return mutate(ctx, c, "cycleCreate", query, "cycle", map[string]any{"input": input}, toCycle)
}

func (c *Client) CreateLabel(ctx context.Context, input map[string]any) (Label, error) {
	query := `mutation($input: IssueLabelCreateInput!) {
  issueLabelCreate(input: $input) { success issueLabel { ` + labelFields + ` } }
}`
	return mutate(ctx, c, "issueLabelCreate", query, "issueLabel", map[string]any{"input": input}, toLabel)
}

func (c *Client) CreateIssueRelation(ctx context.Context, input map[string]any) (IssueRelation, error) {
	query := `mutation($input: IssueRelationCreateInput!) {
  issueRelationCreate(input: $input) { success issueRelation { ` + relationFields + ` } }
}`
	return mutate(ctx, c, "issueRelationCreate", query, "issueRelation", map[string]any{"input": input}, toRelation)
}

func (c *Client) CreateAttachment(ctx context.Context, input map[string]any) (Attachment, error) {
	query := `mutation($input: AttachmentCreateInput!) {
  attachmentCreate(input: $input) { success attachment { ` + attachmentFields + ` } }
}`
	return mutate(ctx, c, "attachmentCreate", query, "attachment", map[string]any{"input": input}, toAttachment)
}
