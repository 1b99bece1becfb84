package mcp

import (
	"linear-mcp/internal/linear"
	"linear-mcp/internal/resolve"

	"github.com/google/jsonschema-go/jsonschema"
)

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	if props == nil {
		props = map[string]*jsonschema.Schema{}
	}
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func stringProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func intProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: desc}
}

func numberProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Description: desc}
}

func listProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Description: desc, Items: &jsonschema.Schema{Type: "string"}}
}

func enumProp(desc string, values ...string) *jsonschema.Schema {
	enum := make([]any, 0, len(values))
	for _, v := range values {
		enum = append(enum, v)
	}
	return &jsonschema.Schema{Type: "string", Description: desc, Enum: enum}
}

const (
	priorityDesc     = "Priority: 0=No priority, 1=Urgent, 2=High, 3=Normal, 4=Low"
	issueIDDesc      = "Issue identifier (e.g., 'ENG-123')"
	limitDesc        = "Maximum number of results (default: 20)"
	projectStateDesc = "Project state: planned, started, paused, completed, canceled or backlog"
	dateDesc         = "Date in YYYY-MM-DD format"
	requestIDDesc    = "Optional UUID identifying this create; reuse it when retrying so the request cannot create a duplicate"
)

func (s *Server) catalogue() []*tool {
	return []*tool{
		// Issues
		{
			Name:        "linear_list_issues",
			Description: "List issues from Linear with optional filters. Returns issue ID, title, status, assignee, and priority.",
			Schema: object(nil, map[string]*jsonschema.Schema{
				"teamKey":       stringProp("Team key (e.g., 'ENG')"),
				"status":        stringProp("Status name (e.g., 'In Progress', 'Todo', 'Done')"),
				"assigneeEmail": stringProp("Assignee email address"),
				"projectName":   stringProp("Project name"),
				"labelName":     stringProp("Label name"),
				"cycleNumber":   intProp("Cycle number within the team"),
				"limit":         intProp(limitDesc),
			}),
			Filters: true,
			Run:     s.listIssues,
		},
		{
			Name:        "linear_get_issue",
			Description: "Get detailed information about a specific Linear issue by its identifier (e.g., 'ENG-123'), including labels, project, estimate and comments.",
			Schema: object([]string{"issueId"}, map[string]*jsonschema.Schema{
				"issueId": stringProp(issueIDDesc),
			}),
			Run: s.getIssue,
		},
		{
			Name:        "linear_create_issue",
			Description: "Create a new issue in Linear. Unknown assignee, status, project or label references are ignored.",
			Schema: object([]string{"title", "teamKey"}, map[string]*jsonschema.Schema{
				"requestId":     stringProp(requestIDDesc),
				"title":         stringProp("Issue title"),
				"description":   stringProp("Issue description (markdown supported)"),
				"teamKey":       stringProp("Team key (e.g., 'ENG')"),
				"priority":      intProp(priorityDesc),
				"assigneeEmail": stringProp("Assignee email address"),
				"status":        stringProp("Initial status name (defaults to the team's backlog state)"),
				"projectName":   stringProp("Project to add the issue to"),
				"labelNames":    listProp("Label names to apply"),
				"estimate":      numberProp("Estimate in points"),
			}),
			Run: s.createIssue,
		},
		{
			Name:        "linear_update_issue",
			Description: "Update an existing Linear issue.",
			Schema: object([]string{"issueId"}, map[string]*jsonschema.Schema{
				"issueId":       stringProp(issueIDDesc),
				"title":         stringProp("New title"),
				"description":   stringProp("New description"),
				"status":        stringProp("New status name"),
				"priority":      intProp("New priority: 0=No priority, 1=Urgent, 2=High, 3=Normal, 4=Low"),
				"assigneeEmail": stringProp("New assignee email"),
				"projectName":   stringProp("Project to move the issue to"),
				"estimate":      numberProp("New estimate in points"),
			}),
			Run: s.updateIssue,
		},
		{
			Name:        "linear_delete_issue",
			Description: "Delete a Linear issue.",
			Schema: object([]string{"issueId"}, map[string]*jsonschema.Schema{
				"issueId": stringProp(issueIDDesc),
			}),
			Run: s.deleteIssue,
		},
		{
			Name:        "linear_add_comment",
			Description: "Add a comment to a Linear issue.",
			Schema: object([]string{"issueId", "body"}, map[string]*jsonschema.Schema{
				"requestId": stringProp(requestIDDesc),
				"issueId":   stringProp(issueIDDesc),
				"body":      stringProp("Comment text (markdown supported)"),
			}),
			Run: s.addComment,
		},
		{
			Name:        "linear_search_issues",
			Description: "Search issues by text query.",
			Schema: object([]string{"query"}, map[string]*jsonschema.Schema{
				"query": stringProp("Search query"),
				"limit": intProp(limitDesc),
			}),
			Run: s.searchIssues,
		},
		{
			Name:        "linear_get_my_issues",
			Description: "Get issues assigned to the authenticated user.",
			Schema: object(nil, map[string]*jsonschema.Schema{
				"status": stringProp("Filter by status name"),
				"limit":  intProp(limitDesc),
			}),
			Run: s.getMyIssues,
		},

		// Projects
		{
			Name:        "linear_list_projects",
			Description: "List projects in Linear, optionally limited to one team.",
			Schema: object(nil, map[string]*jsonschema.Schema{
				"teamKey": stringProp("Filter by team key"),
				"limit":   intProp(limitDesc),
			}),
			Run: s.listProjects,
		},
		{
			Name:        "linear_get_project",
			Description: "Get details of a project by name, including lead, teams and dates.",
			Schema: object([]string{"projectName"}, map[string]*jsonschema.Schema{
				"projectName": stringProp("Project name"),
			}),
			Run: s.getProject,
		},
		{
			Name:        "linear_create_project",
			Description: "Create a project shared by one or more teams.",
			Schema: object([]string{"name", "teamKeys"}, map[string]*jsonschema.Schema{
				"requestId":   stringProp(requestIDDesc),
				"name":        stringProp("Project name"),
				"teamKeys":    listProp("Keys of the teams working on the project"),
				"description": stringProp("Project description"),
				"state":       enumProp(projectStateDesc, "planned", "started", "paused", "completed", "canceled", "backlog"),
				"startDate":   stringProp(dateDesc),
				"targetDate":  stringProp(dateDesc),
				"leadEmail":   stringProp("Email of the project lead"),
			}),
			Invalidates: []resolve.Kind{resolve.KindProjects},
			Run:         s.createProject,
		},
		{
			Name:        "linear_update_project",
			Description: "Update a project identified by name.",
			Schema: object([]string{"projectName"}, map[string]*jsonschema.Schema{
				"projectName": stringProp("Current project name"),
				"name":        stringProp("New project name"),
				"description": stringProp("New description"),
				"state":       enumProp(projectStateDesc, "planned", "started", "paused", "completed", "canceled", "backlog"),
				"startDate":   stringProp(dateDesc),
				"targetDate":  stringProp(dateDesc),
				"leadEmail":   stringProp("Email of the new project lead"),
			}),
			Invalidates: []resolve.Kind{resolve.KindProjects},
			Run:         s.updateProject,
		},
		{
			Name:        "linear_delete_project",
			Description: "Delete a project identified by name.",
			Schema: object([]string{"projectName"}, map[string]*jsonschema.Schema{
				"projectName": stringProp("Project name"),
			}),
			Invalidates: []resolve.Kind{resolve.KindProjects},
			Run:         s.deleteProject,
		},

		// Cycles
		{
			Name:        "linear_list_cycles",
			Description: "List the cycles of a team.",
			Schema: object([]string{"teamKey"}, map[string]*jsonschema.Schema{
				"teamKey": stringProp("Team key"),
				"limit":   intProp("Maximum number of results (default: 10)"),
			}),
			Run: s.listCycles,
		},
		{
			Name:        "linear_get_active_cycle",
			Description: "Get the active cycle of a team together with its issues.",
			Schema: object([]string{"teamKey"}, map[string]*jsonschema.Schema{
				"teamKey": stringProp("Team key"),
			}),
			Run: s.getActiveCycle,
		},
		{
			Name:        "linear_create_cycle",
			Description: "Create a cycle for a team.",
			Schema: object([]string{"teamKey", "startsAt", "endsAt"}, map[string]*jsonschema.Schema{
				"teamKey":     stringProp("Team key"),
				"startsAt":    stringProp("Start date (YYYY-MM-DD or ISO 8601)"),
				"endsAt":      stringProp("End date (YYYY-MM-DD or ISO 8601)"),
				"name":        stringProp("Optional cycle name"),
				"description": stringProp("Optional cycle description"),
			}),
			Run: s.createCycle,
		},
		{
			Name:        "linear_add_issue_to_cycle",
			Description: "Add an issue to a cycle of its team.",
			Schema: object([]string{"issueId", "cycleNumber"}, map[string]*jsonschema.Schema{
				"issueId":     stringProp(issueIDDesc),
				"cycleNumber": intProp("Cycle number within the issue's team"),
			}),
			Run: s.addIssueToCycle,
		},

		// Labels
		{
			Name:        "linear_list_labels",
			Description: "List issue labels, optionally limited to a team and workspace labels.",
			Schema: object(nil, map[string]*jsonschema.Schema{
				"teamKey": stringProp("Team key"),
			}),
			Run: s.listLabels,
		},
		{
			Name:        "linear_create_label",
			Description: "Create an issue label, for a team or for the whole workspace.",
			Schema: object([]string{"name"}, map[string]*jsonschema.Schema{
				"requestId":   stringProp(requestIDDesc),
				"name":        stringProp("Label name"),
				"color":       stringProp("Hex color (e.g., '#eb5757')"),
				"description": stringProp("Label description"),
				"teamKey":     stringProp("Team key; omit for a workspace label"),
			}),
			Invalidates: []resolve.Kind{resolve.KindLabels},
			Run:         s.createLabel,
		},
		{
			Name:        "linear_add_label_to_issue",
			Description: "Add a label to an issue.",
			Schema: object([]string{"issueId", "labelName"}, map[string]*jsonschema.Schema{
				"issueId":   stringProp(issueIDDesc),
				"labelName": stringProp("Label name"),
			}),
			Run: s.addLabelToIssue,
		},
		{
			Name:        "linear_remove_label_from_issue",
			Description: "Remove a label from an issue.",
			Schema: object([]string{"issueId", "labelName"}, map[string]*jsonschema.Schema{
				"issueId":   stringProp(issueIDDesc),
				"labelName": stringProp("Label name"),
			}),
			Run: s.removeLabelFromIssue,
		},

		// Teams and users
		{
			Name:        "linear_list_teams",
			Description: "List all teams in the workspace.",
			Schema:      object(nil, nil),
			Run:         s.listTeams,
		},
		{
			Name:        "linear_list_users",
			Description: "List all users in the workspace.",
			Schema:      object(nil, nil),
			Run:         s.listUsers,
		},
		{
			Name:        "linear_get_user",
			Description: "Get a user by email, including the teams they belong to.",
			Schema: object([]string{"email"}, map[string]*jsonschema.Schema{
				"email": stringProp("User email address"),
			}),
			Run: s.getUser,
		},

		// Workflow states
		{
			Name:        "linear_list_workflow_states",
			Description: "List the workflow states of a team in board order.",
			Schema: object([]string{"teamKey"}, map[string]*jsonschema.Schema{
				"teamKey": stringProp("Team key"),
			}),
			Run: s.listWorkflowStates,
		},

		// Relations, roadmaps, attachments
		{
			Name:        "linear_create_issue_relation",
			Description: "Relate two issues.",
			Schema: object([]string{"issueId", "relatedIssueId", "type"}, map[string]*jsonschema.Schema{
				"issueId":        stringProp(issueIDDesc),
				"relatedIssueId": stringProp("Identifier of the related issue"),
				"type":           enumProp("Relation type", linear.RelationBlocks, linear.RelationDuplicate, linear.RelationRelated),
			}),
			Run: s.createIssueRelation,
		},
		{
			Name:        "linear_list_roadmaps",
			Description: "List roadmaps in the workspace.",
			Schema: object(nil, map[string]*jsonschema.Schema{
				"limit": intProp(limitDesc),
			}),
			Run: s.listRoadmaps,
		},
		{
			Name:        "linear_add_attachment",
			Description: "Attach a URL to an issue.",
			Schema: object([]string{"issueId", "url"}, map[string]*jsonschema.Schema{
				"requestId": stringProp(requestIDDesc),
				"issueId":   stringProp(issueIDDesc),
				"url":       stringProp("URL to attach"),
				"title":     stringProp("Attachment title (defaults to the URL)"),
				"subtitle":  stringProp("Attachment subtitle"),
			}),
			Run: s.addAttachment,
		},
	}
}
