package resolve

import (
	"context"
	"sync"

	"linear-mcp/internal/safe"

	"golang.org/x/sync/errgroup"
)

// FilterArgs are the optional issue filters a tool accepts. Zero values are
// ignored; cycle numbers start at 1.
type FilterArgs struct {
	TeamKey       string
	Status        string
	AssigneeEmail string
	AssigneeID    string
	ProjectName   string
	LabelName     string
	CycleNumber   int
}

// IssueFilter builds a conjunctive Linear IssueFilter. References that do
// not resolve are left out rather than reported. The label is resolved
// within the team when one is given.
func (r *Resolver) IssueFilter(ctx context.Context, args FilterArgs) (map[string]any, error) {
	var (
		mu     sync.Mutex
		filter = map[string]any{}
	)
	set := func(field string, clause map[string]any) {
		mu.Lock()
		filter[field] = clause
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)

	if args.TeamKey != "" || args.LabelName != "" {
		safe.Go(g, func() error {
			var teamID string
			if args.TeamKey != "" {
				team, ok, err := r.Team(ctx, args.TeamKey)
				if err != nil {
					return err
				}
				if ok {
					teamID = team.ID
					set("team", eq("id", team.ID))
				}
			}
			if args.LabelName != "" {
				label, ok, err := r.Label(ctx, args.LabelName, teamID)
				if err != nil {
					return err
				}
				if ok {
					set("labels", map[string]any{"some": eq("id", label.ID)})
				}
			}
			return nil
		})
	}

	switch {
	case args.AssigneeID != "":
		set("assignee", eq("id", args.AssigneeID))
	case args.AssigneeEmail != "":
		safe.Go(g, func() error {
			user, ok, err := r.User(ctx, args.AssigneeEmail)
			if err != nil {
				return err
			}
			if ok {
				set("assignee", eq("id", user.ID))
			}
			return nil
		})
	}

	if args.ProjectName != "" {
		safe.Go(g, func() error {
			project, ok, err := r.Project(ctx, args.ProjectName)
			if err != nil {
				return err
			}
			if ok {
				set("project", eq("id", project.ID))
			}
			return nil
		})
	}

	if args.Status != "" {
		set("state", map[string]any{"name": map[string]any{"eqIgnoreCase": args.Status}})
	}
	if args.CycleNumber > 0 {
		set("cycle", map[string]any{"number": map[string]any{"eq": args.CycleNumber}})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filter, nil
}

func eq(attr string, value any) map[string]any {
	return map[string]any{attr: map[string]any{"eq": value}}
}
