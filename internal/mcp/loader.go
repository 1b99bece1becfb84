package mcp

import (
	"context"
	"errors"
	"sync"

	"linear-mcp/internal/format"
	"linear-mcp/internal/linear"
	"linear-mcp/internal/safe"

	"golang.org/x/sync/errgroup"
)

// fanOut bounds the number of concurrent backend reads one call may issue.
const fanOut = 8

// loader fetches related entities by id for the duration of a single tool
// call. Repeated requests for the same id share one backend read.
type loader struct {
	api      linear.API
	states   memo[linear.WorkflowState]
	users    memo[linear.User]
	teams    memo[linear.Team]
	projects memo[linear.Project]
}

func newLoader(api linear.API) *loader {
	return &loader{api: api}
}

type memo[T any] struct {
	mu    sync.Mutex
	calls map[string]*memoCall[T]
}

type memoCall[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// get returns nil for an empty id or an entity the backend no longer has.
func (m *memo[T]) get(ctx context.Context, id string, fetch func(context.Context, string) (T, error)) (*T, error) {
	if id == "" {
		return nil, nil
	}
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]*memoCall[T])
	}
	c, ok := m.calls[id]
	if !ok {
		c = &memoCall[T]{done: make(chan struct{})}
		m.calls[id] = c
		m.mu.Unlock()
		func() {
			defer close(c.done)
			defer safe.Recover(&c.err)
			c.val, c.err = fetch(ctx, id)
		}()
	} else {
		m.mu.Unlock()
		select {
		case <-c.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if errors.Is(c.err, linear.ErrNotFound) {
		return nil, nil
	}
	if c.err != nil {
		return nil, c.err
	}
	v := c.val
	return &v, nil
}

func (l *loader) state(ctx context.Context, id string) (*linear.WorkflowState, error) {
	return l.states.get(ctx, id, l.api.WorkflowState)
}

func (l *loader) user(ctx context.Context, id string) (*linear.User, error) {
	return l.users.get(ctx, id, l.api.User)
}

func (l *loader) team(ctx context.Context, id string) (*linear.Team, error) {
	return l.teams.get(ctx, id, l.api.Team)
}

func (l *loader) project(ctx context.Context, id string) (*linear.Project, error) {
	return l.projects.get(ctx, id, l.api.Project)
}

// issue formats one issue with its state, assignee and team.
func (l *loader) issue(ctx context.Context, issue linear.Issue) (format.Issue, error) {
	var (
		state    *linear.WorkflowState
		assignee *linear.User
		team     *linear.Team
	)
	g, ctx := errgroup.WithContext(ctx)
	safe.Go(g, func() (err error) {
		state, err = l.state(ctx, issue.StateID)
		return err
	})
	safe.Go(g, func() (err error) {
		assignee, err = l.user(ctx, issue.AssigneeID)
		return err
	})
	safe.Go(g, func() (err error) {
		team, err = l.team(ctx, issue.TeamID)
		return err
	})
	if err := g.Wait(); err != nil {
		return format.Issue{}, err
	}
	return format.FormatIssue(issue, state, assignee, team), nil
}

// issues formats a list concurrently, preserving order.
func (l *loader) issues(ctx context.Context, issues []linear.Issue) ([]format.Issue, error) {
	out := make([]format.Issue, len(issues))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOut)
	for i, issue := range issues {
		safe.Go(g, func() error {
			f, err := l.issue(ctx, issue)
			if err != nil {
				return err
			}
			out[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// teamList loads several teams, skipping ids the backend does not know.
func (l *loader) teamList(ctx context.Context, ids []string) ([]linear.Team, error) {
	found := make([]*linear.Team, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOut)
	for i, id := range ids {
		safe.Go(g, func() (err error) {
			found[i], err = l.team(ctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]linear.Team, 0, len(ids))
	for _, t := range found {
		if t != nil {
			out = append(out, *t)
		}
	}
	return out, nil
}
