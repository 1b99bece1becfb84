// Package resolve turns the human references agents use (team keys, emails,
// project, label and status names) into Linear identifiers and composes issue
// filters from them.
package resolve

import (
	"context"
	"strings"

	"linear-mcp/internal/linear"

	"github.com/rs/zerolog/log"
)

// Resolver looks entities up by their human key. Every lookup is
// case-insensitive and, when several entities share a key, the first one in
// backend order wins.
type Resolver struct {
	api   linear.API
	cache *Cache
}

// New creates a resolver. A nil cache disables collection caching.
func New(api linear.API, cache *Cache) *Resolver {
	return &Resolver{api: api, cache: cache}
}

// Cache returns the collection cache so writers can invalidate it.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

func (r *Resolver) Teams(ctx context.Context) ([]linear.Team, error) {
	return load(ctx, r.cache, KindTeams, "", r.api.Teams)
}

func (r *Resolver) Users(ctx context.Context) ([]linear.User, error) {
	return load(ctx, r.cache, KindUsers, "", r.api.Users)
}

func (r *Resolver) Projects(ctx context.Context) ([]linear.Project, error) {
	return load(ctx, r.cache, KindProjects, "", func(ctx context.Context) ([]linear.Project, error) {
		return r.api.Projects(ctx, nil, 0)
	})
}

// Labels returns the labels visible to a team: its own plus workspace labels.
// An empty teamID lists every label.
func (r *Resolver) Labels(ctx context.Context, teamID string) ([]linear.Label, error) {
	return load(ctx, r.cache, KindLabels, teamID, func(ctx context.Context) ([]linear.Label, error) {
		return r.api.Labels(ctx, teamID)
	})
}

func (r *Resolver) States(ctx context.Context, teamID string) ([]linear.WorkflowState, error) {
	return load(ctx, r.cache, KindStates, teamID, func(ctx context.Context) ([]linear.WorkflowState, error) {
		return r.api.WorkflowStates(ctx, teamID)
	})
}

func (r *Resolver) Team(ctx context.Context, key string) (linear.Team, bool, error) {
	teams, err := r.Teams(ctx)
	if err != nil {
		return linear.Team{}, false, err
	}
	t, ok := first(teams, "team", key, func(t linear.Team) string { return t.Key })
	return t, ok, nil
}

func (r *Resolver) User(ctx context.Context, email string) (linear.User, bool, error) {
	users, err := r.Users(ctx)
	if err != nil {
		return linear.User{}, false, err
	}
	u, ok := first(users, "user", email, func(u linear.User) string { return u.Email })
	return u, ok, nil
}

func (r *Resolver) Project(ctx context.Context, name string) (linear.Project, bool, error) {
	projects, err := r.Projects(ctx)
	if err != nil {
		return linear.Project{}, false, err
	}
	p, ok := first(projects, "project", name, func(p linear.Project) string { return p.Name })
	return p, ok, nil
}

// Label resolves a label name within a team's scope; teamID may be empty.
func (r *Resolver) Label(ctx context.Context, name, teamID string) (linear.Label, bool, error) {
	labels, err := r.Labels(ctx, teamID)
	if err != nil {
		return linear.Label{}, false, err
	}
	l, ok := first(labels, "label", name, func(l linear.Label) string { return l.Name })
	return l, ok, nil
}

func (r *Resolver) State(ctx context.Context, teamID, name string) (linear.WorkflowState, bool, error) {
	states, err := r.States(ctx, teamID)
	if err != nil {
		return linear.WorkflowState{}, false, err
	}
	st, ok := first(states, "workflow state", name, func(st linear.WorkflowState) string { return st.Name })
	return st, ok, nil
}

func first[T any](items []T, kind, ref string, key func(T) string) (T, bool) {
	var (
		match T
		found bool
		count int
	)
	if ref == "" {
		return match, false
	}
	for _, item := range items {
		if !strings.EqualFold(key(item), ref) {
			continue
		}
		if !found {
			match, found = item, true
		}
		count++
	}
	if count > 1 {
		log.Warn().Str("kind", kind).Str("ref", ref).Int("matches", count).Msg("Ambiguous reference, using first match")
	}
	return match, found
}
