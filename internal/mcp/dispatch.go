package mcp

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"linear-mcp/internal/linear"
	"linear-mcp/internal/resolve"
	"linear-mcp/internal/safe"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// tool describes one catalogue entry. Run receives the decoded arguments and
// returns either a string, which is sent as-is, or a value rendered as JSON.
type tool struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	// Filters makes the dispatcher build an issue filter from the optional
	// teamKey, status, assigneeEmail, projectName, labelName and cycleNumber
	// arguments before Run.
	Filters bool
	// Invalidates lists the cached collections a successful Run may change.
	Invalidates []resolve.Kind
	Run         func(ctx context.Context, c *call) (any, error)
}

// call is the per-invocation state handed to a tool.
type call struct {
	args   args
	filter map[string]any
	load   *loader
}

// Result is the text returned to the agent for one tool call.
type Result struct {
	Text    string
	IsError bool
}

func errorResult(err error) Result {
	return Result{Text: "Error: " + err.Error(), IsError: true}
}

func unknownTool(name string) Result {
	return Result{Text: "Unknown tool: " + name}
}

// Call runs a tool by name. It never fails: errors and panics come back as
// an error result, misses on referenced entities as plain text.
func (s *Server) Call(ctx context.Context, name string, arguments map[string]any) (res Result) {
	t, ok := s.byName[name]
	if !ok {
		return unknownTool(name)
	}
	ctx, logger := callLogger(ctx, name)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Tool call panicked")
			res = errorResult(safe.Error(r))
		}
		logger.Debug().Dur("elapsed", time.Since(start)).Bool("isError", res.IsError).Msg("Tool call finished")
	}()

	if arguments == nil {
		arguments = map[string]any{}
	}
	data, err := s.run(ctx, t, args(arguments))
	if err != nil {
		logger.Warn().Err(err).Msg("Tool call failed")
		return errorResult(err)
	}
	text, err := formatResult(data)
	if err != nil {
		return errorResult(err)
	}
	return Result{Text: text}
}

func (s *Server) run(ctx context.Context, t *tool, a args) (any, error) {
	c := &call{args: a, load: newLoader(s.api)}
	if t.Filters {
		fa, err := filterArgs(a)
		if err != nil {
			return nil, err
		}
		if c.filter, err = s.resolver.IssueFilter(ctx, fa); err != nil {
			return nil, err
		}
	}

	data, err := t.Run(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(t.Invalidates) > 0 {
		s.resolver.Cache().Invalidate(t.Invalidates...)
	}
	return data, nil
}

func filterArgs(a args) (resolve.FilterArgs, error) {
	cycle, err := a.integer("cycleNumber", 0)
	if err != nil {
		return resolve.FilterArgs{}, err
	}
	return resolve.FilterArgs{
		TeamKey:       a.str("teamKey"),
		Status:        a.str("status"),
		AssigneeEmail: a.str("assigneeEmail"),
		ProjectName:   a.str("projectName"),
		LabelName:     a.str("labelName"),
		CycleNumber:   cycle,
	}, nil
}

// callLogger reuses a logger the transport attached to ctx, or starts a new
// trace for calls that did not come through it.
func callLogger(ctx context.Context, name string) (context.Context, *zerolog.Logger) {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return ctx, l
	}
	l := log.With().Str("trace", uuid.NewString()).Str("tool", name).Logger()
	return l.WithContext(ctx), &l
}

// lookupIssue maps a missing issue onto found == false.
func (s *Server) lookupIssue(ctx context.Context, id string) (linear.Issue, bool, error) {
	issue, err := s.api.Issue(ctx, id)
	if errors.Is(err, linear.ErrNotFound) {
		return linear.Issue{}, false, nil
	}
	if err != nil {
		return linear.Issue{}, false, err
	}
	return issue, true, nil
}

// requestID returns the id a create sends to the backend: the caller's
// requestId when given, so a retried call is rejected as a duplicate instead
// of creating a second entity, or a fresh one.
func (s *Server) requestID(a args) (string, error) {
	raw := a.str("requestId")
	if raw == "" {
		return s.newID(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("argument %q must be a UUID: %w", "requestId", err)
	}
	return id.String(), nil
}

func issueNotFound(id string) string {
	return fmt.Sprintf("Issue %s not found", id)
}

func teamNotFound(key string) string {
	return fmt.Sprintf("Team %s not found", key)
}
