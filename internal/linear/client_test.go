package linear

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIURL: srv.URL, APIKey: "lin_api_test", Timeout: time.Second})
}

func decodeRequest(t *testing.T, r *http.Request) gqlRequest {
	t.Helper()
	var req gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	return req
}

func TestUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Viewer(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Teams(context.Background())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if !strings.Contains(err.Error(), "12") {
		t.Errorf("expected retry hint in error, got %q", err.Error())
	}
}

func TestAuthorizationHeader(t *testing.T) {
	var got string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"data":{"viewer":{"id":"u1","name":"Ada","email":"ada@example.com"}}}`)
	})
	client.apiKey = "Bearer lin_api_xyz"

	if _, err := client.Viewer(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "lin_api_xyz" {
		t.Errorf("expected bare API key, got %q", got)
	}
}

func TestIssueNotFoundMapsToSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errors":[{"message":"Entity not found: Issue","extensions":{"code":"INPUT_ERROR"}}],"data":null}`)
	})

	_, err := client.Issue(context.Background(), "ENG-404")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var gqlErr *GraphQLError
	if !errors.As(err, &gqlErr) {
		t.Fatalf("expected GraphQLError, got %T", err)
	}
}

func TestGraphQLErrorPrefersUserMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"Argument Validation Error","extensions":{"userPresentableMessage":"Title is too long"}}]}`)
	})

	_, err := client.CreateIssue(context.Background(), map[string]any{"title": "x"})
	if err == nil || err.Error() != "Title is too long" {
		t.Fatalf("unexpected error: %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("validation error must not look like not found")
	}
}

func TestCollectFollowsCursor(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		calls++
		if calls == 1 {
			if _, ok := req.Variables["after"]; ok {
				t.Errorf("first page must not send a cursor")
			}
			fmt.Fprint(w, `{"data":{"teams":{"nodes":[{"id":"t1","key":"ENG","name":"Engineering"}],"pageInfo":{"hasNextPage":true,"endCursor":"c1"}}}}`)
			return
		}
		if req.Variables["after"] != "c1" {
			t.Errorf("expected cursor c1, got %v", req.Variables["after"])
		}
		fmt.Fprint(w, `{"data":{"teams":{"nodes":[{"id":"t2","key":"OPS","name":"Operations"}],"pageInfo":{"hasNextPage":false,"endCursor":"c2"}}}}`)
	})

	teams, err := client.Teams(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(teams) != 2 || teams[1].Key != "OPS" {
		t.Fatalf("unexpected teams: %+v", teams)
	}
	if calls != 2 {
		t.Errorf("expected 2 requests, got %d", calls)
	}
}

func TestIssuesSendsFilterAndLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if req.Variables["first"] != float64(5) {
			t.Errorf("expected first=5, got %v", req.Variables["first"])
		}
		filter, ok := req.Variables["filter"].(map[string]any)
		if !ok || filter["team"] == nil {
			t.Errorf("expected team filter, got %v", req.Variables["filter"])
		}
		fmt.Fprint(w, `{"data":{"issues":{"nodes":[{
			"id":"i1","identifier":"ENG-1","title":"Fix bug","priority":2,"estimate":null,
			"team":{"id":"t1"},"state":{"id":"s1"},"assignee":null,"project":null,"cycle":null,
			"labels":{"nodes":[{"id":"l1"},{"id":"l2"}]}
		}],"pageInfo":{"hasNextPage":false,"endCursor":"c1"}}}}`)
	})

	filter := map[string]any{"team": map[string]any{"id": map[string]any{"eq": "t1"}}}
	issues, err := client.Issues(context.Background(), filter, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	got := issues[0]
	if got.TeamID != "t1" || got.StateID != "s1" || got.AssigneeID != "" || got.Estimate != nil {
		t.Errorf("unexpected relation ids: %+v", got)
	}
	if len(got.LabelIDs) != 2 {
		t.Errorf("expected 2 label ids, got %v", got.LabelIDs)
	}
}

func TestCreateIssueUnsuccessful(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"issueCreate":{"success":false,"issue":null}}}`)
	})

	if _, err := client.CreateIssue(context.Background(), map[string]any{"title": "x"}); err == nil {
		t.Fatal("expected error for unsuccessful mutation")
	}
}

func TestDeleteIssue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if !strings.Contains(req.Query, "issueDelete") || req.Variables["id"] != "i1" {
			t.Errorf("unexpected request: %+v", req)
		}
		fmt.Fprint(w, `{"data":{"issueDelete":{"success":true}}}`)
	})

	if err := client.DeleteIssue(context.Background(), "i1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.DeleteIssue(context.Background(), ""); err == nil {
		t.Error("expected error for empty id")
	}
}
