package safe

import (
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestGoRecoversBranchPanic(t *testing.T) {
	var g errgroup.Group
	Go(&g, func() error {
		var m map[string]int
		m["x"] = 1
		return nil
	})
	Go(&g, func() error { return nil })

	err := g.Wait()
	if err == nil || err.Error() != "internal error: assignment to entry in nil map" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestGoKeepsReturnedError(t *testing.T) {
	want := errors.New("timeout")
	var g errgroup.Group
	Go(&g, func() error { return want })
	if err := g.Wait(); !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
}

func TestRecoverLeavesErrorAloneWithoutPanic(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		return errors.New("plain")
	}
	if err := run(); err == nil || err.Error() != "plain" {
		t.Errorf("unexpected error %v", err)
	}
}
