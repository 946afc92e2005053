package info

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// checkSet is the group of checks behind one health route.
type checkSet struct {
	state   string
	timeout time.Duration
	checks  []ProbeFunc
}

type checkReport struct {
	Status  string   `json:"status"`
	Details []string `json:"details,omitempty"`
}

// run executes every check concurrently under one deadline. The failures are
// joined in registration order, so the report names each broken dependency.
func (cs checkSet) run(ctx context.Context) error {
	if len(cs.checks) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, cs.timeout)
	defer cancel()

	errs := make([]error, len(cs.checks))
	var wg sync.WaitGroup
	for i, check := range cs.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = cs.explain(check(ctx))
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (cs checkSet) explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w (no answer within %s)", err, cs.timeout)
	default:
		return err
	}
}

func compact(checks []ProbeFunc) []ProbeFunc {
	out := slices.DeleteFunc(slices.Clone(checks), func(c ProbeFunc) bool { return c == nil })
	if len(out) == 0 {
		return nil
	}
	return out
}
