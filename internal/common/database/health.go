package database

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pinger is implemented by every client in this package.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check names a connection probed by the readiness endpoint.
type Check struct {
	Name   string
	Pinger Pinger
}

// CheckAll pings every connection concurrently. The result maps each failing
// check name to its error text and is empty when all succeed.
func CheckAll(ctx context.Context, checks []Check) map[string]string {
	errs := make([]error, len(checks))

	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			errs[i] = c.Pinger.Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	failed := make(map[string]string)
	for i, err := range errs {
		if err != nil {
			failed[checks[i].Name] = err.Error()
		}
	}
	return failed
}
