// Package health verifies stack reachability through the edge proxy.
//
// Two probes run in order: the edge's own health endpoint, then the
// upstream health endpoint reached through the edge. The ordering is
// deliberate — it tells the operator whether a failure originates at the
// edge or propagates from upstream. The first failure aborts; nothing is
// retried.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// Probe stages, named in failures.
const (
	StageEdge     = "edge"
	StageUpstream = "upstream"
)

// Health endpoint paths, both served through the edge proxy.
const (
	edgePath     = "/health"
	upstreamPath = "/api/health"
)

// StageError reports which probe failed and why.
type StageError struct {
	Stage  string
	URL    string
	Status int // 0 when the connection itself failed
	Err    error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s health check failed: GET %s: %v", e.Stage, e.URL, e.Err)
	}
	return fmt.Sprintf("%s health check failed: GET %s: status %d", e.Stage, e.URL, e.Status)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Verifier probes the health endpoints at a resolved port.
type Verifier struct {
	Host   string
	Client *http.Client
	Log    *slog.Logger
}

// Verify runs the edge probe, then the upstream probe. Each must succeed
// before the next runs; the first failure is returned as a StageError.
func (v *Verifier) Verify(ctx context.Context, port int) error {
	probes := []struct {
		stage string
		path  string
	}{
		{StageEdge, edgePath},
		{StageUpstream, upstreamPath},
	}

	for _, probe := range probes {
		url := fmt.Sprintf("http://%s:%d%s", v.Host, port, probe.path)
		if err := v.get(ctx, probe.stage, url); err != nil {
			return err
		}
		v.Log.Debug("health check passed", "stage", probe.stage, "url", url)
	}
	return nil
}

// get performs one probe; any non-2xx status or connection failure fails it.
func (v *Verifier) get(ctx context.Context, stage, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &StageError{Stage: stage, URL: url, Err: err}
	}

	resp, err := v.Client.Do(req)
	if err != nil {
		return &StageError{Stage: stage, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StageError{Stage: stage, URL: url, Status: resp.StatusCode}
	}
	return nil
}
