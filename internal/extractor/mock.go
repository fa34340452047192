package extractor

import (
	"context"
	"time"

	"tubegrab/internal/consts"
)

const mockSteps = 10

// Mock is a test extractor. Probe returns the configured manifest or error;
// Fetch simulates a transfer by ticking progress up to 100%.
type Mock struct {
	Manifest *Manifest
	ProbeErr error
	FetchErr error

	// SimulateTime is the total duration of a simulated transfer.
	// Defaults to consts.DefaultSimulateTime.
	SimulateTime time.Duration

	// FetchedRequests records every request passed to Fetch.
	FetchedRequests []FetchRequest
	ProbedURLs      []string
}

var _ Extractor = (*Mock)(nil)

func (m *Mock) Probe(_ context.Context, url string) (*Manifest, error) {
	m.ProbedURLs = append(m.ProbedURLs, url)

	if m.ProbeErr != nil {
		return nil, m.ProbeErr
	}

	return m.Manifest, nil
}

func (m *Mock) Fetch(ctx context.Context, req FetchRequest, progressFn ProgressFunc) error {
	m.FetchedRequests = append(m.FetchedRequests, req)

	if m.FetchErr != nil {
		return m.FetchErr
	}

	duration := m.SimulateTime
	if duration <= 0 {
		duration = consts.DefaultSimulateTime
	}

	ticker := time.NewTicker(duration / mockSteps)
	defer ticker.Stop()

	for step := 1; step <= mockSteps; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if progressFn != nil {
				progressFn(Progress{
					DownloadedBytes: step * (consts.FullProgress / mockSteps),
					TotalBytes:      consts.FullProgress,
				})
			}
		}
	}

	return nil
}
