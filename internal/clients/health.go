package clients

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const probeTimeout = 2 * time.Second

// HealthProbe names an upstream and the path answering for its liveness.
type HealthProbe struct {
	Name   string
	Client *Client
	Path   string
}

type HealthResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"statusCode,omitempty"`
	LatencyMS  int64  `json:"latencyMs"`
	Error      string `json:"error,omitempty"`
}

func CheckHealth(ctx context.Context, probe HealthProbe) HealthResult {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	res := HealthResult{Name: probe.Name}

	resp, err := probe.Client.Do(ctx, http.MethodGet, probe.Path, nil, nil, nil)
	res.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	res.OK = resp.StatusCode >= 200 && resp.StatusCode < 300
	return res
}

// CheckAll runs every probe concurrently. Results keep the order of probes.
func CheckAll(ctx context.Context, probes []HealthProbe) (results []HealthResult, healthy bool) {
	results = make([]HealthResult, len(probes))

	var wg sync.WaitGroup
	wg.Add(len(probes))
	for i := range probes {
		go func() {
			defer wg.Done()
			results[i] = CheckHealth(ctx, probes[i])
		}()
	}
	wg.Wait()

	healthy = true
	for _, r := range results {
		healthy = healthy && r.OK
	}
	return results, healthy
}
