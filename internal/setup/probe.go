package setup

import (
	"context"
	"time"

	"tonielib/internal/teddycloud"
)

// Probe timeouts by caller context: readiness checks keep the short bound so
// status requests stay snappy; explicit user-initiated tests get the longer
// one.
const (
	ReadinessProbeTimeout = 5 * time.Second
	TestProbeTimeout      = 10 * time.Second
)

// ProbeResult is the verdict of a TeddyCloud connection test.
type ProbeResult struct {
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
	Version string           `json:"version,omitempty"`
	Boxes   []teddycloud.Box `json:"boxes"`
}

// Probe tests connectivity to a TeddyCloud server at baseURL. The result is
// always well-formed: transport faults and bad statuses land in the Error
// field, never in a returned error. When the primary check succeeds, the
// device list is fetched best-effort; its failure leaves Boxes empty without
// downgrading Success.
func Probe(ctx context.Context, baseURL string, timeout time.Duration) ProbeResult {
	result := ProbeResult{Boxes: []teddycloud.Box{}}

	client := teddycloud.NewClient(baseURL, timeout)

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Health(probeCtx); err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true

	if boxes, err := client.Boxes(probeCtx); err == nil {
		result.Boxes = boxes
	}
	return result
}
