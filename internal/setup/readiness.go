package setup

import (
	"context"
	"errors"

	"tonielib/internal/config"
	"tonielib/internal/teddycloud"
)

// Status is the setup-required verdict returned to the wizard UI.
type Status struct {
	SetupRequired bool   `json:"setup_required"`
	Reason        string `json:"reason,omitempty"`
}

// Settings is the read-only snapshot the readiness evaluator consumes. It is
// passed explicitly instead of being read from ambient state so the
// evaluation is testable with injected values. PlaceholderURL defaults to
// the factory placeholder when empty.
type Settings struct {
	ConfigExists   bool
	TeddyCloudURL  string
	PlaceholderURL string
}

// IsSetupRequired decides whether the first-run wizard has to be shown.
// Three gates apply in order, first match wins:
//
//  1. no persisted configuration file exists;
//  2. the configured server URL still carries the factory placeholder, in
//     which case a short probe decides between "not configured" (the
//     placeholder answered with a wrong status) and "cannot connect";
//  3. otherwise setup is complete.
//
// A configured (non-placeholder) URL is trusted without a network call.
func IsSetupRequired(ctx context.Context, settings Settings) Status {
	if !settings.ConfigExists {
		return Status{SetupRequired: true, Reason: "Configuration file not found"}
	}

	placeholder := settings.PlaceholderURL
	if placeholder == "" {
		placeholder = config.DefaultTeddyCloudURL
	}

	if settings.TeddyCloudURL == placeholder {
		client := teddycloud.NewClient(settings.TeddyCloudURL, ReadinessProbeTimeout)
		probeCtx, cancel := context.WithTimeout(ctx, ReadinessProbeTimeout)
		defer cancel()

		if err := client.Health(probeCtx); err != nil {
			var statusErr *teddycloud.StatusError
			if errors.As(err, &statusErr) {
				return Status{SetupRequired: true, Reason: "TeddyCloud connection not configured"}
			}
			return Status{SetupRequired: true, Reason: "Cannot connect to TeddyCloud"}
		}
	}

	return Status{}
}

// Evaluate loads the persisted configuration at configPath and runs the
// readiness gates against it. Every failure mode collapses into a
// setup-required verdict carrying the failure text: the status operation has
// no error channel, and ambiguity resolves toward running the wizard rather
// than silently proceeding unconfigured.
func Evaluate(ctx context.Context, configPath string) Status {
	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		return Status{SetupRequired: true, Reason: err.Error()}
	}
	return IsSetupRequired(ctx, Settings{
		ConfigExists:  exists,
		TeddyCloudURL: cfg.TeddyCloud.URL,
	})
}
