package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store  StorePinger
	schema SchemaChecker
}

// New creates a Service. schema can be nil.
func New(store StorePinger, schema SchemaChecker) *Service {
	return &Service{store: store, schema: schema}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
	} else {
		checks["store"] = CheckOK
	}

	if s.schema != nil {
		if err := s.schema.Refresh(ctx); err != nil {
			checks["mappings"] = CheckError
		} else {
			checks["mappings"] = CheckOK
		}
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}
	status := Healthy
	switch {
	case failed == len(checks) && failed > 0:
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
