package usecase

import (
	"context"
	"time"

	"kondax-backend/pkg/logger"
)

// HealthProbe reports whether a dependency is reachable.
type HealthProbe func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	backend string
	probes  map[string]HealthProbe
}

// NewHealthUsecase reports the content backend name plus one entry per probe.
// Nil probes are reported as "disabled".
func NewHealthUsecase(contentBackend string, probes map[string]HealthProbe) HealthUsecase {
	return &healthUsecase{backend: contentBackend, probes: probes}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{
		"status":          "ok",
		"content_backend": u.backend,
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	for name, probe := range u.probes {
		if probe == nil {
			status[name] = "disabled"
			continue
		}
		if err := probe(ctx); err != nil {
			logger.Log.Warn("Health probe failed", "dependency", name, "error", err)
			status[name] = "down"
			status["status"] = "degraded"
			continue
		}
		status[name] = "up"
	}
	return status
}
