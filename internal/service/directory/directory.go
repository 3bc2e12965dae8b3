// Package directory builds the candidate set for a dispatch attempt.
package directory

import (
	"context"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/geo"
	"dispatch-service/internal/logx"
	"dispatch-service/internal/pricing"
)

// Config carries the directory policy knobs.
type Config struct {
	// MaxRadiusKm excludes candidates farther than this from the origin.
	// Zero disables the radius cut (the ranker still applies its own).
	MaxRadiusKm float64
	// LocationFreshness excludes couriers whose last location update is
	// older than this. Zero accepts any non-null location.
	LocationFreshness time.Duration
}

// Directory queries eligible couriers and joins them with per-dispatch
// context: distance to the origin, active load, fee and ETA.
type Directory struct {
	source    courierSource
	estimator *pricing.Estimator
	cfg       Config
	logger    logx.Logger
	now       func() time.Time
}

// New creates a Directory.
func New(source courierSource, estimator *pricing.Estimator, cfg Config, logger logx.Logger) *Directory {
	return &Directory{
		source:    source,
		estimator: estimator,
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// FindEligible returns the candidates for an origin point. An empty result
// is a normal outcome, not an error: it means nobody can take the order
// right now.
func (d *Directory) FindEligible(ctx context.Context, origin geo.Point) ([]domain.Candidate, error) {
	couriers, err := d.source.ListEligible(ctx)
	if err != nil {
		return nil, err
	}
	if len(couriers) == 0 {
		return nil, nil
	}

	now := d.now()
	ids := make([]int64, 0, len(couriers))
	fresh := couriers[:0]
	for _, c := range couriers {
		if !c.LocationFresh(now, d.cfg.LocationFreshness) {
			continue
		}
		fresh = append(fresh, c)
		ids = append(ids, c.ID)
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	loads, err := d.source.CountActiveAssignments(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(fresh))
	for _, c := range fresh {
		dist := geo.Distance(origin, geo.Point{Lat: *c.Lat, Lng: *c.Lng})
		if d.cfg.MaxRadiusKm > 0 && dist > d.cfg.MaxRadiusKm {
			continue
		}
		fee, err := d.estimator.Fee(dist)
		if err != nil {
			return nil, err
		}
		eta, err := d.estimator.DurationMinutes(dist)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, domain.Candidate{
			Courier:           c,
			DistanceKm:        dist,
			ActiveAssignments: loads[c.ID],
			Fee:               fee,
			EtaMinutes:        eta,
		})
	}

	d.logger.Debug("candidate set built",
		logx.Int("eligible", len(couriers)),
		logx.Int("candidates", len(candidates)),
	)
	return candidates, nil
}
