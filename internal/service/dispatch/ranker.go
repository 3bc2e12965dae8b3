package dispatch

import (
	"sort"

	"dispatch-service/internal/domain"
)

// Ranker orders dispatch candidates best-first for the deterministic
// strategy: ascending distance, capped at a maximum radius. Ties break by
// ascending courier ID so a given candidate set always ranks the same way.
type Ranker struct {
	maxRadiusKm float64
}

// NewRanker creates a Ranker with the given radius cap in kilometers.
func NewRanker(maxRadiusKm float64) *Ranker {
	return &Ranker{maxRadiusKm: maxRadiusKm}
}

// MaxRadiusKm returns the configured radius cap.
func (r *Ranker) MaxRadiusKm() float64 { return r.maxRadiusKm }

// Rank returns the candidates within the radius, best-first. The input slice
// is not modified.
func (r *Ranker) Rank(candidates []domain.Candidate) []domain.Candidate {
	ranked := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.DistanceKm <= r.maxRadiusKm {
			ranked = append(ranked, c)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].DistanceKm != ranked[j].DistanceKm {
			return ranked[i].DistanceKm < ranked[j].DistanceKm
		}
		return ranked[i].Courier.ID < ranked[j].Courier.ID
	})

	return ranked
}
