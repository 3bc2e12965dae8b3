package directory

import (
	"context"

	"dispatch-service/internal/domain"
)

// courierSource is the store view the directory needs: the hard eligibility
// constraints are pushed into the query, the geo filters stay in-process.
type courierSource interface {
	ListEligible(ctx context.Context) ([]domain.Courier, error)
	CountActiveAssignments(ctx context.Context, courierIDs []int64) (map[int64]int, error)
}
