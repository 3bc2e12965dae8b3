package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/logx"
)

// Strategy names accepted in assign requests.
const (
	StrategyNearest  = "nearest"
	StrategyWeighted = "weighted"
)

// Input is the context a strategy selects against.
type Input struct {
	Order           domain.Order
	Restaurant      domain.Restaurant
	Candidates      []domain.Candidate
	TodayOrderCount int
}

// Selection is a successful strategy pick. Strategies return (nil, nil) when
// no candidate qualifies: no eligible courier is a business outcome, not an
// error.
type Selection struct {
	Candidate  domain.Candidate
	EtaMinutes int
	Rationale  string
	Confidence *float64
}

// Strategy picks at most one courier from the candidate set.
type Strategy interface {
	Name() string
	Select(ctx context.Context, in Input) (*Selection, error)
}

// NearestAvailable deterministically picks the top-ranked candidate within
// the ranker's radius.
type NearestAvailable struct {
	ranker *Ranker
}

// NewNearestAvailable creates the deterministic strategy.
func NewNearestAvailable(r *Ranker) *NearestAvailable {
	return &NearestAvailable{ranker: r}
}

// Name implements Strategy.
func (s *NearestAvailable) Name() string { return StrategyNearest }

// Select implements Strategy.
func (s *NearestAvailable) Select(_ context.Context, in Input) (*Selection, error) {
	ranked := s.ranker.Rank(in.Candidates)
	if len(ranked) == 0 {
		return nil, nil
	}
	top := ranked[0]
	return &Selection{
		Candidate:  top,
		EtaMinutes: top.EtaMinutes,
		Rationale: fmt.Sprintf("nearest available courier, %.2f km from %s",
			top.DistanceKm, in.Restaurant.Name),
	}, nil
}

// WeightedDecision delegates the pick to an external decision oracle. The
// oracle call is bounded by a timeout; on timeout, transport error, malformed
// response or a courier ID outside the candidate set the strategy fails
// closed and reports no eligible courier.
type WeightedDecision struct {
	oracle   DecisionOracle
	timeout  time.Duration
	failures counter
	logger   logx.Logger
}

// NewWeightedDecision creates the oracle-backed strategy. failures may be nil.
func NewWeightedDecision(oracle DecisionOracle, timeout time.Duration, failures counter, logger logx.Logger) *WeightedDecision {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WeightedDecision{oracle: oracle, timeout: timeout, failures: failures, logger: logger}
}

// Name implements Strategy.
func (s *WeightedDecision) Name() string { return StrategyWeighted }

// Select implements Strategy.
func (s *WeightedDecision) Select(ctx context.Context, in Input) (*Selection, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	dec, err := s.oracle.Decide(ctx, buildDecisionRequest(in))
	if err != nil {
		s.failClosed("oracle call failed", in.Order.ID, logx.Any("err", err))
		return nil, nil
	}
	if dec == nil || dec.SelectedCourierID == nil {
		return nil, nil
	}
	if dec.Confidence < 0 || dec.Confidence > 1 {
		s.failClosed("oracle returned confidence out of range", in.Order.ID,
			logx.Float64("confidence", dec.Confidence))
		return nil, nil
	}

	cand, ok := findCandidate(in.Candidates, *dec.SelectedCourierID)
	if !ok {
		// The oracle named a courier we never offered it.
		s.failClosed("oracle selected unknown courier", in.Order.ID,
			logx.Int64("courier_id", *dec.SelectedCourierID))
		return nil, nil
	}

	eta := cand.EtaMinutes
	if dec.EtaMinutes != nil && *dec.EtaMinutes > 0 {
		eta = *dec.EtaMinutes
	}

	confidence := dec.Confidence
	return &Selection{
		Candidate:  cand,
		EtaMinutes: eta,
		Rationale:  formatRationale(dec),
		Confidence: &confidence,
	}, nil
}

func (s *WeightedDecision) failClosed(msg, orderID string, fields ...logx.Field) {
	if s.failures != nil {
		s.failures.Inc()
	}
	s.logger.Warn(msg, append(fields, logx.String("order_id", orderID))...)
}

func buildDecisionRequest(in Input) DecisionRequest {
	req := DecisionRequest{
		OrderID:         in.Order.ID,
		OrderTotal:      in.Order.Total,
		RestaurantID:    in.Restaurant.ID,
		RestaurantName:  in.Restaurant.Name,
		TodayOrderCount: in.TodayOrderCount,
		Candidates:      make([]DecisionCandidate, 0, len(in.Candidates)),
	}
	for _, c := range in.Candidates {
		req.Candidates = append(req.Candidates, DecisionCandidate{
			CourierID:         c.Courier.ID,
			DistanceKm:        c.DistanceKm,
			ActiveAssignments: c.ActiveAssignments,
			Rating:            c.Courier.Rating,
			TotalDeliveries:   c.Courier.TotalDeliveries,
			Vehicle:           string(c.Courier.Vehicle),
			EtaMinutes:        c.EtaMinutes,
			Fee:               c.Fee,
		})
	}
	return req
}

func findCandidate(candidates []domain.Candidate, courierID int64) (domain.Candidate, bool) {
	for _, c := range candidates {
		if c.Courier.ID == courierID {
			return c, true
		}
	}
	return domain.Candidate{}, false
}

func formatRationale(dec *Decision) string {
	rationale := strings.TrimSpace(dec.Reasoning)
	if rationale == "" {
		rationale = "selected by weighted decision"
	}
	if len(dec.Factors) > 0 {
		rationale += " [factors: " + strings.Join(dec.Factors, ", ") + "]"
	}
	return fmt.Sprintf("%s (confidence %.2f)", rationale, dec.Confidence)
}
