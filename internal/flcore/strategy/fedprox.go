package strategy

import (
	"fmt"

	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

// FedProx blends the weighted average toward a reference update (the first
// in the set) by the proximal coefficient mu: result = (1-mu)*avg + mu*ref.
// Larger mu biases the global model toward the reference participant,
// trading convergence speed for stability under heterogeneous data.
type FedProx struct {
	base *FedAvg
	mu   float64
}

func NewFedProx(mu float64) (*FedProx, error) {
	if mu <= 0 || mu >= 1 {
		return nil, fmt.Errorf("invalid proximal coefficient: mu must be in (0, 1), got %g", mu)
	}

	return &FedProx{
		base: NewFedAvg(),
		mu:   mu,
	}, nil
}

func (s *FedProx) Name() string {
	return FedProx_StrategyName
}

func (s *FedProx) Aggregate(updates []*model.Update) *model.Update {
	if len(updates) == 0 {
		return emptyUpdate()
	}

	averaged := s.base.Aggregate(updates)
	reference := updates[0]

	for key, vector := range averaged.Params {
		refVector := reference.Params[key]
		if len(refVector) != len(vector) {
			continue
		}
		for i := range vector {
			vector[i] = (1-s.mu)*vector[i] + s.mu*refVector[i]
		}
	}

	return averaged
}
