package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/exp/rand"

	"github.com/Abhishek-yadav04/AgisFL/internal/common"
	"github.com/Abhishek-yadav04/AgisFL/internal/datagen"
	"github.com/Abhishek-yadav04/AgisFL/internal/events"
	"github.com/Abhishek-yadav04/AgisFL/internal/flcore/coordinator"
	"github.com/Abhishek-yadav04/AgisFL/internal/flcore/ensemble"
	"github.com/Abhishek-yadav04/AgisFL/internal/flcore/participant"
	"github.com/Abhishek-yadav04/AgisFL/internal/flcore/privacy"
	"github.com/Abhishek-yadav04/AgisFL/internal/flcore/strategy"
	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

type federationRun struct {
	coordinator  *coordinator.Coordinator
	participants map[string]*participant.Participant
	evaluator    *ensemble.Evaluator
}

type Handler struct {
	logger   hclog.Logger
	eventBus *events.EventBus
	mu       sync.RWMutex
	runs     map[string]*federationRun
}

func NewHandler(logger hclog.Logger, eventBus *events.EventBus) *Handler {
	return &Handler{
		logger:   logger,
		eventBus: eventBus,
		runs:     map[string]*federationRun{},
	}
}

func (handler *Handler) StartFederation(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Add("Content-Type", "application/json")

	runId := uuid.New().String()

	request := &StartFederationRequest{}
	err := fromJSON(request, r.Body)
	if err != nil {
		handler.logger.Error("error starting federation", "error", err)
		rw.WriteHeader(http.StatusBadRequest)
		return
	}

	run, err := handler.buildRun(request)
	if err != nil {
		handler.logger.Error("error starting federation", "error", err)
		rw.WriteHeader(http.StatusBadRequest)
		toJSON(err.Error(), rw)
		return
	}

	handler.mu.Lock()
	handler.runs[runId] = run
	handler.mu.Unlock()

	handler.logger.Info(fmt.Sprintf("Starting federation with %d participants and strategy %s",
		len(request.Participants), request.Strategy))

	if request.RoundIntervalSeconds > 0 {
		interval := time.Duration(request.RoundIntervalSeconds) * time.Second
		if err := run.coordinator.StartContinuousRounds(interval); err != nil {
			handler.logger.Error("error starting federation", "error", err)
			rw.WriteHeader(http.StatusInternalServerError)
			return
		}
	}

	rw.WriteHeader(http.StatusOK)
	toJSON(runId, rw)
}

func (handler *Handler) StopFederation(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Add("Content-Type", "application/json")

	runId := getURLParameter(r, "runId")

	handler.logger.Info(fmt.Sprintf("Stopping federation with run ID: %s", runId))

	run := handler.run(runId)
	if run != nil {
		run.coordinator.Stop()
		rw.WriteHeader(http.StatusOK)
	} else {
		rw.WriteHeader(http.StatusBadRequest)
		toJSON("no run with the given ID", rw)
	}
}

func (handler *Handler) RunRound(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Add("Content-Type", "application/json")

	run := handler.run(getURLParameter(r, "runId"))
	if run == nil {
		rw.WriteHeader(http.StatusBadRequest)
		toJSON("no run with the given ID", rw)
		return
	}

	round, err := run.coordinator.RunRound(r.Context())
	if err != nil {
		rw.WriteHeader(http.StatusConflict)
		toJSON(err.Error(), rw)
		return
	}

	rw.WriteHeader(http.StatusOK)
	toJSON(round.Snapshot(run.coordinator.StrategyName()), rw)
}

func (handler *Handler) SetStrategy(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Add("Content-Type", "application/json")

	run := handler.run(getURLParameter(r, "runId"))
	if run == nil {
		rw.WriteHeader(http.StatusBadRequest)
		toJSON("no run with the given ID", rw)
		return
	}

	request := &SetStrategyRequest{}
	if err := fromJSON(request, r.Body); err != nil {
		rw.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := run.coordinator.SetStrategy(request.Strategy); err != nil {
		rw.WriteHeader(http.StatusBadRequest)
		toJSON(err.Error(), rw)
		return
	}

	rw.WriteHeader(http.StatusOK)
}

func (handler *Handler) AddData(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Add("Content-Type", "application/json")

	run := handler.run(getURLParameter(r, "runId"))
	if run == nil {
		rw.WriteHeader(http.StatusBadRequest)
		toJSON("no run with the given ID", rw)
		return
	}

	p := run.participants[getURLParameter(r, "participantId")]
	if p == nil {
		rw.WriteHeader(http.StatusBadRequest)
		toJSON("no participant with the given ID", rw)
		return
	}

	request := &AddDataRequest{}
	if err := fromJSON(request, r.Body); err != nil {
		rw.WriteHeader(http.StatusBadRequest)
		return
	}

	p.AddData(samplesFromRequest(request.Samples))
	rw.WriteHeader(http.StatusOK)
}

func (handler *Handler) GetMetrics(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Add("Content-Type", "application/json")

	run := handler.run(getURLParameter(r, "runId"))
	if run == nil {
		rw.WriteHeader(http.StatusBadRequest)
		toJSON("no run with the given ID", rw)
		return
	}

	rw.WriteHeader(http.StatusOK)
	toJSON(run.coordinator.Snapshot(), rw)
}

func (handler *Handler) GetHistory(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Add("Content-Type", "application/json")

	run := handler.run(getURLParameter(r, "runId"))
	if run == nil {
		rw.WriteHeader(http.StatusBadRequest)
		toJSON("no run with the given ID", rw)
		return
	}

	strategyName := run.coordinator.StrategyName()
	history := run.coordinator.History()
	snapshots := make([]model.RoundSnapshot, len(history))
	for i, round := range history {
		snapshots[i] = round.Snapshot(strategyName)
	}

	rw.WriteHeader(http.StatusOK)
	toJSON(snapshots, rw)
}

func (handler *Handler) Evaluate(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Add("Content-Type", "application/json")

	run := handler.run(getURLParameter(r, "runId"))
	if run == nil {
		rw.WriteHeader(http.StatusBadRequest)
		toJSON("no run with the given ID", rw)
		return
	}

	request := &EvaluateRequest{}
	if err := fromJSON(request, r.Body); err != nil {
		rw.WriteHeader(http.StatusBadRequest)
		return
	}

	vectors := make([][]float64, len(request.Samples))
	labels := make([]int, len(request.Samples))
	for i, sample := range request.Samples {
		vectors[i] = sample.Features
		if sample.Label != nil {
			labels[i] = *sample.Label
		}
	}

	result := run.evaluator.Evaluate(vectors, labels)
	if result == nil {
		rw.WriteHeader(http.StatusConflict)
		toJSON("no trained participants", rw)
		return
	}

	rw.WriteHeader(http.StatusOK)
	toJSON(result, rw)
}

// buildRun assembles a coordinator, its participants and an ensemble
// evaluator from the request. Optional synthetic seed data lets a run start
// training immediately without uploads.
func (handler *Handler) buildRun(request *StartFederationRequest) (*federationRun, error) {
	injector, err := privacy.NewNoiseInjector(common.DEFAULT_EPSILON, common.DEFAULT_DELTA, nil)
	if err != nil {
		return nil, err
	}

	strategies := []strategy.Strategy{
		strategy.NewFedAvg(),
		strategy.NewSecureAvg(injector, rand.NewSource(uint64(time.Now().UnixNano()))),
	}
	fedProx, err := strategy.NewFedProx(common.DEFAULT_PROXIMAL_MU)
	if err != nil {
		return nil, err
	}
	trimmedMean, err := strategy.NewTrimmedMean(common.DEFAULT_TRIM_RATIO)
	if err != nil {
		return nil, err
	}
	strategies = append(strategies, fedProx, trimmedMean)

	coord, err := coordinator.New(handler.logger, handler.eventBus, strategies, request.Strategy, request.Epochs)
	if err != nil {
		return nil, err
	}

	run := &federationRun{
		coordinator:  coord,
		participants: map[string]*participant.Participant{},
		evaluator:    ensemble.NewEvaluator(coord, handler.logger),
	}

	var generator *datagen.Generator
	if request.SamplesPerParticipant > 0 {
		generator = datagen.New(request.Seed)
	}

	for _, spec := range request.Participants {
		budget := spec.PrivacyBudget
		if budget == 0 {
			budget = common.DEFAULT_EPSILON
		}

		p, err := participant.New(spec.Id, spec.ModelKind, budget, handler.logger)
		if err != nil {
			return nil, err
		}
		if err := coord.Register(p); err != nil {
			return nil, err
		}
		if generator != nil {
			p.AddData(generator.Generate(request.SamplesPerParticipant, request.AnomalyRatio))
		}

		run.participants[spec.Id] = p
	}

	return run, nil
}

// HELPERS

func (handler *Handler) run(runId string) *federationRun {
	handler.mu.RLock()
	defer handler.mu.RUnlock()
	return handler.runs[runId]
}

func getURLParameter(r *http.Request, parameter string) string {
	vars := mux.Vars(r)
	id := vars[parameter]
	return id
}

func samplesFromRequest(data []SampleData) []model.Sample {
	samples := make([]model.Sample, len(data))
	for i, sample := range data {
		label := -1
		if sample.Label != nil {
			label = *sample.Label
		}
		samples[i] = model.Sample{Features: sample.Features, Label: label}
	}
	return samples
}
