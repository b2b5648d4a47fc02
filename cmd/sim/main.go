package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

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

var participantKinds = []model.ModelKind{
	model.RandomForest,
	model.IsolationForest,
	model.NeuralNetwork,
	model.GradientBoosting,
	model.Svm,
}

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "agisfl-sim",
		Level: hclog.LevelFromString("DEBUG"),
	})

	numParticipants := 5
	rounds := 3
	strategyName := strategy.FedAvg_StrategyName
	if len(os.Args) >= 3 {
		numParticipants, _ = strconv.Atoi(os.Args[1])
		rounds, _ = strconv.Atoi(os.Args[2])
	}
	if len(os.Args) == 4 {
		strategyName = os.Args[3]
	}

	eventBus := events.NewEventBus()

	injector, err := privacy.NewNoiseInjector(common.DEFAULT_EPSILON, common.DEFAULT_DELTA, nil)
	if err != nil {
		logger.Error("Error creating noise injector", "error", err)
		return
	}
	fedProx, _ := strategy.NewFedProx(common.DEFAULT_PROXIMAL_MU)
	trimmedMean, _ := strategy.NewTrimmedMean(common.DEFAULT_TRIM_RATIO)
	strategies := []strategy.Strategy{
		strategy.NewFedAvg(),
		fedProx,
		trimmedMean,
		strategy.NewSecureAvg(injector, rand.NewSource(uint64(time.Now().UnixNano()))),
	}

	coord, err := coordinator.New(logger, eventBus, strategies, strategyName, common.DEFAULT_EPOCHS)
	if err != nil {
		logger.Error("Error creating coordinator", "error", err)
		return
	}

	generator := datagen.New(42)
	split := generator.SplitNonIID(generator.Generate(1000*numParticipants, 0.15), numParticipants)

	for i := 0; i < numParticipants; i++ {
		kind := participantKinds[i%len(participantKinds)]
		p, err := participant.New(fmt.Sprintf("participant_%03d", i+1), kind, common.DEFAULT_EPSILON, logger)
		if err != nil {
			logger.Error("Error creating participant", "error", err)
			return
		}
		p.AddData(split[i])

		if err := coord.Register(p); err != nil {
			logger.Error("Error registering participant", "error", err)
			return
		}
	}

	for i := 0; i < rounds; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		round, err := coord.RunRound(ctx)
		cancel()
		if err != nil {
			logger.Error("Round failed", "error", err)
			continue
		}
		logger.Info(fmt.Sprintf("Round %d: %d participants, %d samples, accuracy %.4f",
			round.Number, len(round.ParticipantIds), round.TotalSamples, round.Result.Accuracy))
	}

	evaluator := ensemble.NewEvaluator(coord, logger)
	testSamples := generator.Generate(500, 0.2)
	vectors := make([][]float64, len(testSamples))
	labels := make([]int, len(testSamples))
	for i, sample := range testSamples {
		vectors[i] = sample.Features
		labels[i] = sample.Label
	}

	if result := evaluator.Evaluate(vectors, labels); result != nil {
		logger.Info(fmt.Sprintf("Ensemble evaluation: accuracy %.4f, precision %.4f, recall %.4f, f1 %.4f",
			result.Accuracy, result.Precision, result.Recall, result.F1Score))
	}

	coord.Stop()
}
