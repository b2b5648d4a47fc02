package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek-yadav04/AgisFL/internal/events"
	"github.com/Abhishek-yadav04/AgisFL/internal/flcore/strategy"
	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

func newTestRouter() *mux.Router {
	handler := NewHandler(hclog.NewNullLogger(), events.NewEventBus())

	router := mux.NewRouter()
	router.HandleFunc("/federation/start", handler.StartFederation).Methods("POST")
	router.HandleFunc("/federation/{runId}/round", handler.RunRound).Methods("POST")
	router.HandleFunc("/federation/{runId}/metrics", handler.GetMetrics).Methods("GET")
	return router
}

func startFederation(router *mux.Router) (string, int) {
	request := StartFederationRequest{
		Participants: []ParticipantSpec{
			{Id: "p1", ModelKind: model.NeuralNetwork},
			{Id: "p2", ModelKind: model.RandomForest},
		},
		Strategy:              strategy.FedAvg_StrategyName,
		SamplesPerParticipant: 50,
		AnomalyRatio:          0.3,
		Seed:                  1,
	}
	body, _ := json.Marshal(request)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/federation/start", bytes.NewReader(body)))

	var runId string
	_ = json.Unmarshal(recorder.Body.Bytes(), &runId)
	return runId, recorder.Code
}

func TestStartFederationReturnsRunId(t *testing.T) {
	router := newTestRouter()

	runId, code := startFederation(router)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, runId)
}

func TestGetMetricsUnknownRun(t *testing.T) {
	router := newTestRouter()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/federation/no-such-run/metrics", nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRunRoundOverHttp(t *testing.T) {
	router := newTestRouter()
	runId, code := startFederation(router)
	require.Equal(t, http.StatusOK, code)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/federation/"+runId+"/round", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var round model.RoundSnapshot
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &round))
	assert.Equal(t, int32(1), round.Round)
	assert.Equal(t, 2, round.ParticipantCount)
}

func TestConcurrentStartAndQuery(t *testing.T) {
	router := newTestRouter()
	runId, code := startFederation(router)
	require.Equal(t, http.StatusOK, code)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, code := startFederation(router)
				assert.Equal(t, http.StatusOK, code)
			} else {
				recorder := httptest.NewRecorder()
				router.ServeHTTP(recorder, httptest.NewRequest("GET", "/federation/"+runId+"/metrics", nil))
				assert.Equal(t, http.StatusOK, recorder.Code)
			}
		}(i)
	}
	wg.Wait()
}
