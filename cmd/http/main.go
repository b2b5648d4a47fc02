package main

import (
	"io"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/Abhishek-yadav04/AgisFL/internal/events"
	"github.com/Abhishek-yadav04/AgisFL/internal/metrics"
	"github.com/Abhishek-yadav04/AgisFL/internal/server"
)

func main() {
	_ = os.Mkdir("log", 0777)
	logFile, err := os.OpenFile("log/run.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0777)
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			panic(err)
		}
	}()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "agisfl",
		Level:  hclog.LevelFromString("DEBUG"),
		Output: io.MultiWriter(os.Stdout, logFile),
	})

	eventBus := events.NewEventBus()

	collector := metrics.NewCollector(logger)
	collector.Listen(eventBus)

	handler := server.NewHandler(logger, eventBus)

	defaultRouter := mux.NewRouter()
	defaultRouter.HandleFunc("/federation/start", handler.StartFederation).Methods("POST")
	defaultRouter.HandleFunc("/federation/stop/{runId}", handler.StopFederation).Methods("POST")
	defaultRouter.HandleFunc("/federation/{runId}/round", handler.RunRound).Methods("POST")
	defaultRouter.HandleFunc("/federation/{runId}/strategy", handler.SetStrategy).Methods("PUT")
	defaultRouter.HandleFunc("/federation/{runId}/data/{participantId}", handler.AddData).Methods("POST")
	defaultRouter.HandleFunc("/federation/{runId}/metrics", handler.GetMetrics).Methods("GET")
	defaultRouter.HandleFunc("/federation/{runId}/history", handler.GetHistory).Methods("GET")
	defaultRouter.HandleFunc("/federation/{runId}/evaluate", handler.Evaluate).Methods("POST")
	defaultRouter.Handle("/metrics", collector.Handler()).Methods("GET")

	port := 8080
	if len(os.Args) == 2 {
		if parsed, err := strconv.Atoi(os.Args[1]); err == nil {
			port = parsed
		}
	}

	server.StartHttpServer(logger, port, defaultRouter)
}
