package common

// Local training
const MIN_TRAINING_SAMPLES = 10
const DEFAULT_EPOCHS = 1

// Differential privacy defaults
const DEFAULT_EPSILON = 1.0
const DEFAULT_DELTA = 1e-5
const AGGREGATION_SENSITIVITY = 0.1

// Aggregation defaults
const DEFAULT_PROXIMAL_MU = 0.1
const DEFAULT_TRIM_RATIO = 0.2

// Robustness analysis
const OUTLIER_SIGMA_THRESHOLD = 2.0
const MIN_UPDATES_FOR_ANALYSIS = 3

// Observability
const SNAPSHOT_RECENT_ROUNDS = 10

// Events
const ROUND_COMPLETED_EVENT_TYPE = "RoundCompleted"
const TRAINING_FINISHED_EVENT_TYPE = "TrainingFinished"
