package config

// WorkerKeyStruct names the Redis lists consumed by background workers.
type WorkerKeyStruct struct {
	// StatisticsRefreshQueue holds ids of persons whose statistics must be recomputed.
	StatisticsRefreshQueue string
}

var WorkerKey = &WorkerKeyStruct{
	StatisticsRefreshQueue: "statistics_refresh_queue",
}
