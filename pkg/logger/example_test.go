package logger_test

import (
	"log/slog"

	"github.com/soundprediction/hybridrag/pkg/logger"
)

func ExampleNewDefaultLogger() {
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Debug("Fan-out started", "channels", 6)
	log.Info("Retrieval complete", "results", 5) // green in terminal
	log.Warn("Channel degraded", "channel", "vector", "error", "timeout")
	log.Error("All retrieval channels failed")
}
