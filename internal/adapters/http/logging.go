package http

import "log/slog"

const serviceName = "M21-Priority-Engine"

func httpLogger() *slog.Logger {
	return slog.Default().With(
		"service", serviceName,
		"module", "http",
		"layer", "adapter",
	)
}
