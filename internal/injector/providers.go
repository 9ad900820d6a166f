package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/blastfield/internal/config"
	"github.com/zeusync/blastfield/internal/core/observability/log"
	"github.com/zeusync/blastfield/internal/server"
)

// ServerSet provides a bridge server from a validated config.
var ServerSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	server.NewServer,
)

func ProvideLogger(cfg config.Config) *log.Logger {
	return log.New(cfg.LogLevel())
}
