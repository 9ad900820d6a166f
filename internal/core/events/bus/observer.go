package bus

import (
	"time"

	"github.com/zeusync/blastfield/internal/core/observability/log"
)

var _ EventBusObserver = (*LogObserver)(nil)

// LogObserver writes one debug line per delivery and a warning when handlers fail.
type LogObserver struct {
	logger log.Log
}

func NewLogObserver(logger log.Log) *LogObserver {
	return &LogObserver{logger: logger.With(log.String("component", "event_bus"))}
}

func (o *LogObserver) OnPublish(string, string, Event) {}

func (o *LogObserver) OnDelivered(topic, eventType string, handlers int, err error, duration time.Duration) {
	fields := []log.Field{
		log.String("topic", topic),
		log.String("event", eventType),
		log.Int("handlers", handlers),
		log.Duration("took", duration),
	}
	if err != nil {
		o.logger.Warn("event handlers failed", append(fields, log.Error(err))...)
		return
	}
	o.logger.Debug("event delivered", fields...)
}
