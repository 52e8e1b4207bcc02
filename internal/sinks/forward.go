package sinks

import (
	"context"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

const (
	logMsgSinkPublishFailed = "snapshot sink publish failed"
	logMsgSnapshotForwarded = "snapshot forwarded"
	logAttrKind             = "kind"
	logAttrGeneration       = "generation"
	logAttrSink             = "sink"
	logAttrError            = "error"
)

// Subscriber is satisfied by every postgresengine.DataModel.
type Subscriber[T catalog.Entity] interface {
	Subscribe() (<-chan catalog.Snapshot[T], func())
}

// Forward subscribes to source and publishes every snapshot to all sinks until ctx is done.
// The logger may be nil.
func Forward[T catalog.Entity](ctx context.Context, source Subscriber[T], logger catalog.Logger, sinks ...Sink) {
	updates, cancel := source.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-updates:
			if !ok {
				return
			}

			publishAll(ctx, NewPayload(snapshot), logger, sinks)
		}
	}
}

func publishAll(ctx context.Context, payload Payload, logger catalog.Logger, sinks []Sink) {
	for _, sink := range sinks {
		if err := sink.Publish(ctx, payload); err != nil {
			if logger != nil {
				logger.Warn(logMsgSinkPublishFailed,
					logAttrSink, sinkName(sink),
					logAttrKind, payload.Kind,
					logAttrGeneration, payload.Generation,
					logAttrError, err.Error())
			}

			continue
		}

		if logger != nil {
			logger.Debug(logMsgSnapshotForwarded,
				logAttrSink, sinkName(sink),
				logAttrKind, payload.Kind,
				logAttrGeneration, payload.Generation)
		}
	}
}

func sinkName(sink Sink) string {
	if named, ok := sink.(interface{ Name() string }); ok {
		return named.Name()
	}

	return "unnamed"
}
