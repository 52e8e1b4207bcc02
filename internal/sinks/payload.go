package sinks

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/wire"
)

// Payload is the sink representation of one snapshot.
type Payload struct {
	Kind        string    `json:"kind"`
	Generation  uint64    `json:"generation"`
	RefreshedAt time.Time `json:"refreshed_at"`
	Count       int       `json:"count"`
	Items       any       `json:"items,omitempty"`
}

// Sink receives every forwarded snapshot.
type Sink interface {
	Publish(ctx context.Context, payload Payload) error
}

// NewPayload converts a snapshot into its sink representation.
func NewPayload[T catalog.Entity](snapshot catalog.Snapshot[T]) Payload {
	return Payload{
		Kind:        snapshot.Kind().String(),
		Generation:  snapshot.Generation(),
		RefreshedAt: snapshot.RefreshedAt(),
		Count:       snapshot.Len(),
		Items:       wire.FromEntities(snapshot.Items()),
	}
}

// Notification drops the items, keeping only what a listener needs to decide whether to reload.
func (p Payload) Notification() Payload {
	p.Items = nil
	return p
}
