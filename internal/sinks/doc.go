// Package sinks forwards published catalogue snapshots to external systems.
//
// Forward consumes a DataModel subscription and hands every snapshot to a set of sinks:
//   - KafkaNotifier announces each refresh (kind, generation, row count) on a topic
//   - RedisMirror stores the latest snapshot of each kind under a key with a TTL
//
// A sink failure is logged and never stops the forwarding loop.
package sinks
