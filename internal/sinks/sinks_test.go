package sinks_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/sinks"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/wire"
	"github.com/AntonStoeckl/library-rental-catalog-go/testutil/helper"
)

var refreshedAt = time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC)

type messageWriterSpy struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (w *messageWriterSpy) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}

	w.messages = append(w.messages, msgs...)

	return nil
}

func (w *messageWriterSpy) Messages() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]kafka.Message(nil), w.messages...)
}

type keyValueStoreFake struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	failSet error
}

func newKeyValueStoreFake() *keyValueStoreFake {
	return &keyValueStoreFake{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *keyValueStoreFake) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSet != nil {
		return redis.NewStatusResult("", s.failSet)
	}

	s.values[key] = string(value.([]byte))
	s.ttls[key] = expiration

	return redis.NewStatusResult("OK", nil)
}

func (s *keyValueStoreFake) Get(_ context.Context, key string) *redis.StringCmd {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}

	return redis.NewStringResult(value, nil)
}

func bookSnapshot(generation uint64) catalog.Snapshot[catalog.Book] {
	return catalog.BuildSnapshot([]catalog.Book{
		{ISBN: 1, Title: "Learning Domain-Driven Design", RentalCostPerDay: decimal.RequireFromString("2")},
	}, generation, refreshedAt)
}

func Test_KafkaNotifier_ShouldPublishANotificationKeyedByKind(t *testing.T) {
	// setup
	writer := &messageWriterSpy{}
	notifier := sinks.NewKafkaNotifier(writer)

	// act
	err := notifier.Publish(context.Background(), sinks.NewPayload(bookSnapshot(3)))

	// assert
	require.NoError(t, err)
	messages := writer.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "book", string(messages[0].Key))
	assert.JSONEq(t, `{"kind":"book","generation":3,"refreshed_at":"2024-03-04T12:00:00Z","count":1}`, string(messages[0].Value))
	require.Len(t, messages[0].Headers, 1)
	assert.Equal(t, sinks.HeaderMessageID, messages[0].Headers[0].Key)
	assert.Len(t, messages[0].Headers[0].Value, 36)
}

func Test_KafkaNotifier_ShouldWrapWriterErrors(t *testing.T) {
	// setup
	errBroker := errors.New("broker unavailable")
	notifier := sinks.NewKafkaNotifier(&messageWriterSpy{err: errBroker})

	// act
	err := notifier.Publish(context.Background(), sinks.NewPayload(bookSnapshot(1)))

	// assert
	assert.ErrorIs(t, err, errBroker)
}

func Test_NewKafkaWriter_ShouldTargetTopic(t *testing.T) {
	writer := sinks.NewKafkaWriter([]string{"localhost:9092"}, "catalog-snapshots")

	assert.Equal(t, "catalog-snapshots", writer.Topic)
	assert.Equal(t, "localhost:9092", writer.Addr.String())
}

func Test_RedisMirror_ShouldStoreTheFullSnapshot(t *testing.T) {
	// setup
	store := newKeyValueStoreFake()
	mirror := sinks.NewRedisMirror(store, "catalog:", time.Minute)

	// act
	err := mirror.Publish(context.Background(), sinks.NewPayload(bookSnapshot(2)))

	// assert
	require.NoError(t, err)
	assert.Equal(t, time.Minute, store.ttls["catalog:book"])
	loaded, err := mirror.Load(context.Background(), "book")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), loaded.Generation)
	assert.Equal(t, 1, loaded.Count)
	assert.Contains(t, store.values["catalog:book"], `"rental_cost_per_day":"2.00"`)
}

func Test_RedisMirror_ShouldNotOverwriteANewerGeneration(t *testing.T) {
	// setup
	store := newKeyValueStoreFake()
	mirror := sinks.NewRedisMirror(store, "catalog:", 0)
	require.NoError(t, mirror.Publish(context.Background(), sinks.NewPayload(bookSnapshot(5))))

	// act
	err := mirror.Publish(context.Background(), sinks.NewPayload(bookSnapshot(4)))

	// assert
	require.NoError(t, err)
	loaded, _ := mirror.Load(context.Background(), "book")
	assert.Equal(t, uint64(5), loaded.Generation)
}

func Test_RedisMirror_Load_ShouldReportMissingKind(t *testing.T) {
	_, err := sinks.NewRedisMirror(newKeyValueStoreFake(), "catalog:", 0).Load(context.Background(), "order")

	assert.ErrorIs(t, err, sinks.ErrNotMirrored)
}

func Test_Forward_ShouldPublishEverySnapshotToAllSinks(t *testing.T) {
	// setup
	publisher := catalog.NewPublisher[catalog.Book]()
	writer := &messageWriterSpy{}
	store := newKeyValueStoreFake()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// act
	go func() {
		defer close(done)
		sinks.Forward[catalog.Book](ctx, publisher, nil,
			sinks.NewKafkaNotifier(writer), sinks.NewRedisMirror(store, "catalog:", 0))
	}()
	publisher.Publish(bookSnapshot(1))

	// assert
	assert.Eventually(t, func() bool { return len(writer.Messages()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, 0, publisher.SubscriberCount())
	assert.Contains(t, store.values, "catalog:book")
}

func Test_Forward_ShouldLogSinkFailuresAndContinue(t *testing.T) {
	// setup
	publisher := catalog.NewPublisher[catalog.Penalty]()
	logHandler := helper.NewLogHandlerSpy(false)
	store := newKeyValueStoreFake()
	store.failSet = errors.New("redis down")
	writer := &messageWriterSpy{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// act
	go sinks.Forward[catalog.Penalty](ctx, publisher, slog.New(logHandler),
		sinks.NewRedisMirror(store, "catalog:", 0), sinks.NewKafkaNotifier(writer))
	publisher.Publish(catalog.BuildSnapshot([]catalog.Penalty{{Name: "late"}}, 1, refreshedAt))

	// assert
	assert.Eventually(t, func() bool { return len(writer.Messages()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		return logHandler.HasWarnLogWithMessage("snapshot sink publish failed").
			WithStringAttr("sink", "redis").
			WithStringAttr("kind", "penalty").
			Assert()
	}, time.Second, 5*time.Millisecond)
}

func Test_NewPayload_ShouldEncodeWireItems(t *testing.T) {
	// act
	payload := sinks.NewPayload(bookSnapshot(1))

	// assert
	assert.Equal(t, "book", payload.Kind)
	assert.Equal(t, []wire.Book{{ISBN: 1, Title: "Learning Domain-Driven Design", DepositCost: "0.00", RentalCostPerDay: "2.00"}}, payload.Items)
	assert.Nil(t, payload.Notification().Items)
}
