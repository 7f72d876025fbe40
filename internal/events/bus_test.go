package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/db/memdb"
	"github.com/noah-isme/ecom-api/internal/events"
	"github.com/noah-isme/ecom-api/internal/obs"
)

type captureNotifier struct {
	events []dbgen.DomainEvent
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event dbgen.DomainEvent) error {
	c.events = append(c.events, event)
	return c.err
}

type captureWriter struct {
	msgs []kafka.Message
}

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	c.msgs = append(c.msgs, msgs...)
	return nil
}

func TestEmitPersistsEvent(t *testing.T) {
	store := memdb.New()
	notifier := &captureNotifier{}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	event, err := bus.Emit(context.Background(), events.TopicOrderCreated, 123, map[string]any{"orderId": "123"})
	require.NoError(t, err)
	require.Equal(t, events.TopicOrderCreated, event.Topic)
	require.JSONEq(t, `{"orderId":"123"}`, string(event.Payload))
	require.Len(t, store.Events(), 1)
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, notifier.events[0].ID)
}

func TestEmitRejectsInvalidInput(t *testing.T) {
	bus := events.Bus{Store: memdb.New()}
	_, err := bus.Emit(context.Background(), " ", 1, nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicOrderPaid, 0, nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicOrderPaid, 1, []byte("{not json"))
	require.Error(t, err)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	store := memdb.New()
	failing := &captureNotifier{err: errors.New("broker down")}
	healthy := &captureNotifier{}
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{failing, healthy}}

	event, err := bus.Emit(context.Background(), events.TopicPaymentFailed, 9, nil)
	require.Error(t, err)
	require.NotZero(t, event.ID)
	require.Len(t, healthy.events, 1)
	require.Len(t, store.Events(), 1)
}

func TestKafkaNotifierKeysByAggregate(t *testing.T) {
	writer := &captureWriter{}
	bus := events.Bus{Store: memdb.New(), Notifiers: []events.Notifier{events.KafkaNotifier{Writer: writer}}}

	_, err := bus.Emit(context.Background(), events.TopicOrderPaid, 42, map[string]string{"status": "paid"})
	require.NoError(t, err)
	require.Len(t, writer.msgs, 1)
	require.Equal(t, "order-42", string(writer.msgs[0].Key))

	var env events.Envelope
	require.NoError(t, json.Unmarshal(writer.msgs[0].Value, &env))
	require.Equal(t, events.TopicOrderPaid, env.Topic)
	require.Equal(t, "42", env.AggregateID)
	require.JSONEq(t, `{"status":"paid"}`, string(env.Payload))
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	bus := events.Bus{Store: memdb.New(), Notifiers: []events.Notifier{events.LogNotifier{Logger: obs.NewLoggerTo(&buf, "json", "info")}}}
	_, err := bus.Emit(context.Background(), events.TopicOrderCreated, 5, nil)
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"topic":"order.created"`)
}
