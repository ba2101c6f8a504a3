package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeProducer struct {
	mu       sync.Mutex
	records  []*kgo.Record
	err      error
	flushed  bool
	closed   bool
	ctxAlive bool
}

func (f *fakeProducer) Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.mu.Lock()
	f.records = append(f.records, r)
	f.ctxAlive = ctx.Err() == nil
	f.mu.Unlock()
	promise(r, f.err)
}

func (f *fakeProducer) Flush(context.Context) error {
	f.flushed = true
	return nil
}

func (f *fakeProducer) Close() { f.closed = true }

func TestActionCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, ActionDecisionMade.Category())
	assert.Equal(t, CategoryOperations, Action("something_else").Category())
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := p.Emit(context.Background(), Event{
		Action:        ActionDecisionMade,
		Strategy:      "policy",
		Decision:      "deny",
		Reason:        "CPF not found",
		SubjectIDHash: "abc123",
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit event", line["msg"])
	assert.Equal(t, "compliance", line["category"])
	assert.Equal(t, "abc123", line["subject_id_hash"])
	assert.Equal(t, "CPF not found", line["reason"])
}

func TestKafkaPublisher(t *testing.T) {
	t.Run("produces keyed json record", func(t *testing.T) {
		fp := &fakeProducer{}
		p := newKafkaPublisher(fp, "cpfgate.decisions")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, p.Emit(ctx, Event{Action: ActionDecisionMade, SubjectIDHash: "hash", Decision: "issue", Customer: true}))

		require.Len(t, fp.records, 1)
		rec := fp.records[0]
		assert.Equal(t, "cpfgate.decisions", rec.Topic)
		assert.Equal(t, []byte("hash"), rec.Key)
		assert.True(t, fp.ctxAlive)

		var ev Event
		require.NoError(t, json.Unmarshal(rec.Value, &ev))
		assert.Equal(t, ActionDecisionMade, ev.Action)
		assert.Equal(t, CategoryCompliance, ev.Category)
		assert.True(t, ev.Customer)
		assert.False(t, ev.Timestamp.IsZero())
	})

	t.Run("produce failure is logged not returned", func(t *testing.T) {
		var buf bytes.Buffer
		fp := &fakeProducer{err: errors.New("broker down")}
		p := newKafkaPublisher(fp, "t", WithKafkaLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

		assert.NoError(t, p.Emit(context.Background(), Event{Action: ActionDecisionMade}))
		assert.Contains(t, buf.String(), "failed to publish audit event")
	})

	t.Run("close flushes", func(t *testing.T) {
		fp := &fakeProducer{}
		p := newKafkaPublisher(fp, "t")
		require.NoError(t, p.Close(context.Background()))
		assert.True(t, fp.flushed)
		assert.True(t, fp.closed)
	})

	t.Run("no brokers", func(t *testing.T) {
		_, err := NewKafkaPublisher(nil, "t")
		assert.Error(t, err)
	})
}
