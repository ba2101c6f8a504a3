package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer is the subset of *kgo.Client used by KafkaPublisher.
type Producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// KafkaPublisher produces events asynchronously, keyed by SubjectIDHash so one
// subject's decisions stay ordered within a partition. Produce failures are
// logged and dropped.
type KafkaPublisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

type KafkaOption func(*KafkaPublisher)

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) {
		p.logger = logger
	}
}

// NewKafkaPublisher connects a franz-go client to brokers.
func NewKafkaPublisher(brokers []string, topic string, opts ...KafkaOption) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("audit: no kafka brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("audit: create kafka client: %w", err)
	}
	return newKafkaPublisher(client, topic, opts...), nil
}

func newKafkaPublisher(producer Producer, topic string, opts ...KafkaOption) *KafkaPublisher {
	p := &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	event = prepare(event)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("audit: encode event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.SubjectIDHash),
		Value: payload,
	}
	// the produce outlives the request
	p.producer.Produce(context.WithoutCancel(ctx), record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.WarnContext(ctx, "failed to publish audit event",
				"action", string(event.Action),
				"request_id", event.RequestID,
				"error", err,
			)
		}
	})
	return nil
}

// EnsureTopic creates the audit topic if it does not exist.
func (p *KafkaPublisher) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	client, ok := p.producer.(*kgo.Client)
	if !ok {
		return nil
	}
	resp, err := kadm.NewClient(client).CreateTopics(ctx, partitions, replication, nil, p.topic)
	if err != nil {
		return fmt.Errorf("audit: create topic: %w", err)
	}
	for _, t := range resp {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("audit: create topic %s: %w", t.Topic, t.Err)
		}
	}
	return nil
}

// Close waits for buffered records until ctx is done, then closes the client.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	err := p.producer.Flush(ctx)
	p.producer.Close()
	return err
}
