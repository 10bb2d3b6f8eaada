// Package kafka publishes audit events to a Kafka topic. The topic is
// the durable audit trail; downstream compliance consumers own reads,
// so ListBySession is not supported here.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	id "onboard/pkg/domain"
	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
)

const defaultTopic = "onboarding.audit"

// Store writes audit events to Kafka. Records are keyed by session ID so
// one session's trail stays ordered within a partition.
type Store struct {
	client *kgo.Client
	topic  string
}

// payload is the JSON shape published to the topic.
type payload struct {
	Timestamp  string  `json:"timestamp"`
	SessionID  string  `json:"session_id,omitempty"`
	ProducerID string  `json:"producer_id,omitempty"`
	Action     string  `json:"action"`
	Field      string  `json:"field,omitempty"`
	Detail     string  `json:"detail,omitempty"`
	RiskScore  float64 `json:"risk_score,omitempty"`
	RequestID  string  `json:"request_id,omitempty"`
	ClientIP   string  `json:"client_ip,omitempty"`
	UserAgent  string  `json:"user_agent,omitempty"`
}

// New connects to the brokers and ensures the audit topic exists.
func New(brokers []string, topic string) (*Store, error) {
	if topic == "" {
		topic = defaultTopic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopic(context.Background(), 3, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("create audit topic: %w", resp.Err)
	}

	return &Store{client: client, topic: topic}, nil
}

// Append publishes the event synchronously so a confirmed turn implies a
// persisted audit record.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	p := payload{
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Action:    string(event.Action),
		Field:     event.Field,
		Detail:    event.Detail,
		RiskScore: event.RiskScore,
		RequestID: event.RequestID,
		ClientIP:  event.ClientIP,
		UserAgent: event.UserAgent,
	}
	if !event.SessionID.IsNil() {
		p.SessionID = event.SessionID.String()
	}
	if !event.ProducerID.IsNil() {
		p.ProducerID = event.ProducerID.String()
	}

	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(p.SessionID),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit record: %w", err)
	}
	return nil
}

// ListBySession is not supported; reads belong to downstream consumers.
func (s *Store) ListBySession(ctx context.Context, sessionID id.SessionID) ([]audit.Event, error) {
	return nil, sentinel.ErrUnavailable
}

// Close flushes pending records and closes the client.
func (s *Store) Close() {
	_ = s.client.Flush(context.Background())
	s.client.Close()
}
