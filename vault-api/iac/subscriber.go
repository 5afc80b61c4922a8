package iac

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaSubscriber struct {
	reader *kafka.Reader
}

// NewKafkaSubscriber reads the event topic from the first offset under groupID.
func NewKafkaSubscriber(brokers []string, topic string, groupID string) *KafkaSubscriber {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		CommitInterval: 1 * time.Second,
		GroupID:        groupID,
		StartOffset:    kafka.FirstOffset,
	})
	return &KafkaSubscriber{reader: reader}
}

// Subscribe calls callback for each event until ctx is done.
func (k *KafkaSubscriber) Subscribe(ctx context.Context, callback func(event Event)) error {
	defer k.reader.Close()
	for {
		msg, err := k.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			zap.L().Error("read message failed", zap.Error(err))
			continue
		}
		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			zap.L().Warn("skip malformed event", zap.ByteString("key", msg.Key), zap.Error(err))
			continue
		}
		callback(event)
	}
}
