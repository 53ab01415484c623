package kafka

import (
	"context"

	"github.com/LavaJover/shvark-rotation-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type DefaultKafkaSubscriber struct {
	brokers []string
}

func NewDefaultKafkaSubscriber(brokers []string) *DefaultKafkaSubscriber {
	return &DefaultKafkaSubscriber{brokers: brokers}
}

// messageReader is the slice of kafka.Reader the pump loop needs
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Subscribe consumes topic within the consumer group and delivers messages
// on the returned channel. The channel is closed and the underlying reader
// released when ctx is cancelled or the reader fails
func (k *DefaultKafkaSubscriber) Subscribe(ctx context.Context, topic, groupID string) (<-chan domain.Message, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: k.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	out := make(chan domain.Message)
	go pump(ctx, reader, out)
	return out, nil
}

func pump(ctx context.Context, reader messageReader, out chan<- domain.Message) {
	defer close(out)
	defer reader.Close()
	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			// ReadMessage returns ctx.Err() on cancellation, so shutdown
			// lands here as well
			return
		}
		select {
		case <-ctx.Done():
			return
		case out <- domain.Message{Key: m.Key, Value: m.Value}:
		}
	}
}
