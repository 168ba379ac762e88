package kafka

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/oclem/tenderwise/internal/config"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
	"github.com/oclem/tenderwise/pkg/errors"
)

// RequestHandler processes one analysis request. Returning an error leaves
// the message uncommitted so it is redelivered.
type RequestHandler func(ctx context.Context, req AnalysisRequest) error

// Consumer reads analysis requests within a consumer group.
type Consumer struct {
	reader *kafkago.Reader
	log    logging.Logger
}

// NewConsumer builds a consumer on the request topic.
func NewConsumer(cfg config.KafkaConfig, log logging.Logger) *Consumer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Consumer{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers: cfg.Brokers,
			Topic:   cfg.RequestTopic,
			GroupID: cfg.ConsumerGroup,
		}),
		log: log.Named("kafka_consumer"),
	}
}

// Run consumes until ctx is cancelled. Malformed messages are committed and
// dropped; handler failures leave the message for redelivery.
func (c *Consumer) Run(ctx context.Context, handle RequestHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeQueueError, "fetching message")
		}

		var req AnalysisRequest
		if err := json.Unmarshal(msg.Value, &req); err != nil {
			c.log.Warn("dropping malformed analysis request",
				logging.String("key", string(msg.Key)),
				logging.Err(err),
			)
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return errors.Wrap(err, errors.ErrCodeQueueError, "committing message")
			}
			continue
		}

		if err := handle(ctx, req); err != nil {
			if errors.IsRetryable(err) {
				c.log.Warn("analysis request failed, leaving for redelivery",
					logging.String("request_id", req.RequestID),
					logging.Err(err),
				)
				continue
			}
			// Permanent failure, committing avoids a poison-message loop.
			c.log.Error("analysis request failed permanently",
				logging.String("request_id", req.RequestID),
				logging.Err(err),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return errors.Wrap(err, errors.ErrCodeQueueError, "committing message")
		}
	}
}

// Close shuts down the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
