package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/oclem/tenderwise/internal/config"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
	"github.com/oclem/tenderwise/pkg/errors"
)

// Producer publishes analysis requests and completion events.
type Producer struct {
	requests  *kafkago.Writer
	completed *kafkago.Writer
	log       logging.Logger
}

// NewProducer builds a producer for the configured topics.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	writer := func(topic string) *kafkago.Writer {
		return &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		}
	}
	return &Producer{
		requests:  writer(cfg.RequestTopic),
		completed: writer(cfg.CompletedTopic),
		log:       log.Named("kafka_producer"),
	}
}

// EnqueueAnalysis publishes an analysis request keyed by request id.
func (p *Producer) EnqueueAnalysis(ctx context.Context, req AnalysisRequest) error {
	return p.publish(ctx, p.requests, req.RequestID, req)
}

// AnalysisCompleted publishes a completion event. Satisfies the analysis
// service's CompletionNotifier port.
func (p *Producer) AnalysisCompleted(ctx context.Context, reportID, sourceURL string) error {
	return p.publish(ctx, p.completed, reportID, AnalysisCompleted{
		ReportID:    reportID,
		NoticeURL:   sourceURL,
		CompletedAt: time.Now().UTC(),
	})
}

func (p *Producer) publish(ctx context.Context, w *kafkago.Writer, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding message")
	}
	if err := w.WriteMessages(ctx, kafkago.Message{Key: []byte(key), Value: data}); err != nil {
		return errors.Wrap(err, errors.ErrCodeQueueError, "publishing message")
	}
	p.log.Debug("message published", logging.String("topic", w.Topic), logging.String("key", key))
	return nil
}

// Close flushes and closes both writers.
func (p *Producer) Close() error {
	err1 := p.requests.Close()
	err2 := p.completed.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
