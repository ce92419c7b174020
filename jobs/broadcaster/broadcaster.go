// Package broadcaster drains the trade journal's undelivered records into
// a Kafka topic. Delivery is at-least-once: records are re-published until
// acked or their retry budget runs out.
package broadcaster

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"odin/infra/journal"
)

const maxRetries = 5

type Broadcaster struct {
	journal  *journal.Journal
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      *logrus.Logger
}

func New(j *journal.Journal, brokers []string, topic string, interval time.Duration, log *logrus.Logger) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create trade producer: %w", err)
	}

	return &Broadcaster{
		journal:  j,
		producer: producer,
		topic:    topic,
		interval: interval,
		log:      log,
	}, nil
}

// Start runs the drain loop until the context is canceled.
func (b *Broadcaster) Start(ctx context.Context) {
	b.log.WithField("topic", b.topic).Info("broadcaster started")

	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.drainOnce(ctx)
			}
		}
	}()
}

func (b *Broadcaster) drainOnce(ctx context.Context) {
	err := b.journal.ScanUndelivered(func(rec journal.Record) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if rec.Retries >= maxRetries {
			b.log.WithField("trade_id", rec.TradeID).Warn("trade delivery gave up")
			return b.journal.MarkFailed(rec.TradeID)
		}

		if err := b.journal.MarkSent(rec.TradeID); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(fmt.Sprintf("%d", rec.TradeID)),
			Value: sarama.ByteEncoder(rec.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			// Stays SENT; the next pass retries it.
			b.log.WithField("trade_id", rec.TradeID).WithError(err).Warn("trade publish failed")
			return nil
		}

		return b.journal.MarkAcked(rec.TradeID)
	})
	if err != nil && err != context.Canceled {
		b.log.WithError(err).Error("journal drain failed")
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
