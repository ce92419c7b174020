// Package feed periodically publishes an L2 depth snapshot for downstream
// consumers (dashboards, market data aggregation).
package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"odin/service"
)

// Publisher is the transport the feed writes to. infra/kafka.Producer
// satisfies it.
type Publisher interface {
	Send(ctx context.Context, key, value []byte) error
}

type Feed struct {
	svc      *service.OrderService
	pub      Publisher
	depth    int
	interval time.Duration
	log      *logrus.Logger
}

func New(svc *service.OrderService, pub Publisher, depth int, interval time.Duration, log *logrus.Logger) *Feed {
	return &Feed{
		svc:      svc,
		pub:      pub,
		depth:    depth,
		interval: interval,
		log:      log,
	}
}

// Start publishes snapshots until the context is canceled.
func (f *Feed) Start(ctx context.Context) {
	f.log.WithField("interval", f.interval).Info("depth feed started")

	go func() {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.publishOnce(ctx)
			}
		}
	}()
}

func (f *Feed) publishOnce(ctx context.Context) {
	snap := f.svc.Snapshot(f.depth)
	payload, err := json.Marshal(snap)
	if err != nil {
		f.log.WithError(err).Error("encode depth snapshot")
		return
	}
	if err := f.pub.Send(ctx, []byte("book"), payload); err != nil {
		f.log.WithError(err).Warn("depth publish failed")
	}
}
