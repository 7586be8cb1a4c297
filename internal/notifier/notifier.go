// Package notifier forwards new leads to the sales team. Delivery is detached
// from the request that produced the lead: callers never wait for it and
// never see its errors.
package notifier

import (
	"context"
	"sync"
	"time"

	apperrors "unipath-planner/internal/common/errors"
	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/common/metrics"
	"unipath-planner/internal/models"
)

const defaultTimeout = 10 * time.Second

type Notifier struct {
	channel Channel
	timeout time.Duration
	logger  logger.Logger
	now     func() time.Time

	wg sync.WaitGroup
}

func New(channel Channel, timeout time.Duration, log logger.Logger) *Notifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Notifier{
		channel: channel,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"channel": channel.Name()}),
		now:     time.Now,
	}
}

// Channel names the destination, e.g. "feishu".
func (n *Notifier) Channel() string { return n.channel.Name() }

// Notify starts delivery of one lead and returns immediately.
func (n *Notifier) Notify(profile models.Profile, plan models.Plan) {
	if !n.channel.Configured() {
		metrics.LeadNotifications.WithLabelValues(n.channel.Name(), metrics.OutcomeSkipped).Inc()
		n.logger.Debug("lead notification skipped, channel not configured", nil)
		return
	}

	d := NewDigest(profile, plan, n.now())
	n.wg.Add(1)
	metrics.LeadNotificationsInFlight.Inc()
	go n.deliver(d)
}

func (n *Notifier) deliver(d Digest) {
	defer n.wg.Done()
	defer metrics.LeadNotificationsInFlight.Dec()

	// Not derived from the request context: the request may be long gone.
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	_ = n.send(ctx, d)
}

// Send delivers one lead synchronously within the notifier timeout. It
// reports false when the channel is not configured.
func (n *Notifier) Send(ctx context.Context, profile models.Profile, plan models.Plan) (bool, error) {
	if !n.channel.Configured() {
		metrics.LeadNotifications.WithLabelValues(n.channel.Name(), metrics.OutcomeSkipped).Inc()
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.send(ctx, NewDigest(profile, plan, n.now())); err != nil {
		return false, err
	}
	return true, nil
}

func (n *Notifier) send(ctx context.Context, d Digest) error {
	start := time.Now()
	if err := n.channel.Deliver(ctx, d); err != nil {
		metrics.LeadNotifications.WithLabelValues(n.channel.Name(), metrics.OutcomeFailure).Inc()
		notifyErr := apperrors.NewNotificationError(n.channel.Name(), err)
		n.logger.Warn("lead notification failed", map[string]interface{}{
			"error":   notifyErr,
			"student": d.Name,
		})
		return notifyErr
	}
	metrics.LeadNotifications.WithLabelValues(n.channel.Name(), metrics.OutcomeSuccess).Inc()
	n.logger.Info("lead notification sent", map[string]interface{}{
		"student":  d.Name,
		"duration": time.Since(start).String(),
	})
	return nil
}

// Wait blocks until every started delivery has finished or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
