// Package notifier delivers bot events to the configured channels.
package notifier

import (
	"context"

	"go.uber.org/zap"
)

// Notifier is a single delivery channel. Channels that have no concept of
// a subject (chat messages) may fold it into the body or drop it.
type Notifier interface {
	Name() string
	Send(ctx context.Context, subject, body string) error
}

// Broadcaster fans a message out to every configured channel. A channel
// failure is logged and the remaining channels are still attempted; it is
// never treated as a failure of the action being reported.
type Broadcaster struct {
	channels []Notifier
	logger   *zap.Logger
}

// NewBroadcaster creates a broadcaster over the given channels. An empty
// channel list is valid: events then only reach the log.
func NewBroadcaster(logger *zap.Logger, channels ...Notifier) *Broadcaster {
	return &Broadcaster{channels: channels, logger: logger}
}

// Broadcast sends the message through every channel.
func (b *Broadcaster) Broadcast(ctx context.Context, subject, body string) {
	if len(b.channels) == 0 {
		b.logger.Info("notification", zap.String("subject", subject), zap.String("body", body))
		return
	}
	for _, ch := range b.channels {
		if err := ch.Send(ctx, subject, body); err != nil {
			b.logger.Error("notification channel failed",
				zap.String("channel", ch.Name()),
				zap.String("subject", subject),
				zap.Error(err))
		}
	}
}
