// Package notify implements §4.12's notification sink: a generic
// Send(title, message, priority) surface the tool layer's
// send_notification tool and other components call, with a silent no-op
// default and a Slack-backed implementation. Grounded on
// original_source/notifier.py's severity/priority model and the
// teacher's pkg/slack client wiring.
package notify

import "context"

// Sink is the notification delivery surface. pkg/toolset's Notifier
// interface is satisfied directly by any Sink.
type Sink interface {
	Send(ctx context.Context, title, message string, priority int) error
}

// NoopSink discards every notification. It is the default when
// NotifyConfig.Enabled is false or incompletely configured (§4.12
// "a generic interface with a no-op default").
type NoopSink struct{}

// Send implements Sink by doing nothing.
func (NoopSink) Send(ctx context.Context, title, message string, priority int) error {
	return nil
}
