// Package notifications announces incident changes to chat webhooks.
//
// Announcements are queued in process and delivered by a small worker pool.
// Delivery never blocks or fails the request that caused the change.
package notifications

import "context"

// Notification is a rendered message ready to send.
type Notification struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a rendered notification to one target.
type Sender interface {
	Send(ctx context.Context, notification Notification) error
}
