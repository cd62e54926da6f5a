package producers

import (
	"context"
	"fmt"

	"notifier/internal/events"
	"notifier/internal/notification"
)

const (
	TypeRowCommentMention = "row_comment_mention"
	TypeAnnouncement      = "announcement"
)

// Notifier is the part of notification.Handler the producers write through.
type Notifier interface {
	CreateNotificationForUsers(ctx context.Context, params notification.CreateParams) (*notification.Notification, error)
	DeleteWorkspaceNotifications(ctx context.Context, workspaceID int64) (int64, error)
}

// Descriptors lists the notification types created by this package.
func Descriptors() []notification.Descriptor {
	return []notification.Descriptor{
		{
			Type:  TypeRowCommentMention,
			Scope: notification.ScopeWorkspace,
			RequiredKeys: []string{
				"database_id", "database_name",
				"table_id", "table_name",
				"row_id", "comment_id", "message",
			},
		},
		{
			Type:         TypeAnnouncement,
			Scope:        notification.ScopeBroadcast,
			RequiredKeys: []string{"title", "message"},
		},
	}
}

// NewRegistry builds the registry with every descriptor of this package.
func NewRegistry() (*notification.Registry, error) {
	return notification.NewRegistry(Descriptors()...)
}

// Register wires every producer into the dispatcher.
func Register(d *events.Dispatcher, n Notifier) error {
	subscriptions := []struct {
		kind events.Kind
		name string
		fn   events.Subscriber
	}{
		{events.KindRowCommentCreated, "row_comment_mention", rowCommentMentions(n)},
		{events.KindRowCommentUpdated, "row_comment_mention", rowCommentMentions(n)},
		{events.KindAnnouncementPublished, "announcement", announcements(n)},
		{events.KindWorkspaceDeleted, "workspace_cleanup", workspaceCleanup(n)},
	}

	for _, s := range subscriptions {
		if err := d.Subscribe(s.kind, s.name, s.fn); err != nil {
			return fmt.Errorf("failed to subscribe %s to %s: %w", s.name, s.kind, err)
		}
	}
	return nil
}
