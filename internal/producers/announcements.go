package producers

import (
	"context"
	"fmt"

	"notifier/internal/events"
	"notifier/internal/notification"
)

func announcements(n Notifier) events.Subscriber {
	return func(ctx context.Context, e events.Event) error {
		ev, ok := e.(events.AnnouncementPublished)
		if !ok {
			return fmt.Errorf("unexpected event %T", e)
		}

		_, err := n.CreateNotificationForUsers(ctx, notification.CreateParams{
			Type:       TypeAnnouncement,
			Recipients: ev.Recipients,
			Data: notification.Payload{
				"title":   ev.Title,
				"message": ev.Message,
			},
			SenderID: ev.SenderID,
		})
		if err != nil {
			return fmt.Errorf("failed to publish announcement: %w", err)
		}
		return nil
	}
}
