package producers

import (
	"context"
	"fmt"
	"log/slog"

	"notifier/internal/events"
	"notifier/internal/notification"
)

// RowCommentMentionData is the payload stored for a mention notification.
func RowCommentMentionData(c events.RowComment) notification.Payload {
	return notification.Payload{
		"database_id":   c.DatabaseID,
		"database_name": c.DatabaseName,
		"table_id":      c.TableID,
		"table_name":    c.TableName,
		"row_id":        c.RowID,
		"comment_id":    c.ID,
		"message":       c.Message,
	}
}

// NotifyMentionedUsers creates one mention notification addressed to every
// mentioned user, sent by the comment author within the comment's workspace.
func NotifyMentionedUsers(ctx context.Context, n Notifier, c events.RowComment, mentions []int64) (*notification.Notification, error) {
	if len(mentions) == 0 {
		return nil, nil
	}

	created, err := n.CreateNotificationForUsers(ctx, notification.CreateParams{
		Type:        TypeRowCommentMention,
		Recipients:  mentions,
		Data:        RowCommentMentionData(c),
		SenderID:    &c.AuthorID,
		WorkspaceID: &c.WorkspaceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to notify users mentioned in comment %d: %w", c.ID, err)
	}

	slog.InfoContext(ctx, "Mentioned users notified",
		"comment_id", c.ID,
		"notification_id", created.ID,
		"recipients", len(mentions))

	return created, nil
}

func rowCommentMentions(n Notifier) events.Subscriber {
	return func(ctx context.Context, e events.Event) error {
		var (
			comment  events.RowComment
			mentions []int64
		)

		switch ev := e.(type) {
		case events.RowCommentCreated:
			comment, mentions = ev.Comment, ev.Mentions
		case events.RowCommentUpdated:
			comment, mentions = ev.Comment, ev.Mentions
		default:
			return fmt.Errorf("unexpected event %T", e)
		}

		_, err := NotifyMentionedUsers(ctx, n, comment, mentions)
		return err
	}
}
