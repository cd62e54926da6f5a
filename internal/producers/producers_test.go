package producers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifier/internal/events"
	"notifier/internal/notification"
	"notifier/internal/testutil"
)

func setup(t *testing.T) (*events.Dispatcher, *notification.Handler) {
	t.Helper()

	registry, err := NewRegistry()
	require.NoError(t, err)

	h := notification.NewHandler(notification.NewStore(testutil.NewTestDB(t), nil), registry)
	d := events.NewDispatcher()
	require.NoError(t, Register(d, h))
	return d, h
}

func comment() events.RowComment {
	return events.RowComment{
		ID:           11,
		RowID:        3,
		TableID:      2,
		TableName:    "Tasks",
		DatabaseID:   1,
		DatabaseName: "Roadmap",
		WorkspaceID:  40,
		AuthorID:     7,
		Message:      "ping",
	}
}

func TestRowCommentCreatedNotifiesMentionedUsers(t *testing.T) {
	d, h := setup(t)
	ctx := context.Background()

	require.NoError(t, d.Publish(ctx, events.RowCommentCreated{Comment: comment(), Mentions: []int64{1, 2}}))

	for _, user := range []int64{1, 2} {
		recipients, err := h.ListNotifications(user, ptr(comment().WorkspaceID)).All(ctx)
		require.NoError(t, err)
		require.Len(t, recipients, 1)

		n := recipients[0].Notification
		assert.Equal(t, TypeRowCommentMention, n.Type)
		assert.Equal(t, int64(7), *n.SenderID)
		assert.Equal(t, int64(40), *n.WorkspaceID)
		assert.Equal(t, "Roadmap", n.Data["database_name"])
		assert.Equal(t, "Tasks", n.Data["table_name"])
		assert.Equal(t, json.Number("3"), n.Data["row_id"])
		assert.Equal(t, json.Number("11"), n.Data["comment_id"])
		assert.Equal(t, "ping", n.Data["message"])
	}

	count, err := h.ListNotifications(7, ptr(comment().WorkspaceID)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRowCommentWithoutMentionsIsIgnored(t *testing.T) {
	d, h := setup(t)
	ctx := context.Background()

	require.NoError(t, d.Publish(ctx, events.RowCommentCreated{Comment: comment()}))
	require.NoError(t, d.Publish(ctx, events.RowCommentUpdated{Comment: comment()}))

	count, err := h.ListNotifications(1, ptr(comment().WorkspaceID)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRowCommentUpdatedNotifiesMentionedUsers(t *testing.T) {
	d, h := setup(t)
	ctx := context.Background()

	require.NoError(t, d.Publish(ctx, events.RowCommentUpdated{Comment: comment(), Mentions: []int64{3}}))

	unread, err := h.GetUnreadNotificationsCount(ctx, 3, ptr(comment().WorkspaceID))
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}

func TestAnnouncementIsBroadcast(t *testing.T) {
	d, h := setup(t)
	ctx := context.Background()

	require.NoError(t, d.Publish(ctx, events.AnnouncementPublished{
		Title:      "Maintenance",
		Message:    "Down at noon",
		Recipients: []int64{1, 2},
	}))

	for _, workspace := range []*int64{nil, ptr(comment().WorkspaceID)} {
		recipients, err := h.ListNotifications(2, workspace).All(ctx)
		require.NoError(t, err)
		require.Len(t, recipients, 1)
		assert.True(t, recipients[0].Notification.IsBroadcast())
		assert.Nil(t, recipients[0].Notification.SenderID)
		assert.Equal(t, "Maintenance", recipients[0].Notification.Data["title"])
	}
}

func TestWorkspaceDeletedRemovesItsNotifications(t *testing.T) {
	d, h := setup(t)
	ctx := context.Background()

	require.NoError(t, d.Publish(ctx, events.RowCommentCreated{Comment: comment(), Mentions: []int64{1}}))
	other := comment()
	other.WorkspaceID = 41
	require.NoError(t, d.Publish(ctx, events.RowCommentCreated{Comment: other, Mentions: []int64{1}}))

	require.NoError(t, d.Publish(ctx, events.WorkspaceDeleted{WorkspaceID: 40}))

	count, err := h.ListNotifications(1, ptr(comment().WorkspaceID)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = h.ListNotifications(1, &other.WorkspaceID).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func ptr(v int64) *int64 { return &v }
