package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
)

// Handler is the entry point for creating notifications and for reading and
// mutating a user's view of them. Every call is scoped by the user passed in;
// no operation lets one user touch another user's recipient rows.
type Handler struct {
	store    *Store
	registry *Registry
	validate *validator.Validate
	now      func() time.Time
}

func NewHandler(store *Store, registry *Registry) *Handler {
	return &Handler{
		store:    store,
		registry: registry,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Registry() *Registry {
	return h.registry
}

// CreateNotificationForUsers fans a notification out to every recipient. The
// notification and all recipient rows are written atomically.
func (h *Handler) CreateNotificationForUsers(ctx context.Context, params CreateParams) (*Notification, error) {
	if err := h.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}

	descriptor, err := h.registry.Get(params.Type)
	if err != nil {
		return nil, err
	}

	if err := descriptor.check(params.WorkspaceID, params.Data); err != nil {
		return nil, err
	}

	if _, err := json.Marshal(params.Data); err != nil {
		return nil, fmt.Errorf("%w: data is not serializable: %v", ErrInvalidNotification, err)
	}

	data := params.Data
	if data == nil {
		data = Payload{}
	}

	n := &Notification{
		Type:        params.Type,
		WorkspaceID: params.WorkspaceID,
		SenderID:    params.SenderID,
		Data:        data,
		CreatedAt:   h.now(),
	}

	recipients := uniqueIDs(params.Recipients)
	if err := h.store.CreateNotification(ctx, n, recipients); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Notification created",
		"notification_id", n.ID,
		"type", n.Type,
		"recipients", len(recipients),
		"broadcast", n.IsBroadcast())

	return n, nil
}

// ListNotifications returns a lazy query over the user's visible, uncleared
// notifications, newest first. Nothing is read until the query is used.
func (h *Handler) ListNotifications(userID int64, workspaceID *int64) *RecipientQuery {
	return &RecipientQuery{
		store:  h.store,
		filter: RecipientFilter{UserID: userID, WorkspaceID: workspaceID},
	}
}

func (h *Handler) GetNotificationByID(ctx context.Context, userID, notificationID int64) (*Recipient, error) {
	return h.store.GetRecipient(ctx, userID, notificationID)
}

func (h *Handler) GetUnreadNotificationsCount(ctx context.Context, userID int64, workspaceID *int64) (int, error) {
	return h.store.CountRecipients(ctx, RecipientFilter{
		UserID:      userID,
		WorkspaceID: workspaceID,
		UnreadOnly:  true,
	})
}

// UnreadCountsByWorkspace returns, for each workspace, the count that
// GetUnreadNotificationsCount would report for it. It issues a single query.
func (h *Handler) UnreadCountsByWorkspace(ctx context.Context, userID int64, workspaceIDs []int64) (map[int64]int, error) {
	counts, broadcast, err := h.store.UnreadCountsByWorkspace(ctx, userID, workspaceIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range workspaceIDs {
		counts[id] += broadcast
	}
	return counts, nil
}

type UnreadCounted[T any] struct {
	Item                     T
	UnreadNotificationsCount int
}

// AnnotateWorkspacesWithUnreadCount attaches the user's unread count to each
// item. workspaceID extracts the workspace an item refers to.
func AnnotateWorkspacesWithUnreadCount[T any](
	ctx context.Context,
	h *Handler,
	userID int64,
	items []T,
	workspaceID func(T) int64,
) ([]UnreadCounted[T], error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, workspaceID(item))
	}

	counts, err := h.UnreadCountsByWorkspace(ctx, userID, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}

	annotated := make([]UnreadCounted[T], 0, len(items))
	for _, item := range items {
		annotated = append(annotated, UnreadCounted[T]{
			Item:                     item,
			UnreadNotificationsCount: counts[workspaceID(item)],
		})
	}
	return annotated, nil
}

// MarkNotificationAsRead is idempotent. It is a no-op when the notification is
// not addressed to the user.
func (h *Handler) MarkNotificationAsRead(ctx context.Context, userID, notificationID int64) error {
	_, err := h.store.MarkRead(ctx, userID, notificationID)
	return err
}

func (h *Handler) MarkAllNotificationsAsRead(ctx context.Context, userID int64, workspaceID *int64) (int64, error) {
	return h.store.MarkAllRead(ctx, RecipientFilter{UserID: userID, WorkspaceID: workspaceID})
}

// ClearAllNotifications removes everything visible to the user. Workspace
// notifications are deleted for all recipients; broadcast notifications are
// only hidden for this user.
func (h *Handler) ClearAllNotifications(ctx context.Context, userID int64, workspaceID *int64) (ClearResult, error) {
	result, err := h.store.Clear(ctx, userID, workspaceID)
	if err != nil {
		return ClearResult{}, err
	}

	slog.DebugContext(ctx, "Notifications cleared",
		"user_id", userID,
		"deleted", result.Deleted,
		"cleared", result.Cleared)

	return result, nil
}

// DeleteAllClearedNotifications removes broadcast notifications nobody can see
// anymore.
func (h *Handler) DeleteAllClearedNotifications(ctx context.Context) (int64, error) {
	return h.store.DeleteAllCleared(ctx)
}

func (h *Handler) DeleteWorkspaceNotifications(ctx context.Context, workspaceID int64) (int64, error) {
	return h.store.DeleteByWorkspace(ctx, workspaceID)
}

func (h *Handler) DeleteNotification(ctx context.Context, notificationID int64) error {
	return h.store.Delete(ctx, notificationID)
}

// IsNotFound reports whether err means the notification is not visible.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotificationDoesNotExist)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
