package producers

import (
	"context"
	"fmt"
	"log/slog"

	"notifier/internal/events"
)

// workspaceCleanup deletes every notification of a deleted workspace.
func workspaceCleanup(n Notifier) events.Subscriber {
	return func(ctx context.Context, e events.Event) error {
		ev, ok := e.(events.WorkspaceDeleted)
		if !ok {
			return fmt.Errorf("unexpected event %T", e)
		}

		deleted, err := n.DeleteWorkspaceNotifications(ctx, ev.WorkspaceID)
		if err != nil {
			return fmt.Errorf("failed to delete notifications of workspace %d: %w", ev.WorkspaceID, err)
		}

		slog.InfoContext(ctx, "Workspace notifications deleted", "workspace_id", ev.WorkspaceID, "deleted", deleted)
		return nil
	}
}
