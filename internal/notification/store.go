package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
)

// recipientColumns selects a recipient row joined with its notification. The
// aliases map the notification columns onto Recipient.Notification.
const recipientColumns = `
	r.id, r.notification_id, r.recipient_id, r.read, r.cleared,
	n.id AS "notification.id",
	n.type AS "notification.type",
	n.workspace_id AS "notification.workspace_id",
	n.sender_id AS "notification.sender_id",
	n.data AS "notification.data",
	n.created_at AS "notification.created_at"`

const recipientJoin = `
	FROM notification_recipients r
	JOIN notifications n ON n.id = r.notification_id`

const newestFirst = ` ORDER BY n.created_at DESC, n.id DESC`

// RecipientFilter selects the recipient rows visible to one user. Without a
// workspace only broadcast notifications are visible; with one, that
// workspace's notifications are visible as well.
type RecipientFilter struct {
	UserID      int64
	WorkspaceID *int64
	UnreadOnly  bool
}

func (f RecipientFilter) where() (string, []any) {
	conds := []string{"r.recipient_id = ?", "r.cleared = FALSE"}
	args := []any{f.UserID}

	if f.WorkspaceID != nil {
		conds = append(conds, "(n.workspace_id IS NULL OR n.workspace_id = ?)")
		args = append(args, *f.WorkspaceID)
	} else {
		conds = append(conds, "n.workspace_id IS NULL")
	}

	if f.UnreadOnly {
		conds = append(conds, "r.read = FALSE")
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

type recipientRow struct {
	NotificationID int64 `db:"notification_id"`
	RecipientID    int64 `db:"recipient_id"`
}

type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

func (s *Store) logQuery(ctx context.Context, op string) {
	s.logger.DebugContext(ctx, "db query", "op", op)
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// recipientBatchSize bounds the rows per recipient INSERT. Each row binds two
// parameters, so a batch stays well under the SQLite and Postgres limits.
const recipientBatchSize = 1000

// CreateNotification inserts n and one recipient row per user in a single
// transaction. Recipient rows are written in batches of recipientBatchSize.
// n.ID is set on success.
func (s *Store) CreateNotification(ctx context.Context, n *Notification, recipientIDs []int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		s.logQuery(ctx, "insert_notification")
		err := tx.GetContext(ctx, &n.ID, tx.Rebind(`
			INSERT INTO notifications (type, workspace_id, sender_id, data, created_at)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id
		`), n.Type, n.WorkspaceID, n.SenderID, n.Data, n.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert notification: %w", err)
		}

		for start := 0; start < len(recipientIDs); start += recipientBatchSize {
			end := min(start+recipientBatchSize, len(recipientIDs))

			rows := make([]recipientRow, 0, end-start)
			for _, id := range recipientIDs[start:end] {
				rows = append(rows, recipientRow{NotificationID: n.ID, RecipientID: id})
			}

			s.logQuery(ctx, "insert_recipients")
			_, err = tx.NamedExecContext(ctx, `
				INSERT INTO notification_recipients (notification_id, recipient_id)
				VALUES (:notification_id, :recipient_id)
			`, rows)
			if err != nil {
				return fmt.Errorf("failed to insert notification recipients: %w", err)
			}
		}

		return nil
	})
}

func (s *Store) GetRecipient(ctx context.Context, userID, notificationID int64) (*Recipient, error) {
	var r Recipient

	s.logQuery(ctx, "get_recipient")
	err := s.db.GetContext(ctx, &r, s.db.Rebind(`SELECT `+recipientColumns+recipientJoin+`
		WHERE r.recipient_id = ? AND r.notification_id = ?
	`), userID, notificationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotificationDoesNotExist, notificationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification %d: %w", notificationID, err)
	}

	return &r, nil
}

// ListRecipients returns the visible rows newest first. A limit of zero or
// less returns every row.
func (s *Store) ListRecipients(ctx context.Context, f RecipientFilter, limit, offset int) ([]Recipient, error) {
	where, args := f.where()
	query := `SELECT ` + recipientColumns + recipientJoin + where + newestFirst
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", offset)
		}
	}

	recipients := []Recipient{}

	s.logQuery(ctx, "list_recipients")
	if err := s.db.SelectContext(ctx, &recipients, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return recipients, nil
}

// EachRecipient streams the visible rows newest first without loading them
// all into memory.
func (s *Store) EachRecipient(ctx context.Context, f RecipientFilter, fn func(Recipient) error) error {
	where, args := f.where()

	s.logQuery(ctx, "each_recipient")
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(`SELECT `+recipientColumns+recipientJoin+where+newestFirst), args...)
	if err != nil {
		return fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r Recipient
		if err := rows.StructScan(&r); err != nil {
			return fmt.Errorf("failed to scan notification row: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (s *Store) CountRecipients(ctx context.Context, f RecipientFilter) (int, error) {
	where, args := f.where()

	var count int

	s.logQuery(ctx, "count_recipients")
	if err := s.db.GetContext(ctx, &count, s.db.Rebind(`SELECT COUNT(*)`+recipientJoin+where), args...); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	return count, nil
}

// UnreadCountsByWorkspace counts the user's unread rows for every given
// workspace in one grouped query. The broadcast count is returned separately
// since broadcasts are visible in every workspace.
func (s *Store) UnreadCountsByWorkspace(ctx context.Context, userID int64, workspaceIDs []int64) (map[int64]int, int, error) {
	counts := make(map[int64]int, len(workspaceIDs))
	if len(workspaceIDs) == 0 {
		return counts, 0, nil
	}

	query, args, err := sqlx.In(`
		SELECT n.workspace_id AS workspace_id, COUNT(*) AS unread`+recipientJoin+`
		WHERE r.recipient_id = ?
			AND r.read = FALSE
			AND r.cleared = FALSE
			AND (n.workspace_id IS NULL OR n.workspace_id IN (?))
		GROUP BY n.workspace_id
	`, userID, workspaceIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build unread count query: %w", err)
	}

	var rows []struct {
		WorkspaceID *int64 `db:"workspace_id"`
		Unread      int    `db:"unread"`
	}

	s.logQuery(ctx, "unread_counts_by_workspace")
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count unread notifications per workspace: %w", err)
	}

	broadcast := 0
	for _, row := range rows {
		if row.WorkspaceID == nil {
			broadcast = row.Unread
			continue
		}
		counts[*row.WorkspaceID] = row.Unread
	}

	return counts, broadcast, nil
}

func (s *Store) MarkRead(ctx context.Context, userID, notificationID int64) (int64, error) {
	s.logQuery(ctx, "mark_read")
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE notification_recipients
		SET read = TRUE
		WHERE recipient_id = ? AND notification_id = ? AND read = FALSE
	`), userID, notificationID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notification %d as read: %w", notificationID, err)
	}

	return res.RowsAffected()
}

// MarkAllRead flags every unread row visible under f as read in one
// statement.
func (s *Store) MarkAllRead(ctx context.Context, f RecipientFilter) (int64, error) {
	scope := "workspace_id IS NULL"
	args := []any{f.UserID}
	if f.WorkspaceID != nil {
		scope = "(workspace_id IS NULL OR workspace_id = ?)"
		args = append(args, *f.WorkspaceID)
	}

	s.logQuery(ctx, "mark_all_read")
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE notification_recipients
		SET read = TRUE
		WHERE recipient_id = ?
			AND read = FALSE
			AND cleared = FALSE
			AND notification_id IN (SELECT id FROM notifications WHERE `+scope+`)
	`), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}

	return res.RowsAffected()
}

// Clear deletes the workspace notifications the user can see, for all of
// their recipients, and flags the user's own broadcast rows as cleared.
func (s *Store) Clear(ctx context.Context, userID int64, workspaceID *int64) (ClearResult, error) {
	var result ClearResult

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if workspaceID != nil {
			s.logQuery(ctx, "delete_workspace_notifications_for_recipient")
			res, err := tx.ExecContext(ctx, tx.Rebind(`
				DELETE FROM notifications
				WHERE workspace_id = ?
					AND id IN (
						SELECT notification_id FROM notification_recipients
						WHERE recipient_id = ? AND cleared = FALSE
					)
			`), *workspaceID, userID)
			if err != nil {
				return fmt.Errorf("failed to delete workspace notifications: %w", err)
			}
			if result.Deleted, err = res.RowsAffected(); err != nil {
				return err
			}
		}

		s.logQuery(ctx, "clear_broadcast_recipients")
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE notification_recipients
			SET cleared = TRUE
			WHERE recipient_id = ?
				AND cleared = FALSE
				AND notification_id IN (SELECT id FROM notifications WHERE workspace_id IS NULL)
		`), userID)
		if err != nil {
			return fmt.Errorf("failed to clear broadcast notifications: %w", err)
		}
		result.Cleared, err = res.RowsAffected()
		return err
	})

	return result, err
}

// DeleteAllCleared removes broadcast notifications that every recipient has
// cleared.
func (s *Store) DeleteAllCleared(ctx context.Context) (int64, error) {
	s.logQuery(ctx, "delete_all_cleared")
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE workspace_id IS NULL
			AND NOT EXISTS (
				SELECT 1 FROM notification_recipients r
				WHERE r.notification_id = notifications.id AND r.cleared = FALSE
			)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cleared notifications: %w", err)
	}

	return res.RowsAffected()
}

func (s *Store) DeleteByWorkspace(ctx context.Context, workspaceID int64) (int64, error) {
	s.logQuery(ctx, "delete_by_workspace")
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM notifications WHERE workspace_id = ?`), workspaceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications of workspace %d: %w", workspaceID, err)
	}

	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, notificationID int64) error {
	s.logQuery(ctx, "delete_notification")
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM notifications WHERE id = ?`), notificationID)
	if err != nil {
		return fmt.Errorf("failed to delete notification %d: %w", notificationID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotificationDoesNotExist, notificationID)
	}

	return nil
}
