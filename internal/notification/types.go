package notification

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotificationDoesNotExist = errors.New("notification does not exist")
	ErrUnknownNotificationType  = errors.New("unknown notification type")
	ErrInvalidNotification      = errors.New("invalid notification")
)

// Payload is the type specific data of a notification. It is stored as JSON.
type Payload map[string]any

func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Payload) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Payload{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Payload", src)
	}

	// Numbers decode as json.Number so 64-bit IDs keep their precision.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	out := Payload{}
	if err := dec.Decode(&out); err != nil {
		return fmt.Errorf("failed to decode notification data: %w", err)
	}
	*p = out
	return nil
}

// Notification is shared by every recipient it was fanned out to. A nil
// WorkspaceID marks a broadcast notification.
type Notification struct {
	ID          int64     `db:"id" json:"id"`
	Type        string    `db:"type" json:"type"`
	WorkspaceID *int64    `db:"workspace_id" json:"workspace_id"`
	SenderID    *int64    `db:"sender_id" json:"sender_id"`
	Data        Payload   `db:"data" json:"data"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func (n Notification) IsBroadcast() bool {
	return n.WorkspaceID == nil
}

// Recipient is the per-user state of a notification.
type Recipient struct {
	ID             int64 `db:"id" json:"id"`
	NotificationID int64 `db:"notification_id" json:"notification_id"`
	RecipientID    int64 `db:"recipient_id" json:"recipient_id"`
	Read           bool  `db:"read" json:"read"`
	Cleared        bool  `db:"cleared" json:"cleared"`

	Notification Notification `db:"notification" json:"notification"`
}

type CreateParams struct {
	Type        string  `validate:"required,max=64"`
	Recipients  []int64 `validate:"required,min=1,dive,gt=0"`
	Data        Payload
	SenderID    *int64 `validate:"omitempty,gt=0"`
	WorkspaceID *int64 `validate:"omitempty,gt=0"`
}

// ClearResult reports what a clear pass did: workspace notifications are
// deleted for everyone, broadcast rows are only flagged for the caller.
type ClearResult struct {
	Deleted int64 `json:"deleted"`
	Cleared int64 `json:"cleared"`
}
