package events

import "errors"

// Kind identifies an event. The set of kinds is fixed; subscribing to or
// decoding any other kind fails with ErrUnknownKind.
type Kind string

const (
	KindRowCommentCreated     Kind = "row_comment.created"
	KindRowCommentUpdated     Kind = "row_comment.updated"
	KindWorkspaceDeleted      Kind = "workspace.deleted"
	KindAnnouncementPublished Kind = "announcement.published"
)

var ErrUnknownKind = errors.New("unknown event kind")

// Kinds returns every supported kind.
func Kinds() []Kind {
	return []Kind{
		KindRowCommentCreated,
		KindRowCommentUpdated,
		KindWorkspaceDeleted,
		KindAnnouncementPublished,
	}
}

func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

type Event interface {
	Kind() Kind
}

// RowComment is a comment left on a table row, together with the names of the
// table and database it belongs to.
type RowComment struct {
	ID           int64  `json:"id" validate:"gt=0"`
	RowID        int64  `json:"row_id" validate:"gt=0"`
	TableID      int64  `json:"table_id" validate:"gt=0"`
	TableName    string `json:"table_name" validate:"required"`
	DatabaseID   int64  `json:"database_id" validate:"gt=0"`
	DatabaseName string `json:"database_name" validate:"required"`
	WorkspaceID  int64  `json:"workspace_id" validate:"gt=0"`
	AuthorID     int64  `json:"author_id" validate:"gt=0"`
	Message      string `json:"message"`
}

type RowCommentCreated struct {
	Comment  RowComment `json:"comment"`
	Mentions []int64    `json:"mentions" validate:"dive,gt=0"`
}

func (RowCommentCreated) Kind() Kind { return KindRowCommentCreated }

// RowCommentUpdated carries the mentions of the edited comment.
type RowCommentUpdated struct {
	Comment  RowComment `json:"comment"`
	Mentions []int64    `json:"mentions" validate:"dive,gt=0"`
}

func (RowCommentUpdated) Kind() Kind { return KindRowCommentUpdated }

type WorkspaceDeleted struct {
	WorkspaceID int64 `json:"workspace_id" validate:"gt=0"`
}

func (WorkspaceDeleted) Kind() Kind { return KindWorkspaceDeleted }

// AnnouncementPublished is a system wide message sent to the listed users.
type AnnouncementPublished struct {
	Title      string  `json:"title" validate:"required,max=255"`
	Message    string  `json:"message" validate:"required"`
	Recipients []int64 `json:"recipients" validate:"required,min=1,dive,gt=0"`
	SenderID   *int64  `json:"sender_id,omitempty" validate:"omitempty,gt=0"`
}

func (AnnouncementPublished) Kind() Kind { return KindAnnouncementPublished }
