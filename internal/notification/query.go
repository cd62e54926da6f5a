package notification

import (
	"context"
	"fmt"
)

// RecipientQuery is a reusable description of a user's notification list.
// Each method runs its own SQL, so the query can be evaluated any number of
// times and always reflects the current state.
type RecipientQuery struct {
	store  *Store
	filter RecipientFilter
}

func (q *RecipientQuery) Filter() RecipientFilter {
	return q.filter
}

// Unread narrows the query to rows the user has not read yet.
func (q *RecipientQuery) Unread() *RecipientQuery {
	f := q.filter
	f.UnreadOnly = true
	return &RecipientQuery{store: q.store, filter: f}
}

func (q *RecipientQuery) All(ctx context.Context) ([]Recipient, error) {
	return q.store.ListRecipients(ctx, q.filter, 0, 0)
}

func (q *RecipientQuery) Page(ctx context.Context, limit, offset int) ([]Recipient, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("page limit must be positive, got %d", limit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("page offset must not be negative, got %d", offset)
	}
	return q.store.ListRecipients(ctx, q.filter, limit, offset)
}

// Count counts the rows without loading them.
func (q *RecipientQuery) Count(ctx context.Context) (int, error) {
	return q.store.CountRecipients(ctx, q.filter)
}

// Each streams the rows to fn in order. Returning an error from fn stops the
// iteration and is passed through.
func (q *RecipientQuery) Each(ctx context.Context, fn func(Recipient) error) error {
	return q.store.EachRecipient(ctx, q.filter, fn)
}
