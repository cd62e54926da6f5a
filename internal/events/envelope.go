package events

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Envelope is the wire form of an event, used by the internal HTTP API and
// as the payload of queued tasks.
type Envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

var validate = validator.New()

var decoders = map[Kind]func(json.RawMessage) (Event, error){
	KindRowCommentCreated:     decodeAs[RowCommentCreated],
	KindRowCommentUpdated:     decodeAs[RowCommentUpdated],
	KindWorkspaceDeleted:      decodeAs[WorkspaceDeleted],
	KindAnnouncementPublished: decodeAs[AnnouncementPublished],
}

func decodeAs[T Event](data json.RawMessage) (Event, error) {
	var e T
	if len(data) == 0 {
		return nil, fmt.Errorf("event data is required")
	}
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", e.Kind(), err)
	}
	if err := validate.Struct(e); err != nil {
		return nil, fmt.Errorf("invalid %s event: %w", e.Kind(), err)
	}
	return e, nil
}

// Encode wraps e in an envelope and marshals it.
func Encode(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", e.Kind(), err)
	}
	return json.Marshal(Envelope{Kind: e.Kind(), Data: data})
}

// Decode parses an encoded envelope into its typed event.
func Decode(b []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("failed to decode event envelope: %w", err)
	}
	return env.Event()
}

// Event decodes and validates the envelope's data for its kind.
func (env Envelope) Event() (Event, error) {
	decode, ok := decoders[env.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}
	return decode(env.Data)
}
