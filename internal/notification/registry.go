package notification

import (
	"fmt"
	"sort"
)

type Scope int

const (
	// ScopeAny accepts both workspace and broadcast notifications.
	ScopeAny Scope = iota
	ScopeWorkspace
	ScopeBroadcast
)

func (s Scope) String() string {
	switch s {
	case ScopeWorkspace:
		return "workspace"
	case ScopeBroadcast:
		return "broadcast"
	default:
		return "any"
	}
}

// Descriptor describes a notification type. It carries no behaviour; producers
// own the payload they build for it.
type Descriptor struct {
	Type         string
	Scope        Scope
	RequiredKeys []string
}

// Registry maps type tags to descriptors. It is assembled once at startup and
// is read-only afterwards, so it is safe for concurrent use.
type Registry struct {
	descriptors map[string]Descriptor
}

func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{descriptors: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if err := r.register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func MustNewRegistry(descriptors ...Descriptor) *Registry {
	r, err := NewRegistry(descriptors...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) register(d Descriptor) error {
	if d.Type == "" {
		return fmt.Errorf("notification type tag is required")
	}
	if _, exists := r.descriptors[d.Type]; exists {
		return fmt.Errorf("notification type %q registered twice", d.Type)
	}
	r.descriptors[d.Type] = d
	return nil
}

func (r *Registry) Get(typeTag string) (Descriptor, error) {
	d, ok := r.descriptors[typeTag]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownNotificationType, typeTag)
	}
	return d, nil
}

// Types returns the registered tags in lexical order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.descriptors))
	for t := range r.descriptors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// check verifies that a notification of this type may be created with the
// given workspace and payload.
func (d Descriptor) check(workspaceID *int64, data Payload) error {
	switch {
	case d.Scope == ScopeWorkspace && workspaceID == nil:
		return fmt.Errorf("%w: type %q requires a workspace", ErrInvalidNotification, d.Type)
	case d.Scope == ScopeBroadcast && workspaceID != nil:
		return fmt.Errorf("%w: type %q is broadcast only", ErrInvalidNotification, d.Type)
	}

	for _, key := range d.RequiredKeys {
		if _, ok := data[key]; !ok {
			return fmt.Errorf("%w: type %q requires data key %q", ErrInvalidNotification, d.Type, key)
		}
	}
	return nil
}
