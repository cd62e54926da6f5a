package notification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(
		Descriptor{Type: "b_type", Scope: ScopeBroadcast},
		Descriptor{Type: "a_type", Scope: ScopeWorkspace, RequiredKeys: []string{"message"}},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"a_type", "b_type"}, r.Types())

	d, err := r.Get("a_type")
	require.NoError(t, err)
	assert.Equal(t, ScopeWorkspace, d.Scope)

	_, err = r.Get("missing")
	require.ErrorIs(t, err, ErrUnknownNotificationType)
}

func TestNewRegistryRejectsBadDescriptors(t *testing.T) {
	_, err := NewRegistry(Descriptor{Type: "dup"}, Descriptor{Type: "dup"})
	require.Error(t, err)

	_, err = NewRegistry(Descriptor{})
	require.Error(t, err)

	assert.Panics(t, func() { MustNewRegistry(Descriptor{}) })
}

func TestDescriptorCheck(t *testing.T) {
	workspace := int64(4)

	tests := []struct {
		name        string
		descriptor  Descriptor
		workspaceID *int64
		data        Payload
		wantErr     bool
	}{
		{"any scope with workspace", Descriptor{Type: "t"}, &workspace, nil, false},
		{"any scope without workspace", Descriptor{Type: "t"}, nil, nil, false},
		{"workspace scope without workspace", Descriptor{Type: "t", Scope: ScopeWorkspace}, nil, nil, true},
		{"broadcast scope with workspace", Descriptor{Type: "t", Scope: ScopeBroadcast}, &workspace, nil, true},
		{"required key present", Descriptor{Type: "t", RequiredKeys: []string{"k"}}, nil, Payload{"k": nil}, false},
		{"required key missing", Descriptor{Type: "t", RequiredKeys: []string{"k"}}, nil, Payload{"other": 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.descriptor.check(tt.workspaceID, tt.data)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidNotification)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPayloadScan(t *testing.T) {
	var p Payload
	require.NoError(t, p.Scan(`{"message":"hi"}`))
	assert.Equal(t, "hi", p["message"])

	require.NoError(t, p.Scan([]byte(`{"count":2}`)))
	assert.Equal(t, json.Number("2"), p["count"])

	require.NoError(t, p.Scan(`{"row_id":9007199254740993}`))
	id, err := p["row_id"].(json.Number).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), id)

	require.NoError(t, p.Scan(nil))
	assert.Empty(t, p)

	require.Error(t, p.Scan(42))
	require.Error(t, p.Scan("not json"))
}
