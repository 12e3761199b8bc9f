// internal/domain/notification/entity_test.go
package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValid(t *testing.T) {
	r, err := New(TypeMessageReceived, "admin", RecipientAdmin, "New message from Acme")
	require.NoError(t, err)
	assert.False(t, r.Read)
	assert.Equal(t, "admin", r.RecipientID)
	assert.NotNil(t, r.Metadata)
}

func TestNewMissingFields(t *testing.T) {
	tests := []struct {
		name string
		t    Type
		rid  string
		rt   RecipientType
		msg  string
	}{
		{"missing message", TypeQuoteSubmitted, "admin", RecipientAdmin, ""},
		{"blank message", TypeQuoteSubmitted, "admin", RecipientAdmin, "   "},
		{"missing recipient", TypeQuoteSubmitted, "", RecipientAdmin, "hi"},
		{"bad type", Type("WHATEVER"), "admin", RecipientAdmin, "hi"},
		{"bad recipient type", TypeQuoteSubmitted, "admin", RecipientType("robot"), "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.t, tt.rid, tt.rt, tt.msg)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestWithActionAndMetadata(t *testing.T) {
	r, err := New(TypeClientStepComplete, "admin", RecipientAdmin, "Acme completed step 2")
	require.NoError(t, err)

	r = r.WithAction(" admin.html?tab=clients ", "client-1").
		WithMetadata(map[string]any{"step": 2})

	assert.Equal(t, "admin.html?tab=clients", r.ActionURL)
	assert.Equal(t, "client-1", r.RelatedID)
	assert.Equal(t, 2, r.Metadata["step"])
}
