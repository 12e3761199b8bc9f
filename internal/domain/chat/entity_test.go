// internal/domain/chat/entity_test.go
package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	m, err := NewMessage("  hello  ", SenderClient, " Acme ")
	require.NoError(t, err)
	assert.Equal(t, "hello", m.Text)
	assert.Equal(t, "Acme", m.SenderName)
	assert.False(t, m.Read)
}

func TestNewMessageRejectsEmptyOrInvalid(t *testing.T) {
	_, err := NewMessage("   ", SenderClient, "Acme")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = NewMessage("hi", Sender("bot"), "x")
	assert.ErrorIs(t, err, ErrInvalidSender)
}

func TestSenderOther(t *testing.T) {
	assert.Equal(t, SenderAdmin, SenderClient.Other())
	assert.Equal(t, SenderClient, SenderAdmin.Other())
}

func TestSummaryUnreadFor(t *testing.T) {
	s := Summary{UnreadByAdmin: 3, UnreadByClient: 1}
	assert.Equal(t, 3, s.UnreadFor(SenderAdmin))
	assert.Equal(t, 1, s.UnreadFor(SenderClient))
}
