package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistenceError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("add: %w", &PersistenceError{Operation: "add", Entity: "transaction", Err: cause})

	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "add", pe.Operation)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to add transaction: connection reset", pe.Error())
}

func TestBatchError_Partial(t *testing.T) {
	assert.True(t, (&BatchError{Requested: 5, Acknowledged: 3}).Partial())
	assert.False(t, (&BatchError{Requested: 5, Acknowledged: 0, Err: errors.New("x")}).Partial())
	assert.Contains(t, (&BatchError{Requested: 5, Acknowledged: 3}).Error(), "partially applied")
}

func TestWebhookError_Message(t *testing.T) {
	assert.Equal(t, "webhook http://hook responded with status 502",
		(&WebhookError{URL: "http://hook", StatusCode: 502}).Error())
	assert.Contains(t, (&WebhookError{URL: "http://hook", Err: errors.New("dial tcp")}).Error(), "dial tcp")
}

func TestInvalidFormatError_Message(t *testing.T) {
	err := &InvalidFormatError{FileName: "feb.csv", Msg: "no amount columns", Headers: []string{"Foo", "Bar"}}
	assert.Equal(t, "invalid format in file 'feb.csv': no amount columns. Found headers: Foo, Bar", err.Error())
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{name: "nil", err: nil, contains: ""},
		{name: "format", err: &InvalidFormatError{Msg: "no date or amount column"}, contains: "Nothing was imported"},
		{name: "batch", err: fmt.Errorf("wrap: %w", &BatchError{Requested: 4}), contains: "batch of 4"},
		{name: "persistence", err: &PersistenceError{Operation: "update", Entity: "transaction", Err: errors.New("503")}, contains: "reverted"},
		{name: "protected", err: &ProtectedCategoryError{ID: "excluded"}, contains: "reserved"},
		{name: "plain", err: errors.New("boom"), contains: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, UserMessage(tt.err), tt.contains)
		})
	}
	assert.True(t, IsNotFound(fmt.Errorf("x: %w", &NotFoundError{Entity: "category", Key: "food"})))
}
