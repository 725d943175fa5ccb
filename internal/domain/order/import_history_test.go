package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status ImportStatus
		want   bool
	}{
		{"processing", ImportStatusProcessing, false},
		{"completed", ImportStatusCompleted, true},
		{"rejected", ImportStatusRejected, true},
		{"failed", ImportStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsTerminal())
			assert.True(t, tt.status.IsValid())
		})
	}
	assert.False(t, ImportStatus("bogus").IsValid())
}

func TestNewImportHistory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		h, err := NewImportHistory("orders.csv", 120)
		require.NoError(t, err)
		assert.Equal(t, ImportStatusProcessing, h.Status)
		assert.Empty(t, h.ErrorDetails)
		assert.Nil(t, h.CompletedAt)
	})

	t.Run("empty file name", func(t *testing.T) {
		_, err := NewImportHistory("", 1)
		assert.Error(t, err)
	})

	t.Run("negative size", func(t *testing.T) {
		_, err := NewImportHistory("a.csv", -1)
		assert.Error(t, err)
	})
}

func TestImportHistory_Transitions(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		h, _ := NewImportHistory("orders.csv", 10)
		require.NoError(t, h.Complete(3, 3, "imports/orders/a.csv"))
		assert.Equal(t, ImportStatusCompleted, h.Status)
		assert.Equal(t, 3, h.ImportedRows)
		assert.Equal(t, "imports/orders/a.csv", h.ArchiveKey)
		assert.NotNil(t, h.CompletedAt)
		assert.GreaterOrEqual(t, h.Duration().Nanoseconds(), int64(0))
	})

	t.Run("reject", func(t *testing.T) {
		h, _ := NewImportHistory("orders.csv", 10)
		errs := []ValidationError{{OrderNumber: "ORDER1", Messages: []string{"ShipToName is required"}}}
		require.NoError(t, h.Reject(2, errs))
		assert.Equal(t, ImportStatusRejected, h.Status)
		assert.Equal(t, 1, h.RejectedRows)
		assert.Equal(t, 0, h.ImportedRows)
	})

	t.Run("fail", func(t *testing.T) {
		h, _ := NewImportHistory("orders.csv", 10)
		require.NoError(t, h.Fail("connection refused"))
		assert.Equal(t, ImportStatusFailed, h.Status)
		assert.Equal(t, "connection refused", h.FailureReason)
	})

	t.Run("terminal state is final", func(t *testing.T) {
		h, _ := NewImportHistory("orders.csv", 10)
		require.NoError(t, h.Complete(1, 1, ""))
		assert.Error(t, h.Fail("late"))
		assert.Error(t, h.Reject(1, nil))
		assert.Error(t, h.Complete(1, 1, ""))
	})
}

func TestImportHistory_ErrorDetailsJSON(t *testing.T) {
	h, _ := NewImportHistory("orders.csv", 10)

	s, err := h.ErrorDetailsJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	h.ErrorDetails = []ValidationError{{OrderNumber: "ORDER1", Messages: []string{"Sku is required"}}}
	s, err = h.ErrorDetailsJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"order_number":"ORDER1","messages":["Sku is required"]}]`, s)

	other, _ := NewImportHistory("orders.csv", 10)
	require.NoError(t, other.SetErrorDetailsFromJSON(s))
	assert.Equal(t, h.ErrorDetails, other.ErrorDetails)

	assert.Error(t, other.SetErrorDetailsFromJSON("{not json"))
}
