package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent("budokan-live-2025", "武道館ライブ 2025", 500)

	assert.Equal(t, "budokan-live-2025", event.ID)
	assert.Equal(t, "武道館ライブ 2025", event.Name)
	assert.Equal(t, 500, event.TotalSeats)
	assert.Equal(t, 500, event.AvailableSeats)
	assert.Equal(t, 0, event.Version)
	assert.NotZero(t, event.CreatedAt)
	assert.NotZero(t, event.UpdatedAt)
}

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name        string
		event       *Event
		expectedErr error
	}{
		{
			name:        "有効なイベント",
			event:       &Event{ID: "ev-1", Name: "テストイベント", TotalSeats: 100, AvailableSeats: 100},
			expectedErr: nil,
		},
		{
			name:        "IDが空",
			event:       &Event{Name: "テストイベント", TotalSeats: 100, AvailableSeats: 100},
			expectedErr: ErrEventIDRequired,
		},
		{
			name:        "イベント名が空",
			event:       &Event{ID: "ev-1", TotalSeats: 100, AvailableSeats: 100},
			expectedErr: ErrEventNameRequired,
		},
		{
			name:        "座席数が0",
			event:       &Event{ID: "ev-1", Name: "テストイベント", TotalSeats: 0},
			expectedErr: ErrInvalidTotalSeats,
		},
		{
			name:        "空席数が負",
			event:       &Event{ID: "ev-1", Name: "テストイベント", TotalSeats: 100, AvailableSeats: -1},
			expectedErr: ErrSeatAccountingBroken,
		},
		{
			name:        "空席数が総座席数を超える",
			event:       &Event{ID: "ev-1", Name: "テストイベント", TotalSeats: 100, AvailableSeats: 101},
			expectedErr: ErrSeatAccountingBroken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEvent_Reserve(t *testing.T) {
	t.Run("空席がある場合は減算される", func(t *testing.T) {
		event := NewEvent("ev-1", "テストイベント", 10)

		err := event.Reserve(3)

		require.NoError(t, err)
		assert.Equal(t, 7, event.AvailableSeats)
	})

	t.Run("空席をちょうど使い切れる", func(t *testing.T) {
		event := NewEvent("ev-1", "テストイベント", 500)

		err := event.Reserve(500)

		require.NoError(t, err)
		assert.Equal(t, 0, event.AvailableSeats)
	})

	t.Run("空席不足の場合はErrInsufficientSeats", func(t *testing.T) {
		event := NewEvent("ev-1", "テストイベント", 500)
		require.NoError(t, event.Reserve(500))

		err := event.Reserve(1)

		assert.ErrorIs(t, err, ErrInsufficientSeats)
		assert.Equal(t, 0, event.AvailableSeats)
	})

	t.Run("座席数が0以下の場合はErrInvalidSeatCount", func(t *testing.T) {
		event := NewEvent("ev-1", "テストイベント", 10)

		assert.ErrorIs(t, event.Reserve(0), ErrInvalidSeatCount)
		assert.ErrorIs(t, event.Reserve(-1), ErrInvalidSeatCount)
		assert.Equal(t, 10, event.AvailableSeats)
	})
}

func TestEvent_Restore(t *testing.T) {
	t.Run("キャンセル分の座席が戻る", func(t *testing.T) {
		event := NewEvent("ev-1", "テストイベント", 10)
		require.NoError(t, event.Reserve(4))

		err := event.Restore(4)

		require.NoError(t, err)
		assert.Equal(t, 10, event.AvailableSeats)
	})

	t.Run("総座席数を超える復元はErrSeatAccountingBroken", func(t *testing.T) {
		event := NewEvent("ev-1", "テストイベント", 10)
		require.NoError(t, event.Reserve(2))

		err := event.Restore(3)

		assert.ErrorIs(t, err, ErrSeatAccountingBroken)
		assert.Equal(t, 8, event.AvailableSeats)
	})

	t.Run("座席数が0以下の場合はErrInvalidSeatCount", func(t *testing.T) {
		event := NewEvent("ev-1", "テストイベント", 10)

		assert.ErrorIs(t, event.Restore(0), ErrInvalidSeatCount)
	})
}
