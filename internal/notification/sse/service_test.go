package sse

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishToRoomReachesMembersOnly(t *testing.T) {
	s := New(nil)
	board := &client{userID: uuid.New(), rooms: []string{"pipeline"}, events: make(chan Event, 1)}
	other := &client{userID: uuid.New(), rooms: []string{"finance"}, events: make(chan Event, 1)}
	s.addClient(board)
	s.addClient(other)

	require.NoError(t, s.PublishToRoom("pipeline", "lead-archived", map[string]string{"id": "1"}))

	select {
	case evt := <-board.events:
		assert.Equal(t, "lead-archived", evt.Type)
		assert.Equal(t, "pipeline", evt.Room)
	default:
		t.Fatal("expected event for pipeline member")
	}
	assert.Empty(t, other.events)
}

func TestPublishToEmptyRoomIsNotAnError(t *testing.T) {
	assert.NoError(t, New(nil).PublishToRoom("pipeline", "lead-created", nil))
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	s := New(nil)
	c := &client{userID: uuid.New(), rooms: []string{"pipeline"}, events: make(chan Event, 1)}
	s.addClient(c)

	require.NoError(t, s.PublishToRoom("pipeline", "a", nil))
	require.NoError(t, s.PublishToRoom("pipeline", "b", nil))

	assert.Len(t, c.events, 1)
	assert.Equal(t, "a", (<-c.events).Type)
}

func TestRemoveClientLeavesRooms(t *testing.T) {
	s := New(nil)
	userID := uuid.New()
	c := &client{userID: userID, rooms: []string{"pipeline"}, events: make(chan Event, 1)}
	s.addClient(c)
	require.Equal(t, 1, s.RoomSize("pipeline"))

	s.removeClient(c)
	assert.Zero(t, s.RoomSize("pipeline"))

	s.Publish(userID, Event{Type: EventInAppNotification})
	assert.Empty(t, c.events)
}

func TestParseRooms(t *testing.T) {
	assert.Equal(t, []string{"pipeline", "vendors"}, ParseRooms(" pipeline,,vendors,pipeline "))
	assert.Empty(t, ParseRooms(""))
}
