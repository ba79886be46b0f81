package game

import (
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestPlayer() (*Player, chan envelope, chan string) {
	p := NewPlayer("p1", zerolog.Nop())
	room := make(chan envelope, 16)
	removals := make(chan string, 1)
	p.roomChan = room
	p.removeMe = removals
	return p, room, removals
}

func recvEnvelope(t *testing.T, ch chan envelope) envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("no envelope forwarded")
		return envelope{}
	}
}

func TestPlayer_ReadPumpForwardsPackets(t *testing.T) {
	t.Parallel()
	p, room, removals := newTestPlayer()

	conn := &MockConn{}
	conn.On("Read").Return([]byte(`{"type":"submitGuess","data":{"text":"gato"}}`), nil).Once()
	conn.On("Read").Return([]byte(nil), io.EOF).Once()
	conn.On("Close").Return(nil)

	p.ReadPump(conn)

	env := recvEnvelope(t, room)
	assert.Equal(t, "p1", env.from)
	assert.Equal(t, PacketSubmitGuess, env.packet.Type)

	var guess GuessPayload
	require.NoError(t, json.Unmarshal(env.packet.Data, &guess))
	assert.Equal(t, "gato", guess.Text)

	// the read error must surface as a removal request
	assert.Equal(t, "p1", <-removals)
	conn.AssertExpectations(t)
}

func TestPlayer_ReadPumpSkipsMalformedPackets(t *testing.T) {
	t.Parallel()
	p, room, _ := newTestPlayer()

	conn := &MockConn{}
	conn.On("Read").Return([]byte(`{not json`), nil).Once()
	conn.On("Read").Return([]byte(`{"type":"clearCanvas"}`), nil).Once()
	conn.On("Read").Return([]byte(nil), io.EOF).Once()
	conn.On("Close").Return(nil)

	p.ReadPump(conn)

	env := recvEnvelope(t, room)
	assert.Equal(t, PacketClearCanvas, env.packet.Type)
	assert.Empty(t, room)
	conn.AssertExpectations(t)
}

func TestPlayer_ReadPumpRateLimitsGuesses(t *testing.T) {
	t.Parallel()
	p, room, _ := newTestPlayer()
	// two tokens, no refill, so exactly two guesses pass
	p.limiter = rate.NewLimiter(0, 2)

	conn := &MockConn{}
	conn.On("Read").Return([]byte(`{"type":"submitGuess","data":{"text":"a"}}`), nil).Times(4)
	conn.On("Read").Return([]byte(nil), io.EOF).Once()
	conn.On("Close").Return(nil)

	p.ReadPump(conn)

	assert.Len(t, room, 2)
	conn.AssertExpectations(t)
}

func TestPlayer_ReadPumpNeverLimitsStrokes(t *testing.T) {
	t.Parallel()
	p, room, _ := newTestPlayer()
	p.limiter = rate.NewLimiter(0, 0)

	conn := &MockConn{}
	conn.On("Read").Return([]byte(`{"type":"drawStroke","data":{"points":[]}}`), nil).Times(3)
	conn.On("Read").Return([]byte(nil), io.EOF).Once()
	conn.On("Close").Return(nil)

	p.ReadPump(conn)

	assert.Len(t, room, 3)
	conn.AssertExpectations(t)
}

func TestPlayer_WritePumpDeliversQueuedEvents(t *testing.T) {
	t.Parallel()
	p, _, _ := newTestPlayer()

	written := make(chan []byte, 16)
	conn := &MockConn{}
	conn.On("Write", mock.Anything).Run(func(args mock.Arguments) {
		written <- args.Get(0).([]byte)
	}).Return(nil)
	conn.On("Close").Return(nil)

	require.NoError(t, p.Send(MakeCanvasCleared()))

	done := make(chan struct{})
	go func() {
		p.WritePump(conn)
		close(done)
	}()

	select {
	case data := <-written:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, EventCanvasCleared, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("event never written")
	}

	p.CancelAndRelease()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("write pump never exited")
	}
}

func TestPlayer_WritePumpDrainsOutboxOnRelease(t *testing.T) {
	t.Parallel()
	p, _, _ := newTestPlayer()

	written := make(chan []byte, 16)
	conn := &MockConn{}
	conn.On("Write", mock.Anything).Run(func(args mock.Arguments) {
		written <- args.Get(0).([]byte)
	}).Return(nil)
	conn.On("Close").Return(nil)

	// queued before the pump starts, the way a room-full rejection is
	require.NoError(t, p.Send(MakeRoomFull()))
	p.CancelAndRelease()

	p.WritePump(conn)

	select {
	case data := <-written:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, EventRoomFull, ev.Type)
	default:
		t.Fatal("queued event was not drained")
	}
}

func TestPlayer_WritePumpWriteErrorRequestsRemoval(t *testing.T) {
	t.Parallel()
	p, _, removals := newTestPlayer()

	conn := &MockConn{}
	conn.On("Write", mock.Anything).Return(errors.New("broken pipe"))
	conn.On("Close").Return(nil)

	require.NoError(t, p.Send(MakeCanvasCleared()))
	p.WritePump(conn)

	assert.Equal(t, "p1", <-removals)
	conn.AssertExpectations(t)
}

func TestPlayer_WritePumpForwardsPings(t *testing.T) {
	t.Parallel()
	p, _, _ := newTestPlayer()

	pinged := make(chan struct{}, 1)
	conn := &MockConn{}
	conn.On("Ping").Run(func(mock.Arguments) {
		pinged <- struct{}{}
	}).Return(nil)
	conn.On("Close").Return(nil)

	require.NoError(t, p.Ping())

	done := make(chan struct{})
	go func() {
		p.WritePump(conn)
		close(done)
	}()

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("ping never reached the connection")
	}

	p.CancelAndRelease()
	<-done
}

func TestPlayer_SendBufferFull(t *testing.T) {
	t.Parallel()
	p := NewPlayer("p1", zerolog.Nop())
	for i := 0; i < outboxSize; i++ {
		require.NoError(t, p.Send(MakeCanvasCleared()))
	}
	assert.ErrorIs(t, p.Send(MakeCanvasCleared()), ErrSendBufferFull)
}
