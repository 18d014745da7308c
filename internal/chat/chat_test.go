package chat

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlbeMasera/ATAI/internal/config"
	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

type MockTransport struct {
	mu        sync.Mutex
	rooms     []Room
	messages  map[string][]Message
	reactions map[string][]Reaction
	Posted    map[string][]string
	Processed []int
	RoomsErr  error

	// MessagesErr fails Messages for the given rooms.
	MessagesErr map[string]error
}

func NewMockTransport(rooms ...Room) *MockTransport {
	return &MockTransport{
		rooms:     rooms,
		messages:  make(map[string][]Message),
		reactions: make(map[string][]Reaction),
		Posted:    make(map[string][]string),
	}
}

func (m *MockTransport) Rooms(ctx context.Context) ([]Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Room(nil), m.rooms...), m.RoomsErr
}

func (m *MockTransport) Messages(ctx context.Context, roomID string) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.MessagesErr[roomID]; err != nil {
		return nil, err
	}
	return append([]Message(nil), m.messages[roomID]...), nil
}

func (m *MockTransport) Reactions(ctx context.Context, roomID string) ([]Reaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Reaction(nil), m.reactions[roomID]...), nil
}

func (m *MockTransport) PostReply(ctx context.Context, roomID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Posted[roomID] = append(m.Posted[roomID], text)
	return nil
}

func (m *MockTransport) MarkInitiated(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rooms {
		if m.rooms[i].ID == roomID {
			m.rooms[i].Initiated = true
		}
	}
	return nil
}

func (m *MockTransport) MarkMessageProcessed(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Processed = append(m.Processed, msg.Ordinal)
	msgs := m.messages[msg.RoomID]
	for i := range msgs {
		if msgs[i].Ordinal == msg.Ordinal {
			m.messages[msg.RoomID] = append(msgs[:i:i], msgs[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockTransport) MarkReactionProcessed(ctx context.Context, r Reaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reactions, r.RoomID)
	return nil
}

type EchoAgent struct{}

func (EchoAgent) Answer(ctx context.Context, query string) model.Answer {
	return model.NewAnswer("You asked: " + query)
}

// SlowAgent answers after Delay, or apologizes when ctx ends first.
type SlowAgent struct {
	Delay time.Duration
}

func (a SlowAgent) Answer(ctx context.Context, query string) model.Answer {
	select {
	case <-ctx.Done():
		return model.Apology()
	case <-time.After(a.Delay):
	}
	return model.NewAnswer("You asked: " + query)
}

func TestPollWelcomesAnswersAndThanks(t *testing.T) {
	tr := NewMockTransport(Room{ID: "r1", MyAlias: "kindle-bot"})
	tr.messages["r1"] = []Message{
		{RoomID: "r1", Ordinal: 0, Text: "Who directed Inception?"},
		{RoomID: "r1", Ordinal: 1, Text: "And Dunkirk?"},
	}
	tr.reactions["r1"] = []Reaction{{RoomID: "r1", MessageOrdinal: 1, Type: "THUMBS_UP"}}

	l := NewListener(tr, EchoAgent{}, config.ChatConfig{})
	require.NoError(t, l.Poll(context.Background()))

	assert.Equal(t, []string{
		"Hello and welcome! This is kindle-bot. I'm happy to answer your questions, ask away :)",
		"Good question, let's see...",
		"You asked: Who directed Inception?",
		"I hear you, let me quickly have a look.",
		"You asked: And Dunkirk?",
		"Oh wow.. Thanks for the reaction 'THUMBS_UP'.",
	}, tr.Posted["r1"])
	assert.Equal(t, []int{0, 1}, tr.Processed)

	// second pass has nothing new
	require.NoError(t, l.Poll(context.Background()))
	assert.Len(t, tr.Posted["r1"], 6)
}

func TestPollServesRoomsIndependently(t *testing.T) {
	tr := NewMockTransport(Room{ID: "a", Initiated: true}, Room{ID: "b", Initiated: true})
	tr.messages["a"] = []Message{{RoomID: "a", Ordinal: 2, Text: "q1"}}
	tr.messages["b"] = []Message{{RoomID: "b", Ordinal: 3, Text: "q2"}}

	l := NewListener(tr, EchoAgent{}, config.ChatConfig{Concurrency: 2})
	require.NoError(t, l.Poll(context.Background()))

	assert.Equal(t, []string{"Interesting query, I'm on it!", "You asked: q1."}, tr.Posted["a"])
	assert.Equal(t, []string{"Hmm, checking now...", "You asked: q2."}, tr.Posted["b"])
}

func TestPollFailingRoomDoesNotCancelOthers(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	t.Cleanup(func() { logging.SetLogger(prev) })
	logging.SetLogger(zerolog.New(zerolog.SyncWriter(&buf)))

	tr := NewMockTransport(Room{ID: "a", Initiated: true}, Room{ID: "b", Initiated: true})
	tr.MessagesErr = map[string]error{"a": errors.New("gateway timeout")}
	tr.messages["b"] = []Message{{RoomID: "b", Ordinal: 3, Text: "q2"}}

	l := NewListener(tr, SlowAgent{Delay: 50 * time.Millisecond}, config.ChatConfig{Concurrency: 2})
	err := l.Poll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway timeout")

	assert.Equal(t, []string{"Hmm, checking now...", "You asked: q2."}, tr.Posted["b"])
	assert.Equal(t, []int{3}, tr.Processed)

	logs := buf.String()
	assert.Contains(t, logs, `"text":"q2"`)
	assert.Contains(t, logs, `"room":"a"`)
	assert.NotContains(t, logs, `"message":"q2"`)
}

func TestPollSurfacesTransportErrors(t *testing.T) {
	tr := NewMockTransport()
	tr.RoomsErr = errors.New("connection refused")

	err := NewListener(tr, EchoAgent{}, config.ChatConfig{}).Poll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestServeStopsOnCancel(t *testing.T) {
	tr := NewMockTransport()
	l := NewListener(tr, EchoAgent{}, config.ChatConfig{PollIntervalMS: 10})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := l.Serve(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestConsoleTransport(t *testing.T) {
	var out bytes.Buffer
	tr := NewConsoleTransport(strings.NewReader("Who directed Inception?\n\nWho is Tom Hanks?\n"), &out, "atai")
	<-tr.Done()

	l := NewListener(tr, EchoAgent{}, config.ChatConfig{})
	require.NoError(t, l.Poll(context.Background()))

	assert.True(t, tr.Drained())
	text := out.String()
	assert.Contains(t, text, "atai> Hello and welcome! This is atai.")
	assert.Contains(t, text, "atai> You asked: Who directed Inception?")
	assert.Contains(t, text, "atai> You asked: Who is Tom Hanks?")

	rooms, err := tr.Rooms(context.Background())
	require.NoError(t, err)
	assert.True(t, rooms[0].Initiated)
}
