package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

const ConsoleRoom = "console"

// ConsoleTransport is a single-room transport over a reader and a writer.
// Every non-empty input line is one message.
type ConsoleTransport struct {
	out   io.Writer
	alias string

	mu        sync.Mutex
	pending   []Message
	ordinal   int
	initiated bool
	done      chan struct{}
}

// NewConsoleTransport starts reading lines from in. Done is closed once in
// is exhausted.
func NewConsoleTransport(in io.Reader, out io.Writer, alias string) *ConsoleTransport {
	t := &ConsoleTransport{out: out, alias: alias, done: make(chan struct{})}
	go t.read(in)
	return t
}

func (t *ConsoleTransport) read(in io.Reader) {
	defer close(t.done)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		t.mu.Lock()
		t.pending = append(t.pending, Message{RoomID: ConsoleRoom, Ordinal: t.ordinal, Text: line})
		t.ordinal++
		t.mu.Unlock()
	}
}

func (t *ConsoleTransport) Done() <-chan struct{} { return t.done }

// Drained reports whether input is exhausted and every message was answered.
func (t *ConsoleTransport) Drained() bool {
	select {
	case <-t.done:
	default:
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) == 0
}

func (t *ConsoleTransport) Rooms(ctx context.Context) ([]Room, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return []Room{{ID: ConsoleRoom, MyAlias: t.alias, Initiated: t.initiated}}, nil
}

func (t *ConsoleTransport) Messages(ctx context.Context, roomID string) ([]Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.pending...), nil
}

func (t *ConsoleTransport) Reactions(ctx context.Context, roomID string) ([]Reaction, error) {
	return nil, nil
}

func (t *ConsoleTransport) PostReply(ctx context.Context, roomID, text string) error {
	_, err := fmt.Fprintf(t.out, "%s> %s\n", t.alias, text)
	return err
}

func (t *ConsoleTransport) MarkInitiated(ctx context.Context, roomID string) error {
	t.mu.Lock()
	t.initiated = true
	t.mu.Unlock()
	return nil
}

func (t *ConsoleTransport) MarkMessageProcessed(ctx context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, m := range t.pending {
		if m.Ordinal == msg.Ordinal {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			break
		}
	}
	return nil
}

func (t *ConsoleTransport) MarkReactionProcessed(ctx context.Context, r Reaction) error {
	return nil
}
