// Package chat polls a chat transport for questions and posts the agent's
// answers back.
package chat

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AlbeMasera/ATAI/internal/config"
	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

type Room struct {
	ID        string
	MyAlias   string
	Initiated bool
}

type Message struct {
	RoomID  string
	Ordinal int
	Text    string
}

type Reaction struct {
	RoomID         string
	MessageOrdinal int
	Type           string
}

// Transport is a chat service the listener polls. Messages and Reactions
// return only items from the partner that are not yet marked processed.
type Transport interface {
	Rooms(ctx context.Context) ([]Room, error)
	Messages(ctx context.Context, roomID string) ([]Message, error)
	Reactions(ctx context.Context, roomID string) ([]Reaction, error)
	PostReply(ctx context.Context, roomID, text string) error
	MarkInitiated(ctx context.Context, roomID string) error
	MarkMessageProcessed(ctx context.Context, msg Message) error
	MarkReactionProcessed(ctx context.Context, r Reaction) error
}

type Answerer interface {
	Answer(ctx context.Context, query string) model.Answer
}

var ackTemplates = []string{
	"Good question, let's see...",
	"I hear you, let me quickly have a look.",
	"Interesting query, I'm on it!",
	"Hmm, checking now...",
}

func welcome(alias string) string {
	return fmt.Sprintf("Hello and welcome! This is %s. I'm happy to answer your questions, ask away :)", alias)
}

func thanks(reaction string) string {
	return fmt.Sprintf("Oh wow.. Thanks for the reaction '%s'.", reaction)
}

const (
	defaultInterval    = 2 * time.Second
	defaultConcurrency = 4
)

// Listener answers every room in parallel, up to a fixed number of rooms at
// a time. Messages inside a room are answered in order.
type Listener struct {
	transport   Transport
	agent       Answerer
	interval    time.Duration
	concurrency int
}

func NewListener(transport Transport, agent Answerer, cfg config.ChatConfig) *Listener {
	l := &Listener{
		transport:   transport,
		agent:       agent,
		interval:    cfg.PollInterval(),
		concurrency: cfg.Concurrency,
	}
	if l.interval <= 0 {
		l.interval = defaultInterval
	}
	if l.concurrency <= 0 {
		l.concurrency = defaultConcurrency
	}
	return l
}

// Serve polls until ctx is cancelled. Poll errors are logged and retried on
// the next tick.
func (l *Listener) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if err := l.Poll(ctx); err != nil && ctx.Err() == nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("chat poll failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Listener) String() string { return "chat-listener" }

// Poll runs a single pass over all rooms. A failing room does not cancel
// the others; Poll returns the first room error once every room is done.
func (l *Listener) Poll(ctx context.Context) error {
	rooms, err := l.transport.Rooms(ctx)
	if err != nil {
		return fmt.Errorf("failed to list rooms: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for _, room := range rooms {
		room := room
		g.Go(func() error {
			err := l.serveRoom(ctx, room)
			if err != nil && ctx.Err() == nil {
				logging.Ctx(ctx).Warn().Err(err).Str("room", room.ID).Msg("room skipped this pass")
			}
			return err
		})
	}
	return g.Wait()
}

func (l *Listener) serveRoom(ctx context.Context, room Room) error {
	if !room.Initiated {
		if err := l.transport.PostReply(ctx, room.ID, welcome(room.MyAlias)); err != nil {
			return fmt.Errorf("room %s: %w", room.ID, err)
		}
		if err := l.transport.MarkInitiated(ctx, room.ID); err != nil {
			return fmt.Errorf("room %s: %w", room.ID, err)
		}
	}

	messages, err := l.transport.Messages(ctx, room.ID)
	if err != nil {
		return fmt.Errorf("room %s: failed to get messages: %w", room.ID, err)
	}
	for _, msg := range messages {
		if err := l.handleMessage(ctx, msg); err != nil {
			return fmt.Errorf("room %s: %w", room.ID, err)
		}
	}

	reactions, err := l.transport.Reactions(ctx, room.ID)
	if err != nil {
		return fmt.Errorf("room %s: failed to get reactions: %w", room.ID, err)
	}
	for _, r := range reactions {
		if err := l.transport.PostReply(ctx, room.ID, thanks(r.Type)); err != nil {
			return fmt.Errorf("room %s: %w", room.ID, err)
		}
		if err := l.transport.MarkReactionProcessed(ctx, r); err != nil {
			return fmt.Errorf("room %s: %w", room.ID, err)
		}
	}
	return nil
}

func (l *Listener) handleMessage(ctx context.Context, msg Message) error {
	ctx = logging.ContextWithRequestID(ctx, logging.NewRequestID())
	logging.Ctx(ctx).Info().
		Str("room", msg.RoomID).
		Int("ordinal", msg.Ordinal).
		Str("text", msg.Text).
		Msg("new message")

	ack := ackTemplates[msg.Ordinal%len(ackTemplates)]
	if err := l.transport.PostReply(ctx, msg.RoomID, ack); err != nil {
		return err
	}

	answer := l.agent.Answer(ctx, msg.Text)
	if err := l.transport.PostReply(ctx, msg.RoomID, answer.Text()); err != nil {
		return err
	}
	return l.transport.MarkMessageProcessed(ctx, msg)
}
