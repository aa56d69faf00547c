// Package conversation keeps the message history between two users in sync
// with the store: one history load plus a live subscription to inserts.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oggyb/muzz-chat/internal/account"
	"github.com/oggyb/muzz-chat/internal/db"
	svcErr "github.com/oggyb/muzz-chat/internal/errors"
	"github.com/oggyb/muzz-chat/internal/gateway"
	"github.com/oggyb/muzz-chat/internal/metrics"
)

var (
	// ErrAlreadyOpen is returned by Open on a channel that has not been
	// closed since the last Open.
	ErrAlreadyOpen = errors.New("conversation already open")
	// ErrNotOpen is returned by Send before Open or after Close.
	ErrNotOpen = errors.New("conversation not open")
	// ErrClosed is returned by Open when Close ran while it was loading.
	ErrClosed = errors.New("conversation closed while opening")
)

// Listener is told about every message appended by a live delivery or an
// optimistic send. seq is the message's index in History. It runs with the
// channel locked and must not call back into the Channel.
type Listener func(seq int, m db.Message)

type Option func(*Channel)

func WithListener(fn Listener) Option {
	return func(c *Channel) { c.listener = fn }
}

// WithOptimisticSend makes Send append the sent message right away instead
// of waiting for the store to echo it back.
func WithOptimisticSend(on bool) Option {
	return func(c *Channel) { c.optimistic = on }
}

// WithMaxLength caps message length in characters.
func WithMaxLength(n int) Option {
	return func(c *Channel) { c.maxLen = n }
}

// Channel is one user's live view of a conversation with one partner.
//
// Every Open starts a new generation. Deliveries and load results carry the
// generation they were started under and are dropped if it is no longer
// current, so nothing from a closed activation reaches the history.
type Channel struct {
	gw         *gateway.Gateway
	log        *slog.Logger
	current    db.User
	listener   Listener
	optimistic bool
	maxLen     int

	mu      sync.Mutex
	gen     uint64
	loading bool
	active  bool
	partner db.User
	history []db.Message
	seen    map[string]struct{}
	pending []db.Message
	sub     *gateway.Subscription
}

// New returns a closed channel for current.
func New(gw *gateway.Gateway, current db.User, log *slog.Logger, opts ...Option) *Channel {
	c := &Channel{
		gw:         gw,
		log:        log.With("user_id", current.ID),
		current:    current,
		optimistic: true,
		maxLen:     defaultMaxLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open loads the partner and the pair's history and starts live delivery.
//
// The subscription is established before history is read; anything it
// delivers during the read is merged afterwards, skipping ids the read
// already returned. A missing partner is reported as a NotFound StoreError.
func (c *Channel) Open(ctx context.Context, partnerID uint64) error {
	if partnerID == c.current.ID {
		return svcErr.Validation("partner", "cannot chat with yourself")
	}

	c.mu.Lock()
	if c.active || c.loading {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.gen++
	gen := c.gen
	c.loading = true
	c.partner = db.User{}
	c.history = nil
	c.seen = make(map[string]struct{})
	c.pending = nil
	c.mu.Unlock()

	partner, err := account.FindUser(ctx, c.gw, partnerID)
	if err != nil {
		c.abort(gen)
		return fmt.Errorf("load partner %d: %w", partnerID, err)
	}

	sub, err := gateway.Subscribe(ctx, c.gw, db.TableMessages, pairFilter(c.current.ID, partnerID),
		func(m db.Message) { c.deliver(gen, m) })
	if err != nil {
		c.abort(gen)
		return fmt.Errorf("subscribe to conversation: %w", err)
	}

	msgs, err := History(ctx, c.gw, c.current.ID, partnerID)
	if err != nil {
		_ = sub.Close()
		c.abort(gen)
		return fmt.Errorf("load history: %w", err)
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		_ = sub.Close()
		return ErrClosed
	}
	c.partner = partner
	c.sub = sub
	for _, m := range msgs {
		c.appendLocked(m)
	}
	for _, m := range c.pending {
		if _, dup := c.seen[m.ID]; dup {
			metrics.MessagesDuplicate.Inc()
			continue
		}
		c.appendLocked(m)
	}
	c.pending = nil
	c.loading = false
	c.active = true
	n := len(c.history)
	c.mu.Unlock()

	c.log.Debug("conversation opened", "partner_id", partnerID, "messages", n)
	return nil
}

// abort undoes a failed Open unless Close already did.
func (c *Channel) abort(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		c.loading = false
		c.pending = nil
	}
}

// deliver appends m once. Deliveries from another generation, or while
// closed, are discarded.
func (c *Channel) deliver(gen uint64, m db.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case gen != c.gen || (!c.active && !c.loading):
		metrics.MessagesDiscarded.Inc()
		return
	case c.loading:
		c.pending = append(c.pending, m)
		return
	}

	if _, dup := c.seen[m.ID]; dup {
		metrics.MessagesDuplicate.Inc()
		return
	}
	seq := c.appendLocked(m)
	metrics.MessagesDelivered.Inc()
	if c.listener != nil {
		c.listener(seq, m)
	}
}

func (c *Channel) appendLocked(m db.Message) int {
	c.seen[m.ID] = struct{}{}
	c.history = append(c.history, m)
	return len(c.history) - 1
}

// Send posts content to the partner. Empty or whitespace-only content is a
// ValidationError and nothing is sent. On error nothing is appended and the
// caller keeps its draft.
func (c *Channel) Send(ctx context.Context, content string) (db.Message, error) {
	text, err := CleanContent(content, c.maxLen)
	if err != nil {
		return db.Message{}, err
	}

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return db.Message{}, ErrNotOpen
	}
	gen := c.gen
	partnerID := c.partner.ID
	c.mu.Unlock()

	msg, err := Post(ctx, c.gw, c.current.ID, partnerID, text)
	if err != nil {
		return db.Message{}, err
	}
	if c.optimistic {
		// the echo carries the same id and is dropped as a duplicate
		c.deliver(gen, msg)
	}
	return msg, nil
}

// Close stops live delivery. Results of calls still in flight are dropped.
func (c *Channel) Close() error {
	c.mu.Lock()
	c.gen++
	c.active = false
	c.loading = false
	c.pending = nil
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if sub == nil {
		return nil
	}
	return sub.Close()
}

// History returns a copy of the messages in the order they were appended.
func (c *Channel) History() []db.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]db.Message(nil), c.history...)
}

func (c *Channel) Partner() db.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.partner
}

// Active reports whether the channel is open and receiving.
func (c *Channel) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Done is closed when live delivery stops, by Close or by a dropped
// subscription. It is already closed when the channel is not open.
func (c *Channel) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub == nil {
		return closedCh
	}
	return c.sub.Done()
}

// Err is ErrSubscriptionDropped once live delivery stopped on its own. A
// dropped channel stays that way until it is closed and opened again.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub == nil {
		return nil
	}
	return c.sub.Err()
}

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()
