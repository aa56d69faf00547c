package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	svcErr "github.com/oggyb/muzz-chat/internal/errors"
	"github.com/oggyb/muzz-chat/internal/metrics"
)

// Subscription delivers insert events for one table until closed or dropped.
type Subscription struct {
	table string
	ps    *redis.PubSub
	log   *slog.Logger

	done chan struct{}

	mu     sync.Mutex
	closed bool
	err    error
}

// Subscribe calls fn once for every row inserted into table that matches
// filter. A nil filter matches every row. Events are decoded into T; rows that
// do not decode are logged and skipped.
//
// fn runs on the subscription's own goroutine, one event at a time.
func Subscribe[T any](ctx context.Context, g *Gateway, table string, filter Filter, fn func(T)) (*Subscription, error) {
	op := "subscribe " + table
	res, err := g.cb.Execute(func() (interface{}, error) {
		return g.broker.Subscribe(ctx, EventChannel(table))
	})
	if err != nil {
		return nil, svcErr.Store(svcErr.KindTransport, op, err)
	}

	s := &Subscription{
		table: table,
		ps:    res.(*redis.PubSub),
		log:   g.log.With("table", table),
		done:  make(chan struct{}),
	}
	go s.loop(func(payload string) {
		row, ok := decodeRow(payload)
		if !ok {
			s.log.Warn("skipping undecodable insert event")
			return
		}
		if filter != nil && !filter.Match(row) {
			return
		}
		var rec T
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			s.log.Warn("skipping insert event", "err", err)
			return
		}
		fn(rec)
	})
	return s, nil
}

func (s *Subscription) loop(handle func(payload string)) {
	defer close(s.done)
	for {
		msg, err := s.ps.Receive(context.Background())
		if err != nil {
			s.mu.Lock()
			defer s.mu.Unlock()
			if !s.closed {
				s.err = svcErr.ErrSubscriptionDropped
				metrics.SubscriptionsDropped.Inc()
				s.log.Warn("subscription dropped", "err", err)
			}
			return
		}

		m, ok := msg.(*redis.Message)
		if !ok {
			// subscribe confirmations and pongs
			continue
		}
		if s.isClosed() {
			return
		}
		handle(m.Payload)
	}
}

func (s *Subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close detaches from the event stream and waits for the delivery goroutine
// to exit. No callback runs after Close returns. Safe to call more than once,
// but not from inside the callback.
func (s *Subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.ps.Close()
	<-s.done
	return err
}

// Done is closed once the subscription has stopped delivering, whether it was
// closed or dropped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err is ErrSubscriptionDropped if the stream ended without Close, nil
// otherwise.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func decodeRow(payload string) (Row, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	var row Row
	if err := dec.Decode(&row); err != nil {
		return nil, false
	}
	return row, true
}
