package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-chat/internal/broker"
	"github.com/oggyb/muzz-chat/internal/config"
	svcErr "github.com/oggyb/muzz-chat/internal/errors"
)

const eventChannelPrefix = "muzz:inserts:"

// EventChannel is the pub/sub channel carrying insert events for table.
func EventChannel(table string) string {
	return eventChannelPrefix + table
}

// Gateway is the only path from the client core to the external store:
// rows live in SQL (gorm), insert events travel over Redis pub/sub.
type Gateway struct {
	db     *gorm.DB
	broker *broker.RedisBroker
	cb     *gobreaker.CircuitBreaker
	log    *slog.Logger
}

// New wires a gateway. Store calls share one circuit breaker that opens after
// cfg.Store.BreakerFailures consecutive transport failures.
func New(cfg *config.Config, database *gorm.DB, b *broker.RedisBroker, log *slog.Logger) *Gateway {
	failures := uint32(5)
	if cfg.Store.BreakerFailures > 0 {
		failures = uint32(cfg.Store.BreakerFailures)
	}
	st := gobreaker.Settings{
		Name:        "store",
		MaxRequests: 1,
		Timeout:     cfg.Store.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("store breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return !tripsBreaker(err)
		},
	}
	return &Gateway{
		db:     database,
		broker: b,
		cb:     gobreaker.NewCircuitBreaker(st),
		log:    log,
	}
}

// Query describes a select. Where filters are ANDed.
type Query struct {
	Table   string
	Columns []string
	Where   []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

func (q Query) build(tx *gorm.DB) *gorm.DB {
	tx = tx.Table(q.Table)
	if len(q.Columns) > 0 {
		tx = tx.Select(q.Columns)
	}
	if exprs := collect(q.Where); len(exprs) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: exprs})
	}
	if q.OrderBy != "" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.OrderBy}, Desc: q.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	return tx
}

// run executes fn through the circuit breaker and classifies its error.
func (g *Gateway) run(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, fn(g.db.WithContext(ctx))
	})
	return classify(op, err)
}

// Select returns every row matching q.
func Select[T any](ctx context.Context, g *Gateway, q Query) ([]T, error) {
	var out []T
	err := g.run(ctx, "select "+q.Table, func(tx *gorm.DB) error {
		return q.build(tx).Find(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SelectOne expects exactly one matching row. Zero rows is a NotFound
// StoreError, more than one is Ambiguous.
func SelectOne[T any](ctx context.Context, g *Gateway, q Query) (T, error) {
	var zero T
	op := "select one " + q.Table

	q.Limit = 2
	rows, err := Select[T](ctx, g, q)
	if err != nil {
		return zero, err
	}
	switch len(rows) {
	case 0:
		return zero, svcErr.Store(svcErr.KindNotFound, op, nil)
	case 1:
		return rows[0], nil
	default:
		return zero, svcErr.Store(svcErr.KindAmbiguous, op, nil)
	}
}

// Insert writes records to table in one statement and returns them with
// store-generated fields filled in. After the insert commits, one event per
// record is published for subscribers of table.
func Insert[T any](ctx context.Context, g *Gateway, table string, records ...T) ([]T, error) {
	if len(records) == 0 {
		return nil, nil
	}
	err := g.run(ctx, "insert "+table, func(tx *gorm.DB) error {
		return tx.Table(table).Create(&records).Error
	})
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		g.publish(ctx, table, r)
	}
	return records, nil
}

// Guard is a condition checked inside an insert's transaction: the insert
// only goes through if no row of Table matches Where.
type Guard struct {
	Table string
	Where []Filter
}

// InsertGuarded is Insert with guard checked in the same transaction. If a
// guard row exists nothing is written and the error is a Constraint
// StoreError, the same kind a key violation on table produces.
func InsertGuarded[T any](ctx context.Context, g *Gateway, guard Guard, table string, records ...T) ([]T, error) {
	if len(records) == 0 {
		return nil, nil
	}
	op := "insert " + table
	err := g.run(ctx, op, func(conn *gorm.DB) error {
		return conn.Transaction(func(tx *gorm.DB) error {
			check := Query{Table: guard.Table, Where: guard.Where}.build(tx)
			if tx.Dialector.Name() == "mysql" {
				check = check.Clauses(clause.Locking{Strength: "SHARE"})
			}
			var n int64
			if err := check.Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return svcErr.Store(svcErr.KindConstraint, op, fmt.Errorf("conflicting row in %s", guard.Table))
			}
			return tx.Table(table).Create(&records).Error
		})
	})
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		g.publish(ctx, table, r)
	}
	return records, nil
}

// publish is best effort: the row is already persisted, and readers that
// miss the event still see the row on their next select.
func (g *Gateway) publish(ctx context.Context, table string, record any) {
	payload, err := json.Marshal(record)
	if err != nil {
		g.log.Error("encode insert event failed", "table", table, "err", err)
		return
	}
	if err := g.broker.Publish(ctx, EventChannel(table), payload); err != nil {
		g.log.Warn("publish insert event failed", "table", table, "err", err)
	}
}
