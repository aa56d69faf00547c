package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/muzz-chat/internal/db"
	svcErr "github.com/oggyb/muzz-chat/internal/errors"
	"github.com/oggyb/muzz-chat/internal/gateway"
	"github.com/oggyb/muzz-chat/internal/metrics"
)

// ErrAlreadyJudged means current has already liked or disliked target. It
// wraps the store's constraint violation.
var ErrAlreadyJudged = errors.New("target already judged")

// Engine computes candidate pools and records judgments.
type Engine struct {
	gw  *gateway.Gateway
	log *slog.Logger
}

func NewEngine(gw *gateway.Gateway, log *slog.Logger) *Engine {
	return &Engine{gw: gw, log: log}
}

// Candidates returns users of the opposite gender that current has neither
// liked nor disliked, ordered by id.
func (e *Engine) Candidates(ctx context.Context, current db.User) ([]db.User, error) {
	judged, err := e.judgedTargets(ctx, current.ID)
	if err != nil {
		return nil, err
	}

	users, err := gateway.Select[db.User](ctx, e.gw, gateway.Query{
		Table:   db.TableUsers,
		Columns: db.UserColumns,
		Where: []gateway.Filter{
			gateway.Eq("gender", current.Gender.Opposite()),
			gateway.NotIn("id", judged),
		},
		OrderBy: "id",
	})
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return users, nil
}

// judgedTargets is the de-duplicated union of everyone userID liked or
// disliked. Both sides are fetched concurrently.
func (e *Engine) judgedTargets(ctx context.Context, userID uint64) ([]uint64, error) {
	var liked, disliked []uint64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		liked, err = targetsOf(gctx, e.gw, db.TableLikes, userID)
		return err
	})
	g.Go(func() (err error) {
		disliked, err = targetsOf(gctx, e.gw, db.TableDislikes, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load judged users: %w", err)
	}

	seen := make(map[uint64]struct{}, len(liked)+len(disliked))
	out := make([]uint64, 0, len(liked)+len(disliked))
	for _, id := range append(liked, disliked...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// RecordJudgment appends current -> target to likes or dislikes. For a like,
// mutual reports whether target already likes current.
//
// Likes and dislikes are disjoint: a second judgment of the same pair, in
// either table, fails with ErrAlreadyJudged and nothing is written.
func (e *Engine) RecordJudgment(ctx context.Context, current, target db.User, liked bool) (mutual bool, err error) {
	if current.ID == target.ID {
		return false, svcErr.Validation("target", "cannot judge yourself")
	}

	edge := db.Judgment{UserID: current.ID, TargetUserID: target.ID}
	guard := gateway.Guard{
		Where: []gateway.Filter{
			gateway.Eq("user_id", current.ID),
			gateway.Eq("target_user_id", target.ID),
		},
	}
	kind := "dislike"
	if liked {
		kind = "like"
		guard.Table = db.TableDislikes
		_, err = gateway.InsertGuarded(ctx, e.gw, guard, db.TableLikes, db.Like{Judgment: edge})
	} else {
		guard.Table = db.TableLikes
		_, err = gateway.InsertGuarded(ctx, e.gw, guard, db.TableDislikes, db.Dislike{Judgment: edge})
	}
	if err != nil {
		if errors.Is(err, svcErr.ErrConstraint) {
			metrics.Judgments.WithLabelValues("duplicate").Inc()
			return false, fmt.Errorf("%w: %w", ErrAlreadyJudged, err)
		}
		return false, fmt.Errorf("record %s: %w", kind, err)
	}
	metrics.Judgments.WithLabelValues(kind).Inc()

	if !liked {
		return false, nil
	}

	mutual, err = likes(ctx, e.gw, target.ID, current.ID)
	if err != nil {
		// the like is stored; only the hint failed
		e.log.Warn("mutual check failed", "user_id", current.ID, "target_id", target.ID, "err", err)
		return false, nil
	}
	if mutual {
		e.log.Info("mutual match", "user_id", current.ID, "target_id", target.ID)
	}
	return mutual, nil
}

// Start fetches the candidate pool once and returns a pass over it.
func (e *Engine) Start(ctx context.Context, current db.User) (*Pass, error) {
	candidates, err := e.Candidates(ctx, current)
	if err != nil {
		return nil, err
	}
	return &Pass{engine: e, current: current, candidates: candidates}, nil
}

// targetsOf lists target_user_id of every edge in table starting at userID.
func targetsOf(ctx context.Context, gw *gateway.Gateway, table string, userID uint64) ([]uint64, error) {
	rows, err := gateway.Select[db.Judgment](ctx, gw, gateway.Query{
		Table:   table,
		Columns: []string{"user_id", "target_user_id"},
		Where:   []gateway.Filter{gateway.Eq("user_id", userID)},
	})
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(rows))
	for i, r := range rows {
		ids[i] = r.TargetUserID
	}
	return ids, nil
}

// likersOf lists user_id of everyone who liked userID.
func likersOf(ctx context.Context, gw *gateway.Gateway, userID uint64) ([]uint64, error) {
	rows, err := gateway.Select[db.Judgment](ctx, gw, gateway.Query{
		Table:   db.TableLikes,
		Columns: []string{"user_id", "target_user_id"},
		Where:   []gateway.Filter{gateway.Eq("target_user_id", userID)},
	})
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(rows))
	for i, r := range rows {
		ids[i] = r.UserID
	}
	return ids, nil
}

func likes(ctx context.Context, gw *gateway.Gateway, from, to uint64) (bool, error) {
	rows, err := gateway.Select[db.Judgment](ctx, gw, gateway.Query{
		Table:   db.TableLikes,
		Columns: []string{"user_id", "target_user_id"},
		Where: []gateway.Filter{
			gateway.Eq("user_id", from),
			gateway.Eq("target_user_id", to),
		},
		Limit: 1,
	})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
