package match

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/muzz-chat/internal/db"
	"github.com/oggyb/muzz-chat/internal/gateway"
)

// Resolver derives matches from the two like directions. It keeps no state:
// every call reads the store again.
type Resolver struct {
	gw *gateway.Gateway
}

func NewResolver(gw *gateway.Gateway) *Resolver {
	return &Resolver{gw: gw}
}

// Matches returns every user that current likes and who likes current back,
// ordered by id. No matches is an empty result, not an error.
func (r *Resolver) Matches(ctx context.Context, current db.User) ([]db.User, error) {
	var liked, likedBy []uint64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		liked, err = targetsOf(gctx, r.gw, db.TableLikes, current.ID)
		return err
	})
	g.Go(func() (err error) {
		likedBy, err = likersOf(gctx, r.gw, current.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}

	ids := Mutual(liked, likedBy)
	if len(ids) == 0 {
		return []db.User{}, nil
	}

	users, err := gateway.Select[db.User](ctx, r.gw, gateway.Query{
		Table:   db.TableUsers,
		Columns: db.UserColumns,
		Where:   []gateway.Filter{gateway.In("id", ids)},
		OrderBy: "id",
	})
	if err != nil {
		return nil, fmt.Errorf("load matched users: %w", err)
	}
	return users, nil
}

// Mutual returns the ids present in both sets, in the order of liked and
// without duplicates.
func Mutual(liked, likedBy []uint64) []uint64 {
	back := make(map[uint64]struct{}, len(likedBy))
	for _, id := range likedBy {
		back[id] = struct{}{}
	}

	out := make([]uint64, 0)
	for _, id := range liked {
		if _, ok := back[id]; ok {
			out = append(out, id)
			delete(back, id)
		}
	}
	return out
}
