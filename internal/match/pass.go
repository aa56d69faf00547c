package match

import (
	"context"
	"errors"

	"github.com/oggyb/muzz-chat/internal/db"
)

// ErrNoMoreCandidates is returned when judging past the end of a pass.
var ErrNoMoreCandidates = errors.New("no more candidates")

// Pass walks one fetched candidate list. The list is never re-fetched, so
// the order is stable for the whole pass. Not safe for concurrent use.
type Pass struct {
	engine     *Engine
	current    db.User
	candidates []db.User
	cursor     int
}

// Current returns the candidate awaiting judgment. ok is false once the pass
// is exhausted, which is a normal end state.
func (p *Pass) Current() (u db.User, ok bool) {
	if p.cursor >= len(p.candidates) {
		return db.User{}, false
	}
	return p.candidates[p.cursor], true
}

// Judge records a decision on the current candidate and advances. On error
// the cursor stays put so the caller can retry. A candidate judged elsewhere
// in the meantime counts as done.
func (p *Pass) Judge(ctx context.Context, liked bool) (mutual bool, err error) {
	target, ok := p.Current()
	if !ok {
		return false, ErrNoMoreCandidates
	}

	mutual, err = p.engine.RecordJudgment(ctx, p.current, target, liked)
	if err != nil && !errors.Is(err, ErrAlreadyJudged) {
		return false, err
	}
	p.cursor++
	return mutual, nil
}

// Remaining is the number of candidates not yet judged in this pass.
func (p *Pass) Remaining() int {
	return len(p.candidates) - p.cursor
}
