package install

import (
	"context"

	"github.com/mmrzaf/forumsetup/internal/install/state"
)

// RunBatch walks items from the persisted cursor stored under key, calling fn
// for each. After every item the budget is consulted and the loop stops as
// soon as it is exhausted. The advanced cursor is written back whatever
// happens; an error from fn leaves the cursor on the failing item.
func RunBatch[T any](ctx context.Context, env Env, key string, items []T, fn func(ctx context.Context, i int, item T) error) (Result, error) {
	cp, err := LoadCheckpoint(env.State, key)
	if err != nil {
		return Result{}, err
	}
	if cp.Index >= len(items) {
		return Done(), nil
	}

	var runErr error
	for cp.Index < len(items) {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := fn(ctx, cp.Index, items[cp.Index]); err != nil {
			runErr = err
			break
		}
		cp.Index++
		if state.Exhausted(env.Budget) {
			break
		}
	}

	if err := SaveCheckpoint(env.State, cp); err != nil {
		return Result{}, err
	}
	if runErr != nil {
		return Result{}, runErr
	}
	if cp.Index < len(items) {
		return MoreWork(cp), nil
	}
	return Done(), nil
}
