// Package install runs the fixed sequence of installer tasks. Each task may
// stop early when the invocation's budget runs out; its cursor is persisted
// and the next invocation picks up where it left off.
package install

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmrzaf/forumsetup/internal/domain"
	"github.com/mmrzaf/forumsetup/internal/install/state"
	"github.com/mmrzaf/forumsetup/internal/logging"
	"github.com/mmrzaf/forumsetup/internal/timeutil"
)

// Env is what one invocation hands to a task.
type Env struct {
	State    state.Store
	Budget   state.Budget
	Messages *Messages
	Logger   *logging.Logger
}

type Task interface {
	Name() string
	Run(ctx context.Context, env Env) (Result, error)
}

// Progressor is implemented by tasks that can report a cursor and total.
type Progressor interface {
	Progress(s state.Store) (cursor, total int, err error)
}

const doneKeyPrefix = "task_done."

func DoneKey(task string) string { return doneKeyPrefix + task }

// Progress is the outcome of one Step.
type Progress struct {
	Done      bool
	Task      string
	Next      Checkpoint
	Completed []string
}

// ErrWorkRemaining is returned by RunToCompletion when the pass limit is hit
// before every task is done.
var ErrWorkRemaining = errors.New("installer still has work")

// PassHook observes the end of every pass of RunToCompletion.
type PassHook func(pass int, started time.Time, p *Progress, err error)

// PassStartHook observes the start of every pass.
type PassStartHook func(pass int, started time.Time)

type Runner struct {
	tasks   []Task
	logger  *logging.Logger
	onPass  PassHook
	onStart PassStartHook
}

func NewRunner(logger *logging.Logger, tasks ...Task) *Runner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{tasks: tasks, logger: logger.WithComponent("runner")}
}

func (r *Runner) Tasks() []Task { return r.tasks }

func (r *Runner) OnPass(h PassHook) { r.onPass = h }

func (r *Runner) OnPassStart(h PassStartHook) { r.onStart = h }

// Step is one invocation of the installer. Tasks already recorded as done are
// skipped. It returns at the first task that asks to be called again, or when
// the budget is spent between tasks.
func (r *Runner) Step(ctx context.Context, env Env) (*Progress, error) {
	if env.Budget == nil {
		env.Budget = state.Unlimited{}
	}
	if env.Logger == nil {
		env.Logger = r.logger
	}
	if env.Messages == nil {
		env.Messages = NewMessages(env.Logger)
	}

	progress := &Progress{}
	for i, task := range r.tasks {
		name := task.Name()
		done, err := env.State.GetBool(DoneKey(name), false)
		if err != nil {
			return progress, fmt.Errorf("task %s: %w", name, err)
		}
		if done {
			continue
		}

		started := time.Now()
		res, err := task.Run(ctx, env)
		if err != nil {
			r.logger.Errorw("task.failed", map[string]any{"task": name, "error": err.Error()})
			return progress, fmt.Errorf("task %s: %w", name, err)
		}
		if !res.IsDone() {
			r.logger.Infow("task.more_work", map[string]any{
				"task":        name,
				"cursor_key":  res.Next().Key,
				"cursor":      res.Next().Index,
				"duration_ms": time.Since(started).Milliseconds(),
			})
			progress.Task = name
			progress.Next = res.Next()
			return progress, nil
		}

		if err := env.State.Set(DoneKey(name), true); err != nil {
			return progress, fmt.Errorf("record %s done: %w", name, err)
		}
		progress.Completed = append(progress.Completed, name)
		r.logger.Infow("task.done", map[string]any{"task": name, "duration_ms": time.Since(started).Milliseconds()})

		if i+1 < len(r.tasks) && state.Exhausted(env.Budget) {
			r.logger.Infow("budget.exhausted", map[string]any{
				"after":     name,
				"time_left": timeutil.Remaining(env.Budget.TimeRemaining()),
			})
			progress.Task = r.tasks[i+1].Name()
			return progress, nil
		}
	}

	progress.Done = true
	return progress, nil
}

// RunToCompletion keeps invoking Step, each pass with a fresh budget, until
// every task is done or maxPasses is reached.
func (r *Runner) RunToCompletion(ctx context.Context, env Env, newBudget func() state.Budget, maxPasses int) (int, error) {
	if maxPasses <= 0 {
		maxPasses = 1
	}
	for pass := 1; pass <= maxPasses; pass++ {
		if newBudget != nil {
			env.Budget = newBudget()
		}
		started := time.Now()
		if r.onStart != nil {
			r.onStart(pass, started)
		}
		p, err := r.Step(ctx, env)
		if r.onPass != nil {
			r.onPass(pass, started, p, err)
		}
		if err != nil {
			return pass, err
		}
		if p.Done {
			r.logger.Infow("install.complete", map[string]any{"passes": pass})
			return pass, nil
		}
		if err := ctx.Err(); err != nil {
			return pass, err
		}
	}
	return maxPasses, fmt.Errorf("%w after %d passes", ErrWorkRemaining, maxPasses)
}

func (r *Runner) Status(s state.Store) ([]domain.TaskStatus, error) {
	out := make([]domain.TaskStatus, 0, len(r.tasks))
	for _, t := range r.tasks {
		done, err := s.GetBool(DoneKey(t.Name()), false)
		if err != nil {
			return nil, err
		}
		st := domain.TaskStatus{Name: t.Name(), Done: done}
		if p, ok := t.(Progressor); ok {
			if st.Cursor, st.Total, err = p.Progress(s); err != nil {
				return nil, err
			}
		}
		out = append(out, st)
	}
	return out, nil
}
