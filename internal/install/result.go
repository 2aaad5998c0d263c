package install

import (
	"fmt"

	"github.com/mmrzaf/forumsetup/internal/install/state"
)

// Checkpoint is a task's persisted cursor: how many items of its list are
// behind it.
type Checkpoint struct {
	Key   string
	Index int
}

// LoadCheckpoint reads the cursor under key. A key that was never written is
// cursor 0; a store that cannot be read is an error.
func LoadCheckpoint(s state.Store, key string) (Checkpoint, error) {
	n, err := s.GetInt(key, 0)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("load checkpoint %s: %w", key, err)
	}
	return Checkpoint{Key: key, Index: n}, nil
}

func SaveCheckpoint(s state.Store, cp Checkpoint) error {
	if err := s.Set(cp.Key, cp.Index); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.Key, err)
	}
	return nil
}

// Result is what one invocation of a task reports: either the task is
// finished, or it must be invoked again and will resume from Next.
type Result struct {
	more bool
	next Checkpoint
}

func Done() Result { return Result{} }

func MoreWork(next Checkpoint) Result { return Result{more: true, next: next} }

func (r Result) IsDone() bool { return !r.more }

func (r Result) Next() Checkpoint { return r.next }

func (r Result) String() string {
	if !r.more {
		return "done"
	}
	return fmt.Sprintf("more work (%s=%d)", r.next.Key, r.next.Index)
}
