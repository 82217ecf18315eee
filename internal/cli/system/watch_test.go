package system

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/julianstephens/habitual/internal/cli/clitest"
	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

// syncBuffer is a bytes.Buffer safe for one writer and one polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchRedrawsOnRefresh(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, _ := clitest.NewContext(t)
	clitest.SignUp(t, ctx)
	out := &syncBuffer{}
	ctx.Out = out

	runCtx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- (&WatchCmd{Interval: 10 * time.Millisecond}).Watch(runCtx, ctx)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "nothing due")
	}, time.Second, 5*time.Millisecond)

	// Written behind the habit store's back; only the periodic refresh sees it.
	uid := ctx.Habits.Snapshot().User.ID
	stretch := models.Habit{Name: "Stretch", Goal: 1, StartDate: clitest.Today, Rule: models.Daily{}}
	require.NoError(t, ctx.Docs.Set(context.Background(), storage.HabitPath(uid, "stretch"), habits.EncodeHabit(stretch, ctx.Calendar)))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Stretch")
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchRequiresSignIn(t *testing.T) {
	ctx, _ := clitest.NewContext(t)
	err := (&WatchCmd{}).Watch(context.Background(), ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}
