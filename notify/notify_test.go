package notify_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/go-inventory-ui/notify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := notify.NewRecorder()
	notify.Success(r, "saved")
	notify.Error(r, "failed")

	require.Len(t, r.Notices(), 2)
	drained := r.Drain()
	require.Equal(t, notify.LevelSuccess, drained[0].Level)
	require.Equal(t, "failed", drained[1].Message)
	require.Empty(t, r.Notices())
}

func TestMulti(t *testing.T) {
	a, b := notify.NewRecorder(), notify.NewRecorder()
	notify.Info(notify.Multi(a, nil, b), "hello")
	require.Len(t, a.Notices(), 1)
	require.Len(t, b.Notices(), 1)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := notify.NewWriter(&buf, false)
	w.Notify(notify.Notice{Level: notify.LevelError, Category: notify.CategoryConnection, Message: "offline"})
	notify.Success(w, "done")
	require.Equal(t, "✗ [connection] offline\n✓ done\n", buf.String())
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	notify.Log(zerolog.New(&buf)).Notify(notify.Notice{Level: notify.LevelError, Category: notify.CategorySession, Message: "expired"})
	require.Contains(t, buf.String(), `"level":"warn"`)
	require.Contains(t, buf.String(), `"category":"session"`)
	require.Contains(t, buf.String(), `"message":"expired"`)
}
