package session_test

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/v0xg/eventprobe/internal/field"
	"github.com/v0xg/eventprobe/internal/locator"
	"github.com/v0xg/eventprobe/internal/resolve"
	"github.com/v0xg/eventprobe/internal/session"
)

const eventForm = `<!doctype html>
<html><head><title>Események</title></head>
<body>
  <input id="liga" type="text">
  <input id="starting_date" type="date">
  <div id="tooltip" style="display:none">Segítség</div>
  <button class="action-button" onclick="created()">Új esemény</button>
  <script>
    function created() {
      setTimeout(function () {
        var d = document.createElement('div');
        d.textContent = 'Event created';
        document.body.appendChild(d);
      }, 100);
    }
  </script>
</body></html>`

func launchBrowser(t *testing.T) *session.Browser {
	t.Helper()
	if testing.Short() {
		t.Skip("browser test skipped in short mode")
	}
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("no Chrome or Chromium found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	b, err := session.Launch(ctx, session.Options{Headless: true, Width: 800, Height: 600})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBrowserEventForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(eventForm))
	}))
	defer srv.Close()

	b := launchBrowser(t)
	log := zaptest.NewLogger(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, b.Navigate(ctx, srv.URL))

	r := resolve.New(b, log)
	r.Interval = 50 * time.Millisecond
	w := field.New(b, log)

	liga, err := r.WaitVisible(ctx, locator.ID("liga"), 5*time.Second)
	require.NoError(t, err)
	assert.True(t, w.SetValue(ctx, liga, "esemény"))
	assert.True(t, w.SetValue(ctx, liga, "esemény"), "writing the same value twice is harmless")

	date, err := r.WaitVisible(ctx, locator.CSS("input[type='date']"), 5*time.Second)
	require.NoError(t, err)
	assert.True(t, w.SetValue(ctx, date, "2025-06-15"))
	got, err := date.Value(ctx)
	require.NoError(t, err)
	assert.Contains(t, got, "2025")

	_, err = r.WaitVisible(ctx, locator.ID("tooltip"), 200*time.Millisecond)
	assert.ErrorIs(t, err, resolve.ErrNotFound, "hidden elements never resolve")

	_, m, err := r.ClickFirstMatch(ctx, resolve.Action{
		Name:       "add button",
		Candidates: locator.Of(locator.Class("action-button")),
		Fallback:   locator.Tag("button"),
	})
	require.NoError(t, err)
	assert.Equal(t, "candidate", m.Source)

	notice, err := r.WaitVisible(ctx, locator.Text("created"), 5*time.Second)
	require.NoError(t, err)
	text, err := notice.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Event created", text)

	m2, err := b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Események", m2.Title)
	assert.NotEmpty(t, m2.Clickable())

	shot, err := b.Screenshot(ctx)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(shot))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
}
