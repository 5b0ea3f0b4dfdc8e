package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WolfDesk/internal/collector"
	"WolfDesk/internal/model"
	"WolfDesk/internal/portfolio"
	"WolfDesk/internal/recorder"
	"WolfDesk/internal/screener"
)

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureNotifier) Notify(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

func newTestScheduler(t *testing.T, price float64) (*Scheduler, *captureNotifier) {
	t.Helper()
	col := collector.NewCollector(&collector.MockSource{Price: price}, nil)
	col.Now = func() time.Time { return time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC) }

	pm, err := portfolio.NewManager(filepath.Join(t.TempDir(), "portfolio.json"))
	require.NoError(t, err)

	n := &captureNotifier{}
	s := NewScheduler(context.Background(), col, screener.New(col, 2, nil), pm, n, recorder.NewNoopRecorder())
	s.Watchlist = []string{"HPG", "SSI"}
	s.Criteria = model.ScreenCriteria{RSIMin: 0, RSIMax: 100, RequireMA50: true}
	return s, n
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(t, 30)
	require.NoError(t, s.RegisterAll("0 30 15 * * 1-5", "0 0 10,14 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 2)

	assert.Error(t, s.RegisterAll("not a cron", "0 0 10 * * *"))
}

func TestHandleAnalyze(t *testing.T) {
	s, _ := newTestScheduler(t, 30)

	reply := s.HandleCommand(context.Background(), "/analyze hpg 20")
	assert.Contains(t, reply, "<b>HPG</b>")
	assert.Contains(t, reply, "consider trailing the stop")

	assert.Contains(t, s.HandleCommand(context.Background(), "/analyze"), "Usage")
	assert.Contains(t, s.HandleCommand(context.Background(), "/analyze HPG abc"), "Invalid buy price")
}

func TestHandleScreen(t *testing.T) {
	s, _ := newTestScheduler(t, 30)
	reply := s.HandleCommand(context.Background(), "/screen@WolfDeskBot")
	assert.Contains(t, reply, "<b>HPG</b>")
	assert.Contains(t, reply, "<b>SSI</b>")
	assert.Contains(t, reply, "Scanned 2")
}

func TestHandlePortfolioAndHelp(t *testing.T) {
	s, _ := newTestScheduler(t, 30)

	reply := s.HandleCommand(context.Background(), "/portfolio")
	assert.Contains(t, reply, "<b>HPG</b>")
	assert.Contains(t, reply, "<b>SSI</b>")

	assert.Contains(t, s.HandleCommand(context.Background(), "hello"), "/analyze TICKER")
	assert.Contains(t, s.HandleCommand(context.Background(), ""), "/help")
}

func TestPortfolioTaskNotifiesOnlyWhenActionable(t *testing.T) {
	// Mock prices end near 32: HPG and SSI are both inside the monitor band.
	s, n := newTestScheduler(t, 32)
	s.portfolioTask()
	assert.Empty(t, n.msgs)

	// Near 40: HPG target hit.
	s, n = newTestScheduler(t, 40)
	s.portfolioTask()
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "target 35.00 reached")
}

func TestScreenTaskNotifies(t *testing.T) {
	s, n := newTestScheduler(t, 30)
	s.RunScreenNow()
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "Screener")
}

func TestPortfolioUsesQuoteSource(t *testing.T) {
	// History collector sits near 32 (nothing actionable); live quotes near 40.
	s, n := newTestScheduler(t, 32)
	live := collector.NewCollector(&collector.MockSource{Price: 40}, nil)
	live.Now = s.Collector.Now
	s.Quotes = live

	s.portfolioTask()
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "target 35.00 reached")
}
