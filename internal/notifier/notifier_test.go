package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WolfDesk/internal/model"
)

func sampleAnalysis() *model.Analysis {
	return &model.Analysis{
		Symbol: "HPG",
		Last: model.EnrichedBar{
			OHLCV:       model.OHLCV{Time: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Close: 27.35},
			RSI14:       58.24,
			MACD:        0.1234,
			ATR14:       0.614,
			VolumeRatio: 1.52,
		},
		ChangePct:   1.2,
		TrendRising: true,
		AboveEMA20:  true,
		Classification: model.Classification{
			Candle:    model.CandleMarubozu,
			Volume:    model.VolumeSpike,
			MoneyFlow: model.FlowAccumulation,
		},
	}
}

func TestFormatTechnicalSummary(t *testing.T) {
	got := FormatTechnicalSummary(sampleAnalysis())
	want := strings.Join([]string{
		"- Price: 27.35 (+1.20%)",
		"- Candle: Marubozu (strong directional force)",
		"- MA20 is rising. Price ABOVE MA20.",
		"- Vol: Volume spike (1.5x the 20-day average)",
		"- Money flow: Accumulation signal (high-volume strong close)",
		"- RSI: 58.2 | MACD: 0.123 | ATR: 0.61",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormatTechnicalSummaryUndefinedValues(t *testing.T) {
	a := sampleAnalysis()
	a.Last.RSI14 = math.NaN()
	a.Last.VolumeRatio = math.NaN()
	a.TrendRising = false
	a.AboveEMA20 = false

	got := FormatTechnicalSummary(a)
	assert.Contains(t, got, "RSI: n/a")
	assert.Contains(t, got, "(n/ax the 20-day average)")
	assert.Contains(t, got, "MA20 is falling. Price BELOW MA20.")
}

func TestFormatAnalysisWithPosition(t *testing.T) {
	a := sampleAnalysis()
	a.Position = &model.Position{BuyPrice: 22, ProfitPct: 24.32, Note: "consider trailing the stop"}

	got := FormatAnalysis(a)
	assert.Contains(t, got, "<b>HPG</b> | 2025-06-02")
	assert.Contains(t, got, "P&amp;L +24.32%")
	assert.Contains(t, got, "consider trailing the stop")
}

func TestFormatScreenReport(t *testing.T) {
	r := &model.ScreenReport{
		Criteria: model.ScreenCriteria{RSIMin: 40, RSIMax: 70, RequireMA50: true},
		Hits: []model.ScreenHit{
			{Symbol: "FPT", Price: 120, ChangePct: 2.5, RSI: 61, VolumeRatio: 1.8, Tags: []string{"Uptrend", "Volume spike"}},
			{Symbol: "MWG", Price: 60, ChangePct: 0.5, RSI: 45, VolumeRatio: 1},
		},
		Scanned: 32,
		Skipped: 1,
		Failed:  map[string]string{"DOWN": "timeout"},
	}
	got := FormatScreenReport(r)
	assert.Contains(t, got, "RSI 40-70 | above MA50")
	assert.Contains(t, got, "1. <b>FPT</b> 120.00 (+2.50%)")
	assert.Contains(t, got, "Uptrend + Volume spike")
	assert.Contains(t, got, "Standard setup")
	assert.Contains(t, got, "Scanned 32 | skipped 1 | failed 1")

	empty := FormatScreenReport(&model.ScreenReport{})
	assert.Contains(t, empty, "No ticker matched.")
}

func TestFormatPortfolio(t *testing.T) {
	quotes := []model.Quote{
		{
			Holding:        model.Holding{Ticker: "HPG", CostBasis: 28.5, Target: 35, StopLoss: 26.5},
			Price:          36,
			ProfitPct:      26.32,
			Recommendation: model.RecTakeProfit,
			TargetHit:      true,
		},
		{Holding: model.Holding{Ticker: "SSI", CostBasis: 34}, Recommendation: model.RecWatching, Err: errors.New("timeout")},
	}
	got := FormatPortfolio(quotes)
	assert.Contains(t, got, "<b>HPG</b> 36.00 (cost 28.50, +26.32%)")
	assert.Contains(t, got, "Take partial profit | 🎯 target 35.00 reached")
	assert.Contains(t, got, "<b>SSI</b> cost 34.00 | price unavailable")

	assert.Contains(t, FormatPortfolio(nil), "No holdings.")
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	parts := splitMessage("aaaa\nbbbb\ncccc\n", 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\n"}, parts)

	long := splitMessage(strings.Repeat("x", 25), 10)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, long)
}

func TestSplitMessageKeepsRunesAndTags(t *testing.T) {
	// "ệ" is three bytes; a byte cut at 4 would land inside it.
	for _, part := range splitMessage("abcệdefệgh", 4) {
		assert.True(t, utf8.ValidString(part), part)
	}
	assert.Equal(t, "abcệdefệgh", strings.Join(splitMessage("abcệdefệgh", 4), ""))

	parts := splitMessage("abcdef<b>HPG</b>", 8)
	assert.Equal(t, "abcdef", parts[0])
	assert.True(t, strings.HasPrefix(parts[1], "<b>"))
	assert.Equal(t, "abcdef<b>HPG</b>", strings.Join(parts, ""))
}

type fakeBotAPI struct {
	mu       sync.Mutex
	sent     []map[string]string
	failures int
}

func (f *fakeBotAPI) messages() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.sent...)
}

func (f *fakeBotAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failures > 0 {
			f.failures--
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"ok":false,"description":"boom"}`))
			return
		}
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.sent = append(f.sent, body)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}

func TestTelegramSend(t *testing.T) {
	api := &fakeBotAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.SetAPIBase(srv.URL)

	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	sent := api.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "42", sent[0]["chat_id"])
	assert.Equal(t, "HTML", sent[0]["parse_mode"])
	assert.Equal(t, "<b>hi</b>", sent[0]["text"])
}

func TestTelegramSendWithRetry(t *testing.T) {
	api := &fakeBotAPI{failures: 1}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.SetAPIBase(srv.URL)

	require.NoError(t, n.SendWithRetry(context.Background(), "retry me", 1))
	assert.Len(t, api.messages(), 1)

	api.mu.Lock()
	api.failures = 5
	api.mu.Unlock()
	err := n.SendWithRetry(context.Background(), "give up", 0)
	assert.ErrorContains(t, err, "all 1 retries exhausted")
}

func TestTelegramSendDecodesWithoutJSONContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.SetAPIBase(srv.URL)
	assert.NoError(t, n.Send(context.Background(), "hi"))

	updates, err := n.getUpdates(context.Background(), 0)
	assert.NoError(t, err)
	assert.Empty(t, updates)
}

func TestDispatchFiltersChat(t *testing.T) {
	api := &fakeBotAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.SetAPIBase(srv.URL)

	var seen []string
	handler := func(_ context.Context, cmd string) string {
		seen = append(seen, cmd)
		return "ok: " + cmd
	}

	var own, other telegramUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"update_id":1,"message":{"text":" /help ","chat":{"id":42}}}`), &own))
	require.NoError(t, json.Unmarshal([]byte(`{"update_id":2,"message":{"text":"/screen","chat":{"id":7}}}`), &other))

	n.dispatch(context.Background(), own, handler)
	n.dispatch(context.Background(), other, handler)

	assert.Equal(t, []string{"/help"}, seen)
	sent := api.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ok: /help", sent[0]["text"])
}
