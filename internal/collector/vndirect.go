package collector

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"WolfDesk/internal/model"
)

// DefaultVNDirectURL is the public dchart endpoint host.
const DefaultVNDirectURL = "https://dchart-api.vndirect.com.vn"

var vnLocation = time.FixedZone("ICT", 7*3600)

// VNDirectSource implements DataSource using the VNDirect dchart history API.
// It issues one request per call; retry and backoff belong to the caller.
type VNDirectSource struct {
	client *resty.Client
}

// NewVNDirectSource creates a source with optional proxy support.
func NewVNDirectSource(baseURL, proxyURL string) *VNDirectSource {
	if baseURL == "" {
		baseURL = DefaultVNDirectURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30*time.Second).
		SetHeader("User-Agent", "Mozilla/5.0").
		SetHeader("Accept", "application/json")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &VNDirectSource{client: client}
}

func (v *VNDirectSource) Name() string { return "vndirect" }

// dchartHistory is the response structure of /dchart/history.
type dchartHistory struct {
	Status string    `json:"s"`
	Time   []int64   `json:"t"`
	Open   []float64 `json:"o"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Close  []float64 `json:"c"`
	Volume []float64 `json:"v"`
}

func (v *VNDirectSource) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.OHLCV, error) {
	var hist dchartHistory
	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":     strings.ToUpper(symbol),
			"resolution": "D",
			"from":       strconv.FormatInt(from.Unix(), 10),
			"to":         strconv.FormatInt(to.Unix(), 10),
		}).
		SetResult(&hist).
		Get("/dchart/history")
	if err != nil {
		return nil, fmt.Errorf("vndirect fetch %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("vndirect %s: status %d, body: %s", symbol, resp.StatusCode(), resp.String())
	}
	return hist.toBars(symbol)
}

func (h *dchartHistory) toBars(symbol string) ([]model.OHLCV, error) {
	switch h.Status {
	case "ok":
	case "no_data":
		return nil, fmt.Errorf("vndirect %s: no data returned", symbol)
	default:
		return nil, fmt.Errorf("vndirect %s: unexpected status %q", symbol, h.Status)
	}
	n := len(h.Time)
	if len(h.Open) != n || len(h.High) != n || len(h.Low) != n || len(h.Close) != n || len(h.Volume) != n {
		return nil, fmt.Errorf("vndirect %s: ragged response (t=%d o=%d h=%d l=%d c=%d v=%d)",
			symbol, n, len(h.Open), len(h.High), len(h.Low), len(h.Close), len(h.Volume))
	}

	bars := make([]model.OHLCV, 0, n)
	for i, ts := range h.Time {
		if h.Open[i] == 0 && h.High[i] == 0 && h.Low[i] == 0 && h.Close[i] == 0 {
			continue // empty session
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).In(vnLocation),
			Open:   h.Open[i],
			High:   h.High[i],
			Low:    h.Low[i],
			Close:  h.Close[i],
			Volume: h.Volume[i],
		})
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
