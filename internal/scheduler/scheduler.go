package scheduler

import (
	"context"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"WolfDesk/internal/collector"
	"WolfDesk/internal/model"
	"WolfDesk/internal/notifier"
	"WolfDesk/internal/portfolio"
	"WolfDesk/internal/recorder"
	"WolfDesk/internal/screener"
)

// Scheduler manages all cron tasks and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Screener  *screener.Screener
	Portfolio *portfolio.Manager
	Quotes    portfolio.PriceSource // nil uses Collector
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Watchlist []string
	Criteria  model.ScreenCriteria
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler screening the default watchlist.
func NewScheduler(ctx context.Context, col *collector.Collector, sc *screener.Screener, pm *portfolio.Manager, n notifier.Notifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Screener:  sc,
		Portfolio: pm,
		Notifier:  n,
		Recorder:  rec,
		Watchlist: screener.DefaultWatchlist,
		Criteria:  screener.DefaultCriteria(),
		Ctx:       ctx,
	}
}

// RegisterAll registers the screen and portfolio tasks.
func (s *Scheduler) RegisterAll(screenCron, portfolioCron string) error {
	if _, err := s.Cron.AddFunc(screenCron, s.screenTask); err != nil {
		return fmt.Errorf("register screen task: %w", err)
	}
	if _, err := s.Cron.AddFunc(portfolioCron, s.portfolioTask); err != nil {
		return fmt.Errorf("register portfolio task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunScreenNow executes the screen task immediately (RUN_ON_START or /screen).
func (s *Scheduler) RunScreenNow() {
	s.screenTask()
}

func (s *Scheduler) screenTask() {
	log.Println("[INFO] running screen task")
	report, err := s.screen(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] screen: %v", err)
		return
	}
	s.trySend(notifier.FormatScreenReport(report))
}

func (s *Scheduler) screen(ctx context.Context) (*model.ScreenReport, error) {
	report, err := s.Screener.Run(ctx, s.Watchlist, s.Criteria)
	if err != nil {
		return nil, err
	}
	if err := s.Recorder.RecordScreen(report); err != nil {
		log.Printf("[ERROR] record screen: %v", err)
	}
	return report, nil
}

func (s *Scheduler) portfolioTask() {
	log.Println("[INFO] running portfolio check")
	quotes := s.checkPortfolio(s.Ctx)

	// Only push when something needs attention.
	for _, q := range quotes {
		if q.Err == nil && (q.TargetHit || q.StopHit || q.Recommendation == model.RecStopLoss || q.Recommendation == model.RecTakeProfit) {
			s.trySend("⏰ " + notifier.FormatPortfolio(quotes))
			return
		}
	}
	log.Println("[INFO] portfolio check: nothing actionable")
}

func (s *Scheduler) checkPortfolio(ctx context.Context) []model.Quote {
	var src portfolio.PriceSource = s.Collector
	if s.Quotes != nil {
		src = s.Quotes
	}
	quotes := s.Portfolio.Check(ctx, src)
	for _, q := range quotes {
		if q.Err != nil {
			log.Printf("[WARN] quote %s: %v", q.Ticker, q.Err)
		}
	}
	if err := s.Recorder.RecordPortfolioCheck(quotes); err != nil {
		log.Printf("[ERROR] record portfolio check: %v", err)
	}
	return quotes
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	// Commands may arrive as /cmd@BotName in groups.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/analyze":
		return s.analyzeCommand(ctx, fields[1:])
	case "/screen":
		report, err := s.screen(ctx)
		if err != nil {
			return "❌ Screen failed: " + html.EscapeString(err.Error())
		}
		return notifier.FormatScreenReport(report)
	case "/portfolio":
		return notifier.FormatPortfolio(s.checkPortfolio(ctx))
	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) analyzeCommand(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /analyze TICKER [buy_price]"
	}
	var buy float64
	if len(args) > 1 {
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil || v < 0 {
			return "❌ Invalid buy price: " + html.EscapeString(args[1])
		}
		buy = v
	}
	a, err := s.Collector.Analyze(ctx, args[0], buy)
	if err != nil {
		log.Printf("[ERROR] analyze %s: %v", args[0], err)
		return "❌ Analysis failed: " + html.EscapeString(err.Error())
	}
	if err := s.Recorder.RecordAnalysis(a); err != nil {
		log.Printf("[ERROR] record analysis: %v", err)
	}
	return notifier.FormatAnalysis(a)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Notify(s.Ctx, text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
