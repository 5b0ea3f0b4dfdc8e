package main

import (
	"fmt"
	"html"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"WolfDesk/internal/config"
	"WolfDesk/internal/metrics"
	"WolfDesk/internal/model"
	"WolfDesk/internal/notifier"
	"WolfDesk/internal/scheduler"
)

// session owns the app opened by whichever subcommand ran.
type session struct {
	app *app
}

// Close releases the app. It must run after Execute whether or not the
// command failed; cobra skips post-run hooks on error.
func (s *session) Close() {
	if s.app != nil {
		s.app.close()
	}
}

// newRootCmd creates the root command.
func newRootCmd() (*cobra.Command, *session) {
	var (
		cfgPath string
		sess    = &session{}
	)

	rootCmd := &cobra.Command{
		Use:           "wolfdesk",
		Short:         "WolfDesk - technical analysis desk for Vietnamese equities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			sess.app, err = newApp(cmd.Context(), cfg)
			return err
		},
	}

	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultPath, "Configuration file path")

	appFn := func() *app { return sess.app }
	rootCmd.AddCommand(newAnalyzeCmd(appFn))
	rootCmd.AddCommand(newScreenCmd(appFn))
	rootCmd.AddCommand(newPortfolioCmd(appFn))
	rootCmd.AddCommand(newHistoryCmd(appFn))
	rootCmd.AddCommand(newServeCmd(appFn))
	return rootCmd, sess
}

var tagPattern = regexp.MustCompile(`</?b>`)

// plain strips the Telegram HTML markup for terminal output.
func plain(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}

func newAnalyzeCmd(appFn func() *app) *cobra.Command {
	var buy float64
	cmd := &cobra.Command{
		Use:   "analyze TICKER",
		Short: "Run the technical analysis for one ticker",
		Example: `  wolfdesk analyze HPG
  wolfdesk analyze SSI --buy 34`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if buy < 0 {
				return fmt.Errorf("--buy must not be negative")
			}
			a := appFn()
			res, err := a.collector.Analyze(cmd.Context(), args[0], buy)
			if err != nil {
				return err
			}
			if err := a.recorder.RecordAnalysis(res); err != nil {
				log.Printf("[ERROR] record analysis: %v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), plain(notifier.FormatAnalysis(res)))
			return nil
		},
	}
	cmd.Flags().Float64Var(&buy, "buy", 0, "Cost basis when the ticker is held")
	return cmd
}

func newScreenCmd(appFn func() *app) *cobra.Command {
	var (
		tickers []string
		rsiMin  float64
		rsiMax  float64
		ma50    bool
		macd    bool
		notify  bool
	)
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Scan the watchlist for technical setups",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			criteria := a.criteria()
			flags := cmd.Flags()
			if flags.Changed("rsi-min") {
				criteria.RSIMin = rsiMin
			}
			if flags.Changed("rsi-max") {
				criteria.RSIMax = rsiMax
			}
			if flags.Changed("ma50") {
				criteria.RequireMA50 = ma50
			}
			if flags.Changed("macd") {
				criteria.RequireMACD = macd
			}
			if criteria.RSIMin > criteria.RSIMax {
				return fmt.Errorf("rsi range [%g, %g] is empty", criteria.RSIMin, criteria.RSIMax)
			}
			list := a.watchlist()
			if len(tickers) > 0 {
				list = tickers
			}

			report, err := a.screener.Run(cmd.Context(), list, criteria)
			if err != nil {
				return err
			}
			if err := a.recorder.RecordScreen(report); err != nil {
				log.Printf("[ERROR] record screen: %v", err)
			}
			text := notifier.FormatScreenReport(report)
			if notify {
				if err := a.notifier.Notify(cmd.Context(), text); err != nil {
					return fmt.Errorf("notify: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), plain(text))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&tickers, "tickers", nil, "Tickers to scan instead of the configured watchlist")
	cmd.Flags().Float64Var(&rsiMin, "rsi-min", 0, "Lower RSI bound")
	cmd.Flags().Float64Var(&rsiMax, "rsi-max", 0, "Upper RSI bound")
	cmd.Flags().BoolVar(&ma50, "ma50", false, "Require close above MA50")
	cmd.Flags().BoolVar(&macd, "macd", false, "Require MACD above its signal")
	cmd.Flags().BoolVar(&notify, "notify", false, "Also send the report to the configured notifier")
	return cmd
}

func newPortfolioCmd(appFn func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Manage and check holdings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List holdings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printHoldings(cmd.OutOrStdout(), appFn().portfolio.Holdings())
		},
	})

	var h model.Holding
	add := &cobra.Command{
		Use:   "add TICKER",
		Short: "Add or replace a holding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h.Ticker = args[0]
			if err := appFn().portfolio.Upsert(h); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", strings.ToUpper(args[0]))
			return nil
		},
	}
	add.Flags().Float64Var(&h.CostBasis, "cost", 0, "Cost basis")
	add.Flags().Float64Var(&h.Target, "target", 0, "Target price")
	add.Flags().Float64Var(&h.StopLoss, "stop", 0, "Stop-loss price")
	_ = add.MarkFlagRequired("cost")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove TICKER",
		Short: "Remove a holding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := appFn().portfolio.Remove(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no holding for %s", strings.ToUpper(args[0]))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", strings.ToUpper(args[0]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Price every holding and print recommendations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			quotes := a.portfolio.Check(cmd.Context(), a.quotes)
			if err := a.recorder.RecordPortfolioCheck(quotes); err != nil {
				log.Printf("[ERROR] record portfolio check: %v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), plain(notifier.FormatPortfolio(quotes)))
			return nil
		},
	})
	return cmd
}

func printHoldings(w io.Writer, holdings []model.Holding) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tCOST\tTARGET\tSTOP")
	for _, h := range holdings {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\n", h.Ticker, h.CostBasis, h.Target, h.StopLoss)
	}
	return tw.Flush()
}

func newHistoryCmd(appFn func() *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history TICKER",
		Short: "Show recorded analyses for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := appFn().recorder.RecentAnalyses(args[0], limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tCLOSE\tCHANGE%\tRSI\tCANDLE\tMONEY FLOW")
			for _, r := range rows {
				rsi := "n/a"
				if !math.IsNaN(r.RSI) {
					rsi = fmt.Sprintf("%.1f", r.RSI)
				}
				fmt.Fprintf(tw, "%s\t%.2f\t%+.2f\t%s\t%s\t%s\n",
					r.RecordedAt.Format("2006-01-02 15:04"), r.Close, r.ChangePct, rsi, r.Candle, r.MoneyFlow)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows")
	return cmd
}

func newServeCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled jobs, Telegram commands and the metrics endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			cfg := a.cfg
			log.Println("[INFO] WolfDesk starting...")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched := scheduler.NewScheduler(ctx, a.collector, a.screener, a.portfolio, a.notifier, a.recorder)
			sched.Quotes = a.quotes
			sched.Watchlist = a.watchlist()
			sched.Criteria = a.criteria()
			if err := sched.RegisterAll(cfg.Schedule.ScreenCron, cfg.Schedule.PortfolioCron); err != nil {
				return fmt.Errorf("register cron tasks: %w", err)
			}
			sched.Start()
			defer sched.Stop()

			if cfg.Metrics.Listen != "" {
				go func() {
					if err := metrics.Serve(ctx, cfg.Metrics.Listen, a.registry); err != nil {
						log.Printf("[ERROR] metrics server: %v", err)
					}
				}()
			}

			if tn, ok := a.notifier.(*notifier.TelegramNotifier); ok {
				go tn.StartPolling(ctx, sched.HandleCommand)
				log.Println("[INFO] Telegram polling started")
			} else {
				log.Println("[WARN] telegram not configured, notifications go to the log")
			}

			if cfg.Schedule.RunOnStart {
				log.Println("[INFO] RUN_ON_START enabled, executing screen task now")
				go sched.RunScreenNow()
			}

			log.Println("[INFO] WolfDesk is running. Press Ctrl+C to stop.")
			<-ctx.Done()
			log.Println("[INFO] shutdown signal received, stopping...")
			return nil
		},
	}
}
