package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yuriiter/freccia/pkg/config"
	"github.com/yuriiter/freccia/pkg/metrics"
	"github.com/yuriiter/freccia/pkg/providers"
	"github.com/yuriiter/freccia/pkg/search"
	"github.com/yuriiter/freccia/pkg/utils"
)

var (
	configPath string
	debugFlag  bool

	cfg    config.AppConfig
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "freccia",
	Short:         "Search Trenitalia for discounted train fares",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger = utils.NewLogger(utils.ParseLevel(cfg.Log.Level))
		utils.SetDebug(debugFlag)
		return nil
	},
}

// Execute runs the root command; SIGINT and SIGTERM cancel its context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default freccia.yml or config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "v", false, "Enable debug logs")
}

// newProvider builds the instrumented Trenitalia client.
func newProvider(m *metrics.Collector) providers.Provider {
	return m.Provider(providers.NewTrenitalia(cfg.Provider.BaseURL, providers.WithTimeout(cfg.Provider.Timeout)))
}

func newScanner(finder providers.SolutionFinder, m *metrics.Collector) *search.Scanner {
	return search.NewScanner(finder,
		search.WithLogger(logger),
		search.WithDayObserver(m.ObserveDay),
	)
}
