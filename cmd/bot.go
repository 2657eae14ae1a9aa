package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yuriiter/freccia/pkg/bot"
	"github.com/yuriiter/freccia/pkg/bot/telegram"
	"github.com/yuriiter/freccia/pkg/config"
	"github.com/yuriiter/freccia/pkg/metrics"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram chat-bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Bot.Token == "" {
			return fmt.Errorf("no bot token: set bot.token or %s", config.EnvBotToken)
		}

		m := metrics.New()
		sessions, closeStore, err := newSessions(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		api, err := telegram.Connect(cfg.Bot.Token)
		if err != nil {
			return err
		}
		logger.Info("bot started", "username", api.Self.UserName, "sessions", cfg.Sessions.Backend)

		poller := telegram.NewPoller(api, newBot(sessions, m), telegram.WithLogger(logger))
		return poller.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func newBot(sessions *bot.Manager, m *metrics.Collector) *bot.Bot {
	provider := newProvider(m)
	return bot.New(provider, newScanner(provider, m), sessions,
		bot.WithLogger(logger),
		bot.WithDiscountOffer(cfg.Search.DiscountOffer),
		bot.WithMaxDays(cfg.Search.MaxDays),
		bot.WithTurnRecorder(m),
	)
}

// newSessions opens the configured session store.
func newSessions(ctx context.Context) (*bot.Manager, func(), error) {
	switch cfg.Sessions.Backend {
	case "redis":
		store := bot.NewRedisStore(cfg.Sessions.RedisAddr, cfg.Sessions.RedisPassword, cfg.Sessions.RedisDB,
			bot.WithTTL(cfg.Sessions.TTL))
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("connect to redis %s: %w", cfg.Sessions.RedisAddr, err)
		}
		return bot.NewManager(store), func() { store.Close() }, nil
	case "memory", "":
		return bot.NewManager(bot.NewMemoryStore()), func() {}, nil
	}
	return nil, nil, errors.New("unknown session backend " + cfg.Sessions.Backend)
}
