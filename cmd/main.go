package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/weiawesome/wes-io-live/livechat/internal/config"
	"github.com/weiawesome/wes-io-live/livechat/internal/service"
	"github.com/weiawesome/wes-io-live/livechat/internal/ui"
	pkglog "github.com/weiawesome/wes-io-live/livechat/pkg/log"
)

var (
	configFile   string
	streamerRoom string
	accessToken  string
	fixturePath  string
)

var rootCmd = &cobra.Command{
	Use:   "livechat",
	Short: "Live stream chat in the terminal",
	Long: `livechat joins the chat of one live stream over STOMP.

Identity comes from a fixture file (identity.mode=static) or from an access
token plus the room service (identity.mode=token). Enter sends, ctrl+b opens
the ban prompt, ctrl+o the community panel, ctrl+s the support prompt and
esc quits.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file (default ./config/config.yaml)")
	rootCmd.Flags().StringVar(&streamerRoom, "streamer-room", "", "room id whose owner is the streamer (token mode)")
	rootCmd.Flags().StringVar(&accessToken, "token", "", "access token (token mode)")
	rootCmd.Flags().StringVar(&fixturePath, "fixture", "", "identity fixture file (static mode)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg)
	if err := checkLogFile(cfg.Log); err != nil {
		return err
	}

	out, err := pkglog.Open(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer out.Close()

	pkglog.Init(cfg.Log, out)
	logger := pkglog.L()
	ctx = pkglog.WithLogger(ctx, logger)

	provider, closeProvider, err := buildProvider(cfg, pkglog.Component(ctx, "identity"))
	if err != nil {
		logger.Error().Err(err).Msg("failed to build identity provider")
		return err
	}
	defer closeProvider()

	chat := service.NewLiveChatService(service.Options{
		Provider:  provider,
		Channels:  buildChannelFactory(cfg.Chat, cfg.Identity.Token, pkglog.Component(ctx, "channel")),
		SendRate:  cfg.Chat.SendRate,
		SendBurst: cfg.Chat.SendBurst,
		Logger:    pkglog.Component(ctx, "livechat"),
	})
	defer chat.Unmount()

	model := ui.NewModel(ctx, chat, ui.Options{
		TimestampMode: ui.ParseTimestampMode(cfg.UI.TimestampMode),
		SupportAmount: cfg.UI.SupportAmount,
	})

	logger.Info().Str(pkglog.FieldEndpoint, cfg.Chat.Endpoint).Str("identity_mode", cfg.Identity.Mode).Msg("livechat starting")

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error().Err(err).Msg("terminal program failed")
		return err
	}

	logger.Info().Msg("livechat stopped")
	return nil
}

func applyFlags(cfg *config.Config) {
	if streamerRoom != "" {
		cfg.Identity.RoomID = streamerRoom
	}
	if accessToken != "" {
		cfg.Identity.Token = accessToken
	}
	if fixturePath != "" {
		cfg.Identity.Fixture = fixturePath
	}
}
