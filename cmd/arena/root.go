package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naveenspark/arena/internal/auth"
	"github.com/naveenspark/arena/internal/config"
	"github.com/naveenspark/arena/internal/logging"
	"github.com/naveenspark/arena/internal/room"
	"github.com/naveenspark/arena/internal/roomstate"
	"github.com/naveenspark/arena/internal/session"
	"github.com/naveenspark/arena/internal/tui"
	"github.com/naveenspark/arena/pkg/client"
	"github.com/naveenspark/arena/pkg/domain"
	"github.com/naveenspark/arena/pkg/gateway"
)

// gatewayDialTimeout bounds the first connection attempt. Reconnects after
// that retry until the program exits.
const gatewayDialTimeout = 5 * time.Second

// errNotLoggedIn is returned when no usable token is configured.
var errNotLoggedIn = fmt.Errorf("%w: run `arena login` first", domain.ErrAuthRequired)

// cli carries what every subcommand shares once the environment is loaded.
type cli struct {
	envFile string
	cfg     *config.Config
	log     *zap.Logger
	api     *client.Client
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "arena",
		Short:         "Join Arena rooms from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				c.log.Sync() //nolint:errcheck // nothing useful to do on exit
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), 0, "")
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file to load before the environment")

	root.AddCommand(
		newRoomCmd(c),
		newLobbyCmd(c),
		newDungeonsCmd(c),
		newLeaveCmd(c),
		newResetCmd(c),
		newLoginCmd(c),
		newLogoutCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) load() error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = log
	c.api = client.New(cfg.APIURL, cfg.Token)
	return nil
}

// identity resolves the logged-in user. /users/me is authoritative; when the
// API is unreachable the token's own claims are enough to carry on.
func (c *cli) identity(ctx context.Context) (*domain.User, error) {
	if c.cfg.Token == "" {
		return nil, errNotLoggedIn
	}
	me, err := c.api.GetMe(ctx)
	if err == nil {
		return me, nil
	}
	if client.IsStatus(err, http.StatusUnauthorized) {
		return nil, errNotLoggedIn
	}
	id, idErr := auth.UserID(c.cfg.Token)
	if idErr != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	c.log.Warn("profile lookup failed, using token claims", zap.Int64("user_id", id), zap.Error(err))
	return &domain.User{ID: id}, nil
}

// dialGateway connects to the room gateway, or returns gateway.Offline when
// it cannot be reached so rooms run on REST alone.
func (c *cli) dialGateway(ctx context.Context) (session.Gateway, func(), error) {
	dctx, cancel := context.WithTimeout(ctx, gatewayDialTimeout)
	defer cancel()
	gw, err := gateway.Dial(dctx, gateway.Options{
		URL:        c.cfg.WSURL,
		Token:      c.cfg.Token,
		Logger:     c.log,
		MinBackoff: c.cfg.ReconnectMin,
		MaxBackoff: c.cfg.ReconnectMax,
	})
	if errors.Is(err, domain.ErrAuthRequired) {
		return nil, nil, errNotLoggedIn
	}
	if err != nil {
		c.log.Warn("gateway unavailable, running on REST", zap.String("url", c.cfg.WSURL), zap.Error(err))
		return gateway.Offline{}, func() {}, nil
	}
	return gw, func() { gw.Close() }, nil //nolint:errcheck
}

func (c *cli) runTUI(ctx context.Context, roomID int64, password string) error {
	me, err := c.identity(ctx)
	if err != nil {
		return err
	}
	gw, closeGW, err := c.dialGateway(ctx)
	if err != nil {
		return err
	}
	defer closeGW()

	c.log.Info("starting", zap.Int64("user_id", me.ID), zap.String("api", c.cfg.APIURL))
	app := tui.NewApp(tui.Options{
		Room: room.Deps{
			API:            c.api,
			Gateway:        gw,
			Store:          roomstate.NewStore(),
			Passwords:      session.NewPasswordCache(),
			UserID:         me.ID,
			Username:       me.Username,
			PollInterval:   c.cfg.PollInterval,
			CommandTimeout: c.cfg.CommandTimeout,
			Logger:         c.log,
		},
		RoomURL:  c.cfg.RoomURL,
		RoomID:   roomID,
		Password: password,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
