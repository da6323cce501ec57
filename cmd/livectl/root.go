package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"teatime-live/internal/audit"
	auditdomain "teatime-live/internal/audit/domain"
	auditrepo "teatime-live/internal/audit/repository"
	boardrepo "teatime-live/internal/board/repository"
	"teatime-live/internal/config"
	"teatime-live/internal/db"
	"teatime-live/internal/live/domain"
	liverepo "teatime-live/internal/live/repository"
	"teatime-live/internal/live/roomctl"
	"teatime-live/internal/live/webhook"
	"teatime-live/internal/logging"
)

// teardowner is satisfied by *webhook.Reconciler.
type teardowner interface {
	Teardown(ctx context.Context, s *domain.Session, actorID, cause string) error
}

type audienceCounter interface {
	CountAudience(ctx context.Context, sessionID, excludeIdentity string) (int, error)
}

type auditLister interface {
	ListByBoard(ctx context.Context, boardID int64, limit, offset int32) ([]*auditdomain.AuditLog, error)
}

// app holds the collaborators the commands use. Unset fields are built from config
// in PersistentPreRunE.
type app struct {
	registry liverepo.Registry
	boards   boardrepo.Repository
	rooms    audienceCounter
	teardown teardowner
	audits   auditLister
	out      io.Writer
	conn     *sql.DB
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "livectl",
		Short:         "Inspect and repair board lives",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.out == nil {
				a.out = cmd.OutOrStdout()
			}
			if a.registry != nil {
				return nil
			}
			return a.connect()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.conn != nil {
				return a.conn.Close()
			}
			return nil
		},
	}
	root.AddCommand(newStatusCmd(a), newTeardownCmd(a), newAuditCmd(a))
	return root
}

// connect wires the commands to the database and the control plane named by the environment.
func (a *app) connect() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, nil)
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	a.conn = conn
	a.registry = liverepo.NewPostgresRepository(conn)
	a.boards = boardrepo.NewPostgresRepository(conn)
	auditRepo := auditrepo.NewPostgresRepository(conn)
	a.audits = auditRepo

	rooms := roomctl.NewLiveKit(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, roomctl.Options{
		Timeout:        cfg.CallTimeout(),
		CallsPerSecond: cfg.LiveKitCallsPerSecond,
	})
	a.rooms = rooms
	a.teardown = webhook.NewReconciler(
		webhook.NewVerifier(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret),
		a.registry, a.boards, rooms,
		audit.NewLogger(auditRepo, func(context.Context) string { return "livectl" }),
		nil,
	)
	return nil
}
