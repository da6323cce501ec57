package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"teatime-live/internal/live/domain"
	"teatime-live/internal/live/webhook"
)

const operatorActor = "operator"

func newStatusCmd(a *app) *cobra.Command {
	var boardID int64
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a board has an open live",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			board, err := a.boards.GetByID(ctx, boardID)
			if err != nil {
				return err
			}
			if board == nil {
				return fmt.Errorf("board %d not found", boardID)
			}
			fmt.Fprintf(a.out, "board %d %q owner=%s activated=%v broadcast=%s\n",
				board.ID, board.Title, board.OwnerID, board.Activated, board.BroadcastAt.UTC().Format(time.RFC3339))

			s, err := a.registry.Get(ctx, boardID)
			if errors.Is(err, domain.ErrSessionNotFound) {
				fmt.Fprintln(a.out, "live: closed")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "live: open session=%s since=%s\n", s.ID, s.CreatedAt.UTC().Format(time.RFC3339))
			if a.rooms != nil {
				n, err := a.rooms.CountAudience(ctx, s.ID, board.OwnerID)
				if err != nil {
					fmt.Fprintf(a.out, "audience: unknown (%v)\n", err)
				} else {
					fmt.Fprintf(a.out, "audience: %d\n", n)
				}
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&boardID, "board", 0, "board id")
	_ = cmd.MarkFlagRequired("board")
	return cmd
}

func newTeardownCmd(a *app) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "End a live: delete its room and remove the session record",
		Long: `Runs the same teardown as an owner leaving. Use it to finish a teardown
whose room deletion failed and left the session record behind.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.registry.GetBySessionID(ctx, sessionID)
			if errors.Is(err, domain.ErrSessionNotFound) {
				fmt.Fprintf(a.out, "session %s is not open, nothing to do\n", sessionID)
				return nil
			}
			if err != nil {
				return err
			}
			if err := a.teardown.Teardown(ctx, s, operatorActor, webhook.CauseOperator); err != nil {
				return fmt.Errorf("teardown session %s: %w", sessionID, err)
			}
			fmt.Fprintf(a.out, "session %s on board %d closed\n", s.ID, s.BoardID)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (room name)")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func newAuditCmd(a *app) *cobra.Command {
	var (
		boardID int64
		limit   int32
		offset  int32
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List a board's live audit log, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = 20
			}
			logs, err := a.audits.ListByBoard(cmd.Context(), boardID, limit, offset)
			if err != nil {
				return err
			}
			for _, l := range logs {
				fmt.Fprintf(a.out, "%s  %-20s user=%s ip=%s %s\n",
					l.CreatedAt.UTC().Format(time.RFC3339), l.Action, l.UserID, l.IP, l.Metadata)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&boardID, "board", 0, "board id")
	cmd.Flags().Int32Var(&limit, "limit", 20, "max entries")
	cmd.Flags().Int32Var(&offset, "offset", 0, "entries to skip")
	_ = cmd.MarkFlagRequired("board")
	return cmd
}
