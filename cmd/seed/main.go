// seed inserts a development board with an owner and one roster member, then prints
// access tokens for both so the live routes can be exercised locally.
// Each run creates a new board broadcasting shortly after now, inside the open window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"teatime-live/internal/config"
	"teatime-live/internal/db"
	"teatime-live/internal/db/sqlc/gen"
	"teatime-live/internal/logging"
	"teatime-live/internal/security"
)

const (
	devOwnerID    = "dev-owner-001"
	devOwnerName  = "Dev Owner"
	devMemberID   = "dev-member-001"
	devMemberName = "Dev Member"
)

func main() {
	broadcastIn := flag.Duration("broadcast-in", 10*time.Minute, "how far from now the board broadcasts")
	maxAudience := flag.Int("max-audience", 0, "board audience limit (0 = unlimited)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}

	tokens, err := security.LoadTokenProvider(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	if err != nil {
		log.Fatal().Err(err).Msg("JWT_PRIVATE_KEY must hold a PEM private key or a path to one")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	defer conn.Close()

	queries := gen.New(conn)
	ctx := context.Background()
	broadcastAt := time.Now().UTC().Add(*broadcastIn).Truncate(time.Minute)

	board, err := queries.CreateBoard(ctx, gen.CreateBoardParams{
		OwnerID:     devOwnerID,
		Title:       "Dev teatime",
		MaxAudience: int32(*maxAudience),
		BroadcastAt: broadcastAt,
		EndsAt:      broadcastAt.Add(time.Hour),
		Activated:   true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create board")
	}
	if err := queries.AddBoardParticipant(ctx, gen.AddBoardParticipantParams{
		BoardID: board.ID,
		UserID:  devMemberID,
	}); err != nil {
		log.Fatal().Err(err).Msg("add member")
	}

	ownerToken, _, err := tokens.IssueAccess(devOwnerID, devOwnerName)
	if err != nil {
		log.Fatal().Err(err).Msg("issue owner token")
	}
	memberToken, _, err := tokens.IssueAccess(devMemberID, devMemberName)
	if err != nil {
		log.Fatal().Err(err).Msg("issue member token")
	}

	log.Info().Int64("board_id", board.ID).Time("broadcast_at", broadcastAt).Msg("seed completed")
	fmt.Printf("Board: %d (broadcast %s)\n", board.ID, broadcastAt.Format(time.RFC3339))
	fmt.Printf("Owner token (%s): %s\n", devOwnerID, ownerToken)
	fmt.Printf("Member token (%s): %s\n", devMemberID, memberToken)
}
