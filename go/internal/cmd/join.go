package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mcdev12/planningpoker/go/internal/identity"
	"github.com/mcdev12/planningpoker/go/internal/roomsync"
)

var joinUsername string

var joinCmd = &cobra.Command{
	Use:   "join <code>",
	Short: "Join a room and follow it live",
	Long: `Join a room, open its live stream and read commands from stdin.
Type "help" once joined for the list of commands. The username defaults to
the one stored from the previous join.`,
	Args: cobra.ExactArgs(1),
	RunE: runJoin,
}

func init() {
	joinCmd.Flags().StringVarP(&joinUsername, "username", "u", "", "Display name in the room")
}

func runJoin(cmd *cobra.Command, args []string) error {
	code := strings.ToUpper(strings.TrimSpace(args[0]))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := setupServices(cfg, log.Logger)
	if err != nil {
		return err
	}
	defer services.Close()

	username := joinUsername
	if username == "" {
		stored, err := services.Identity.Load()
		if err != nil && !errors.Is(err, identity.ErrNoIdentity) {
			return fmt.Errorf("failed to load stored identity: %w", err)
		}
		username = stored.Username
	}
	if username == "" {
		return errors.New("--username is required for the first join")
	}

	out := cmd.OutOrStdout()
	ctrl := services.Controller(log.Logger, func(v roomsync.View) {
		renderView(out, v)
	})
	defer ctrl.Close()

	if _, err := ctrl.Join(ctx, code, username); err != nil {
		if errors.Is(err, roomsync.ErrRoomNotFound) {
			return fmt.Errorf("room %s does not exist; create one with 'pokerclient create'", code)
		}
		return err
	}

	startStatusServer(ctx, cfg.StatusAddr, ctrl, services.Counters, log.Logger)

	if err := ctrl.Connect(ctx); err != nil {
		return err
	}

	return newSession(ctrl, os.Stdin, out).Run(ctx)
}
