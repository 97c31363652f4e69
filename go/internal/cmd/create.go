package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mcdev12/planningpoker/go/clients/roomapi"
)

var (
	createStoryID string
	createTitle   string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new room",
	Long: `Create a new planning poker room, optionally seeded with a first story,
and print its code.`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createStoryID, "story-id", "", "External id of the first story, e.g. JIRA-123")
	createCmd.Flags().StringVar(&createTitle, "title", "", "Title of the first story")
}

func runCreate(cmd *cobra.Command, args []string) error {
	client := roomapi.NewClient(cfg.APIURL)

	room, err := client.CreateRoom(cmd.Context(), roomapi.CreateRoomRequest{
		StoryID: createStoryID,
		Title:   createTitle,
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	log.Info().Str("room_code", room.Code).Msg("created room")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Room %s created: %s\n", room.Code, room.SessionName)
	fmt.Fprintf(out, "Join with: pokerclient join %s --username <name>\n", room.Code)
	return nil
}
