package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/roomsync"
)

// renderView prints the whole room after every change
func renderView(w io.Writer, v roomsync.View) {
	var b strings.Builder
	room := v.Room

	b.WriteString("\n==============================\n")
	if room == nil {
		fmt.Fprintf(&b, "Room %s  [%s]\n", v.RoomCode, v.Stream)
		b.WriteString("(no snapshot yet)\n")
		io.WriteString(w, b.String())
		return
	}

	fmt.Fprintf(&b, "Room %s", room.Code)
	if room.SessionName != "" {
		fmt.Fprintf(&b, "  %s", room.SessionName)
	}
	fmt.Fprintf(&b, "  [%s]\n", v.Stream)

	current := room.CurrentStory()
	revealed := room.VotesRevealed()

	fmt.Fprintf(&b, "\nParticipants (%d connected)\n", len(room.ConnectedParticipants()))
	for _, p := range room.Participants {
		marker := " "
		if current.VoteFor(p.ID) != nil {
			marker = "x"
		}
		status := ""
		if !p.Connected {
			status = " (away)"
		}
		you := ""
		if p.ID == v.ParticipantID {
			you = " (you)"
		}
		fmt.Fprintf(&b, "  [%s] %s%s%s\n", marker, p.Username, you, status)
	}

	b.WriteString("\nStories\n")
	if len(room.Stories) == 0 {
		b.WriteString("  (none)\n")
	}
	for i := range room.Stories {
		s := &room.Stories[i]
		marker := " "
		if current != nil && s.ID == current.ID {
			marker = ">"
		}
		points := ""
		if s.Sealed() {
			points = fmt.Sprintf("  = %s", *s.FinalPoints)
		}
		fmt.Fprintf(&b, " %s %d. %s%s\n", marker, i+1, s.DisplayName(), points)
	}
	fmt.Fprintf(&b, "  total %d points, %d/%d estimated\n", room.TotalPoints(), room.EstimatedStories(), len(room.Stories))

	if current != nil {
		fmt.Fprintf(&b, "\nVotes on %s\n", current.DisplayName())
		if len(current.Votes) == 0 {
			b.WriteString("  (none)\n")
		}
		for _, vote := range current.Votes {
			fmt.Fprintf(&b, "  %-16s %s\n", vote.ParticipantName, voteLabel(vote, revealed))
		}
		b.WriteString("\n")
		writeSelectedVote(&b, v.Vote)
	}

	if p := v.ConfirmPoints; p != nil {
		fmt.Fprintf(&b, "\nAverage %.1f, suggested %d points. 'confirm [points]' or 'revote'\n", p.Average, p.Rounded)
		if d := p.Discussion; d != nil {
			fmt.Fprintf(&b, "  %s\n", d.Message)
			fmt.Fprintf(&b, "  lowest %d (%s), highest %d (%s)\n", d.MinVote, d.MinVoter, d.MaxVote, d.MaxVoter)
		}
	}
	if p := v.ExistingStory; p != nil {
		name := p.ExternalID
		if p.Title != "" {
			name = strings.TrimPrefix(name+": "+p.Title, ": ")
		}
		if name == "" {
			name = "Untitled"
		}
		fmt.Fprintf(&b, "\nStory %s already exists", name)
		if p.FinalPoints != nil && *p.FinalPoints != "" {
			fmt.Fprintf(&b, " with %s points", *p.FinalPoints)
		}
		b.WriteString(". 'switch' to make it current or 'dismiss'\n")
	}
	if v.ResetConfirm {
		b.WriteString("\nReset all votes for the current story? (yes/no)\n")
	}

	io.WriteString(w, b.String())
}

func voteLabel(vote models.Vote, revealed bool) string {
	if (!revealed && !vote.Revealed) || vote.Value == "" {
		return "voted"
	}
	return string(vote.Value)
}

func writeSelectedVote(b *strings.Builder, vote roomsync.SelectedVote) {
	switch vote.State {
	case roomsync.VotePending:
		fmt.Fprintf(b, "Your vote: %s (sending)\n", vote.Value)
	case roomsync.VoteConfirmed:
		if vote.Value == "" {
			b.WriteString("Your vote: cast\n")
			return
		}
		fmt.Fprintf(b, "Your vote: %s\n", vote.Value)
	default:
		b.WriteString("Your vote: none\n")
	}
}
