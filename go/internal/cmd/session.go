package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/roomsync"
)

// roomController is the part of *roomsync.Controller the session drives
type roomController interface {
	View() roomsync.View
	Done() <-chan struct{}
	Vote(value models.VoteValue) error
	Reveal() error
	RequestReset()
	CancelReset()
	Reset() error
	RejectPoints() error
	DismissConfirmPoints()
	AddStory(storyID, title string) error
	ChangeStory(storyID string) error
	SwitchToExistingStory(storyID string) error
	DismissExistingStory()
	ConfirmPoints(points string) error
	Refresh(ctx context.Context) (*models.Room, error)
	Leave() error
	Close() error
}

const helpText = `Commands:
  vote <value>        cast a vote (0 1 2 3 5 8 13 21 ? coffee)
  reveal [force]      reveal votes once everyone has voted
  reset               clear all votes for the current story
  add [id] [title]    add a story
  story <ref>         make a story current (id, external id or list number)
  switch [id]         switch to the story that already exists
  confirm [points]    confirm the final points (defaults to the rounded average)
  revote              reject the revealed points and vote again
  dismiss             close open prompts
  refresh             refetch the room
  leave               leave the room and forget this identity
  quit                disconnect
`

type session struct {
	ctrl roomController
	in   io.Reader
	out  io.Writer
}

func newSession(ctrl roomController, in io.Reader, out io.Writer) *session {
	return &session{ctrl: ctrl, in: in, out: out}
}

// Run reads commands until quit, EOF, ctx cancellation or the end of the
// room stream.
func (s *session) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.ctrl.Done():
			fmt.Fprintln(s.out, "Connection to the room closed. Run join again to reconnect.")
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := s.execute(ctx, line)
			if err != nil {
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

func (s *session) execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	command, args := strings.ToLower(fields[0]), fields[1:]
	view := s.ctrl.View()

	if view.ResetConfirm {
		switch command {
		case "yes", "y":
			return false, intentErr(s.ctrl.Reset())
		case "no", "n":
			s.ctrl.CancelReset()
			return false, nil
		}
	}

	switch command {
	case "help", "h":
		fmt.Fprint(s.out, helpText)

	case "vote", "v":
		if len(args) != 1 {
			return false, errors.New("usage: vote <value>")
		}
		value, err := models.ParseVoteValue(args[0])
		if err != nil {
			return false, err
		}
		return false, intentErr(s.ctrl.Vote(value))

	case "reveal":
		force := len(args) == 1 && args[0] == "force"
		if !force && !view.Room.AllConnectedVoted() {
			return false, errors.New("not everyone has voted yet; use 'reveal force' to reveal anyway")
		}
		return false, intentErr(s.ctrl.Reveal())

	case "reset":
		s.ctrl.RequestReset()

	case "add":
		var storyID, title string
		if len(args) > 0 {
			storyID = args[0]
			title = strings.Join(args[1:], " ")
		}
		return false, intentErr(s.ctrl.AddStory(storyID, title))

	case "story":
		if len(args) != 1 {
			return false, errors.New("usage: story <ref>")
		}
		story := resolveStory(view.Room, args[0])
		if story == nil {
			return false, fmt.Errorf("no story matches %q", args[0])
		}
		return false, intentErr(s.ctrl.ChangeStory(story.ID))

	case "switch":
		storyID := ""
		if len(args) > 0 {
			storyID = args[0]
		} else if view.ExistingStory != nil {
			storyID = view.ExistingStory.StoryID
		}
		if storyID == "" {
			return false, errors.New("usage: switch <id>")
		}
		return false, intentErr(s.ctrl.SwitchToExistingStory(storyID))

	case "confirm":
		points := ""
		if len(args) > 0 {
			points = args[0]
		} else if view.ConfirmPoints != nil {
			points = strconv.Itoa(view.ConfirmPoints.Rounded)
		}
		if points == "" {
			return false, errors.New("usage: confirm <points>")
		}
		return false, intentErr(s.ctrl.ConfirmPoints(points))

	case "revote":
		return false, intentErr(s.ctrl.RejectPoints())

	case "dismiss":
		s.ctrl.DismissExistingStory()
		s.ctrl.DismissConfirmPoints()
		s.ctrl.CancelReset()

	case "refresh":
		_, err := s.ctrl.Refresh(ctx)
		return false, err

	case "leave":
		return true, s.ctrl.Leave()

	case "quit", "exit", "q":
		return true, s.ctrl.Close()

	default:
		return false, fmt.Errorf("unknown command %q, type help", command)
	}
	return false, nil
}

func intentErr(err error) error {
	if errors.Is(err, roomsync.ErrIntentIgnored) {
		return errors.New("not connected to the room, nothing was sent")
	}
	return err
}

// resolveStory matches a story by internal id, external id or 1-based
// position in the list.
func resolveStory(room *models.Room, ref string) *models.Story {
	if room == nil {
		return nil
	}
	if s := room.Story(ref); s != nil {
		return s
	}
	for i := range room.Stories {
		if id := room.Stories[i].StoryID; id != nil && strings.EqualFold(*id, ref) {
			return &room.Stories[i]
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(room.Stories) {
		return &room.Stories[n-1]
	}
	return nil
}
