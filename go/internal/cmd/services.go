package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/mcdev12/planningpoker/go/clients/roomapi"
	"github.com/mcdev12/planningpoker/go/internal/config"
	"github.com/mcdev12/planningpoker/go/internal/identity"
	"github.com/mcdev12/planningpoker/go/internal/mirror"
	"github.com/mcdev12/planningpoker/go/internal/roomsync"
	"github.com/mcdev12/planningpoker/go/internal/status"
	"github.com/mcdev12/planningpoker/go/internal/wsclient"
)

type Services struct {
	API      *roomapi.Client
	Dialer   *wsclient.Dialer
	Identity *identity.FileStore
	Counters *status.Counters
	Mirror   *mirror.Mirror
	Clock    clockwork.Clock

	nc *nats.Conn
}

func setupServices(cfg config.Config, logger zerolog.Logger) (*Services, error) {
	// Wire up dependency injection chain
	// Config → clients → controller collaborators
	clock := clockwork.NewRealClock()

	services := &Services{
		API:      roomapi.NewClient(cfg.APIURL),
		Dialer:   wsclient.NewDialer(cfg.WSURL, cfg.Stream.WSClient(), clock, logger.With().Str("component", "wsclient").Logger()),
		Identity: identity.NewFileStore(cfg.IdentityPath),
		Counters: status.NewCounters(),
		Clock:    clock,
	}

	// Snapshot mirror is optional
	if cfg.NATSURL != "" {
		natsCfg := mirror.DefaultConfig()
		natsCfg.URL = cfg.NATSURL
		natsCfg.SubjectPrefix = cfg.NATSSubject

		mirrorLogger := logger.With().Str("component", "mirror").Logger()
		nc, err := mirror.Connect(natsCfg, mirrorLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up snapshot mirror: %w", err)
		}
		services.nc = nc
		services.Mirror = mirror.New(nc, natsCfg.SubjectPrefix, clock, mirrorLogger)
	}

	return services, nil
}

// Controller builds a room controller over the services. onChange may be nil.
func (s *Services) Controller(logger zerolog.Logger, onChange func(roomsync.View)) *roomsync.Controller {
	observers := []func(roomsync.View){}
	if onChange != nil {
		observers = append(observers, onChange)
	}
	if s.Mirror != nil {
		observers = append(observers, s.Mirror.Observe)
	}

	return roomsync.New(roomsync.Options{
		API: s.API,
		Dialer: roomsync.DialerFunc(func(ctx context.Context, roomCode string) (roomsync.Stream, error) {
			conn, err := s.Dialer.Dial(ctx, roomCode)
			if err != nil {
				return nil, err
			}
			return conn, nil
		}),
		Identity: s.Identity,
		Logger:   logger,
		Clock:    s.Clock,
		Metrics:  s.Counters,
		OnChange: func(v roomsync.View) {
			for _, observe := range observers {
				observe(v)
			}
		},
	})
}

func (s *Services) Close() {
	if s.nc != nil {
		s.nc.Drain()
	}
}
