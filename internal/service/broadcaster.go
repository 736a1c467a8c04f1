package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"time"

	"lection/internal/model"
	"lection/internal/repository"

	"github.com/google/uuid"
)

const snapshotBuffer = 8

// LobbyCloser runs the close protocol for a lobby. Implemented by
// LobbyService; a narrower interface keeps the broadcaster testable.
type LobbyCloser interface {
	Close(ctx context.Context, joincode int) error
}

// Broadcaster feeds one observer connection per call: it polls a narrow
// projection of the lobby document on a fixed cadence and emits a snapshot
// whenever the content changes. Poll errors are logged and retried on the
// next tick, never surfaced to the observer.
type Broadcaster struct {
	lobbyRepo repository.LobbyRepo
	closer    LobbyCloser
	interval  time.Duration
}

// NewBroadcaster creates a new broadcaster. closer is invoked when a host
// observer disconnects; pass nil to disable disconnect-triggered closes.
func NewBroadcaster(lobbyRepo repository.LobbyRepo, closer LobbyCloser, interval time.Duration) *Broadcaster {
	return &Broadcaster{
		lobbyRepo: lobbyRepo,
		closer:    closer,
		interval:  interval,
	}
}

// ObserveHost streams {participants, prompts} snapshots until ctx is
// cancelled. Cancellation means the host connection is gone, which
// triggers the close protocol for the lobby; the guarded status transition
// inside Close keeps a concurrent explicit close from double-finalizing.
func (b *Broadcaster) ObserveHost(ctx context.Context, joincode int) <-chan model.HostSnapshot {
	obs := uuid.New().String()[:8]
	log.Printf("[%06d] host observer %s connected", joincode, obs)

	out := make(chan model.HostSnapshot, snapshotBuffer)
	go func() {
		defer close(out)
		poll(ctx, b.interval, joincode, "host", out, func(c context.Context) (*model.HostSnapshot, error) {
			return b.lobbyRepo.HostSnapshot(c, joincode)
		})
		log.Printf("[%06d] host observer %s disconnected", joincode, obs)
		b.closeOnHostDisconnect(joincode)
	}()
	return out
}

// ObserveParticipant streams {status, prompts} snapshots until ctx is
// cancelled.
func (b *Broadcaster) ObserveParticipant(ctx context.Context, joincode int, userid string) <-chan model.ParticipantSnapshot {
	obs := uuid.New().String()[:8]
	log.Printf("[%06d] participant observer %s connected for %s", joincode, obs, userid)

	out := make(chan model.ParticipantSnapshot, snapshotBuffer)
	go func() {
		defer close(out)
		poll(ctx, b.interval, joincode, "participant", out, func(c context.Context) (*model.ParticipantSnapshot, error) {
			return b.lobbyRepo.ParticipantSnapshot(c, joincode)
		})
		log.Printf("[%06d] participant observer %s disconnected", joincode, obs)
	}()
	return out
}

func (b *Broadcaster) closeOnHostDisconnect(joincode int) {
	if b.closer == nil {
		return
	}
	// The observer's context is already cancelled; the close protocol
	// needs its own.
	if err := b.closer.Close(context.Background(), joincode); err != nil {
		log.Printf("[%06d] error closing lobby after host disconnect: %v", joincode, err)
	}
}

// poll is the shared tick loop. Change detection compares the marshaled
// snapshot against the previous tick's, so a deleted lobby (nil snapshot)
// registers as a change without emitting anything.
func poll[T any](ctx context.Context, interval time.Duration, joincode int, view string, out chan<- T, fetch func(context.Context) (*T, error)) {
	var last []byte

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("[%06d] %s poll error: %v", joincode, view, err)
				continue
			}

			cur, err := json.Marshal(snap)
			if err != nil {
				log.Printf("[%06d] %s snapshot marshal error: %v", joincode, view, err)
				continue
			}
			if bytes.Equal(cur, last) {
				continue
			}
			last = cur

			if snap == nil {
				continue
			}
			select {
			case out <- *snap:
			case <-ctx.Done():
				return
			}
		}
	}
}
