package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"lection/internal/model"
	"lection/internal/repository"
)

// LobbyService owns the lobby lifecycle state machine: creation, join
// admission, prompt and response submission, and the close protocol.
type LobbyService struct {
	lobbyRepo   repository.LobbyRepo
	archiveRepo repository.ArchiveRepo
	hostRepo    repository.HostRepo
	statsRepo   repository.StatsRepo
	allocator   *JoinCodeAllocator
	gracePeriod time.Duration
	standardCap int
}

// NewLobbyService creates a new lobby service. gracePeriod is how long the
// close protocol waits for in-flight mutations to land before finalizing;
// standardCap is the participant limit for standard-tier lobbies.
func NewLobbyService(
	lobbyRepo repository.LobbyRepo,
	archiveRepo repository.ArchiveRepo,
	hostRepo repository.HostRepo,
	statsRepo repository.StatsRepo,
	allocator *JoinCodeAllocator,
	gracePeriod time.Duration,
	standardCap int,
) *LobbyService {
	return &LobbyService{
		lobbyRepo:   lobbyRepo,
		archiveRepo: archiveRepo,
		hostRepo:    hostRepo,
		statsRepo:   statsRepo,
		allocator:   allocator,
		gracePeriod: gracePeriod,
		standardCap: standardCap,
	}
}

// Create allocates a join code and persists a new lobby. The active counter
// is incremented before the insert and compensated on failure; the counter
// is advisory, so a failed compensation only drifts the metric.
func (s *LobbyService) Create(ctx context.Context, init model.LobbyInit) (int, error) {
	if err := s.statsRepo.IncrementActive(ctx, 1); err != nil {
		log.Printf("failed to increment active lobby count: %v", err)
	}

	joincode, err := s.allocator.Allocate(ctx)
	if err != nil {
		s.compensateActive(ctx)
		return 0, fmt.Errorf("failed to allocate join code: %w", err)
	}

	lobby := &model.Lobby{
		JoinCode:        joincode,
		HostID:          init.HostID,
		Group:           init.Group,
		MembershipLevel: init.MembershipLevel,
		Status:          model.LobbyOpen,
		Participants:    []model.Participant{},
		Prompts:         []any{},
	}
	if err := s.lobbyRepo.Insert(ctx, lobby); err != nil {
		s.compensateActive(ctx)
		return 0, fmt.Errorf("failed to create lobby: %w", err)
	}
	log.Printf("[%06d] - created", joincode)

	// Group bookkeeping is not worth failing a created lobby over.
	if init.HostID != "" {
		if err := s.hostRepo.TouchGroup(ctx, init.HostID, init.Group); err != nil {
			log.Printf("[%06d] failed to update host groups: %v", joincode, err)
		}
	}

	return joincode, nil
}

// Join admits a participant into an open lobby. Rejections come back as a
// JoinResult, not an error; errors are reserved for store failures. The
// capacity check and the append are separate operations, so concurrent
// joins at the cap boundary can transiently exceed it.
func (s *LobbyService) Join(ctx context.Context, joincode int, name, userid string) (model.JoinResult, error) {
	gate, err := s.lobbyRepo.JoinGate(ctx, joincode)
	if err != nil {
		return model.JoinResult{}, fmt.Errorf("failed to read lobby: %w", err)
	}
	if gate == nil {
		return model.JoinResult{Joined: false, Message: MsgPINNotFound}, nil
	}

	if gate.MembershipLevel == model.MembershipStandard && len(gate.Participants) >= s.standardCap {
		return model.JoinResult{Joined: false, Message: MsgLobbyFull}, nil
	}
	if gate.Status >= model.LobbyStarted {
		return model.JoinResult{Joined: false, Message: MsgLobbyStarted}, nil
	}

	participant := model.Participant{
		Name:      name,
		UserID:    userid,
		Responses: []any{},
	}
	if err := s.lobbyRepo.AppendParticipant(ctx, joincode, participant); err != nil {
		return model.JoinResult{}, fmt.Errorf("failed to add participant: %w", err)
	}

	log.Printf("[%06d]: %s added", joincode, name)
	return model.JoinResult{Joined: true, Message: MsgJoined}, nil
}

// SubmitPrompt appends a host prompt and marks the lobby started. The first
// prompt also stamps startTime; the read and the write are not atomic
// together, so two racing first prompts resolve last-write-wins, which is
// fine for advisory timing metadata.
func (s *LobbyService) SubmitPrompt(ctx context.Context, joincode int, prompt any) error {
	gate, err := s.lobbyRepo.PromptGate(ctx, joincode)
	if err != nil {
		return fmt.Errorf("failed to read lobby: %w", err)
	}
	if gate == nil {
		return ErrLobbyNotFound
	}

	var startTime int64
	if gate.StartTime == 0 {
		startTime = time.Now().Unix()
	}
	if err := s.lobbyRepo.AppendPrompt(ctx, joincode, prompt, startTime); err != nil {
		return fmt.Errorf("failed to submit prompt: %w", err)
	}
	return nil
}

// SubmitResponse appends a response to the matching participant. A userid
// with no matching participant succeeds silently.
func (s *LobbyService) SubmitResponse(ctx context.Context, joincode int, userid string, payload any) error {
	if err := s.lobbyRepo.AppendResponse(ctx, joincode, userid, payload); err != nil {
		return fmt.Errorf("failed to submit response: %w", err)
	}
	return nil
}

// Close finalizes a lobby: archive the final state, credit the host's
// aggregates, delete the live document. Both an explicit close request and
// a host disconnect funnel here; the guarded status transition lets exactly
// one caller run the finalize steps, every other caller is a no-op.
//
// The protocol keeps running even if the triggering request is cancelled
// mid-way; aborting after the status flip would strand the lobby closed
// but unarchived.
func (s *LobbyService) Close(ctx context.Context, joincode int) error {
	ctx = context.WithoutCancel(ctx)

	won, err := s.lobbyRepo.MarkClosed(ctx, joincode)
	if err != nil {
		return fmt.Errorf("failed to close lobby: %w", err)
	}
	if !won {
		// Already closed or already archived by a concurrent caller.
		return nil
	}

	// Coarse drain: let join/submit requests issued just before the close
	// land before the final state is read.
	time.Sleep(s.gracePeriod)

	lobby, err := s.lobbyRepo.GetByCode(ctx, joincode)
	if err != nil {
		return fmt.Errorf("failed to read lobby for archival: %w", err)
	}
	if lobby == nil {
		return nil
	}

	now := time.Now().Unix()
	startTime := lobby.StartTime
	if startTime == 0 {
		// Prompts were never issued; the lobby was alive but never started.
		startTime = now
	}
	duration := now - startTime

	if lobby.HostID != "" {
		delta := model.HostStatDelta{
			SecondsUsed: duration,
			Started:     1,
			Students:    len(lobby.Participants),
			Prompts:     len(lobby.Prompts),
		}
		if err := s.hostRepo.ApplyStats(ctx, lobby.HostID, delta); err != nil {
			return fmt.Errorf("failed to update host stats: %w", err)
		}
	}

	lobby.Status = model.LobbyClosed
	lobby.Duration = duration
	lobby.EndTime = now

	if err := s.archiveRepo.Insert(ctx, lobby); err != nil {
		return fmt.Errorf("failed to archive lobby: %w", err)
	}
	if err := s.lobbyRepo.Delete(ctx, joincode); err != nil {
		return fmt.Errorf("failed to delete lobby: %w", err)
	}
	if err := s.statsRepo.IncrementActive(ctx, -1); err != nil {
		log.Printf("[%06d] failed to decrement active lobby count: %v", joincode, err)
	}

	log.Printf("[%06d] - completed (alive for %d seconds)", joincode, duration)
	return nil
}

func (s *LobbyService) compensateActive(ctx context.Context) {
	if err := s.statsRepo.IncrementActive(ctx, -1); err != nil {
		log.Printf("failed to compensate active lobby count: %v", err)
	}
}
