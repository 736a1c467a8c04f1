package service

import (
	"context"
	"errors"
	"sync"

	"lection/internal/model"
)

// In-memory mock repositories mirroring the single-document atomicity the
// Mongo implementations provide.

type mockLobbyRepo struct {
	mu      sync.Mutex
	lobbies map[int]*model.Lobby

	shouldFailInsert bool
	shouldFailRead   bool
}

func newMockLobbyRepo() *mockLobbyRepo {
	return &mockLobbyRepo{lobbies: make(map[int]*model.Lobby)}
}

func (m *mockLobbyRepo) Insert(ctx context.Context, lobby *model.Lobby) error {
	if m.shouldFailInsert {
		return errors.New("insert failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *lobby
	m.lobbies[lobby.JoinCode] = &cp
	return nil
}

func (m *mockLobbyRepo) GetByCode(ctx context.Context, joincode int) (*model.Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFailRead {
		return nil, errors.New("read failed")
	}
	lobby, ok := m.lobbies[joincode]
	if !ok {
		return nil, nil
	}
	cp := *lobby
	cp.Participants = append([]model.Participant(nil), lobby.Participants...)
	cp.Prompts = append([]any(nil), lobby.Prompts...)
	return &cp, nil
}

func (m *mockLobbyRepo) CountByCode(ctx context.Context, joincode int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lobbies[joincode]; ok {
		return 1, nil
	}
	return 0, nil
}

func (m *mockLobbyRepo) JoinGate(ctx context.Context, joincode int) (*model.JoinGate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFailRead {
		return nil, errors.New("read failed")
	}
	lobby, ok := m.lobbies[joincode]
	if !ok {
		return nil, nil
	}
	return &model.JoinGate{
		Status:          lobby.Status,
		MembershipLevel: lobby.MembershipLevel,
		Participants:    append([]model.Participant(nil), lobby.Participants...),
	}, nil
}

func (m *mockLobbyRepo) PromptGate(ctx context.Context, joincode int) (*model.PromptGate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFailRead {
		return nil, errors.New("read failed")
	}
	lobby, ok := m.lobbies[joincode]
	if !ok {
		return nil, nil
	}
	return &model.PromptGate{Status: lobby.Status, StartTime: lobby.StartTime}, nil
}

func (m *mockLobbyRepo) HostSnapshot(ctx context.Context, joincode int) (*model.HostSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFailRead {
		return nil, errors.New("read failed")
	}
	lobby, ok := m.lobbies[joincode]
	if !ok {
		return nil, nil
	}
	return &model.HostSnapshot{
		Participants: append([]model.Participant(nil), lobby.Participants...),
		Prompts:      append([]any(nil), lobby.Prompts...),
	}, nil
}

func (m *mockLobbyRepo) ParticipantSnapshot(ctx context.Context, joincode int) (*model.ParticipantSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFailRead {
		return nil, errors.New("read failed")
	}
	lobby, ok := m.lobbies[joincode]
	if !ok {
		return nil, nil
	}
	return &model.ParticipantSnapshot{
		Status:  lobby.Status,
		Prompts: append([]any(nil), lobby.Prompts...),
	}, nil
}

func (m *mockLobbyRepo) AppendParticipant(ctx context.Context, joincode int, p model.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lobby, ok := m.lobbies[joincode]; ok {
		lobby.Participants = append(lobby.Participants, p)
	}
	return nil
}

func (m *mockLobbyRepo) AppendResponse(ctx context.Context, joincode int, userid string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lobby, ok := m.lobbies[joincode]
	if !ok {
		return nil
	}
	for i := range lobby.Participants {
		if lobby.Participants[i].UserID == userid {
			lobby.Participants[i].Responses = append(lobby.Participants[i].Responses, payload)
			return nil
		}
	}
	return nil
}

func (m *mockLobbyRepo) AppendPrompt(ctx context.Context, joincode int, prompt any, startTime int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lobby, ok := m.lobbies[joincode]
	if !ok {
		return nil
	}
	lobby.Prompts = append(lobby.Prompts, prompt)
	if lobby.Status < model.LobbyStarted {
		lobby.Status = model.LobbyStarted
	}
	if startTime != 0 {
		lobby.StartTime = startTime
	}
	return nil
}

func (m *mockLobbyRepo) MarkClosed(ctx context.Context, joincode int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lobby, ok := m.lobbies[joincode]
	if !ok || lobby.Status >= model.LobbyClosed {
		return false, nil
	}
	lobby.Status = model.LobbyClosed
	return true, nil
}

func (m *mockLobbyRepo) Delete(ctx context.Context, joincode int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lobbies, joincode)
	return nil
}

func (m *mockLobbyRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (m *mockLobbyRepo) setFailRead(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailRead = fail
}

type mockArchiveRepo struct {
	mu       sync.Mutex
	archived []*model.Lobby
}

func newMockArchiveRepo() *mockArchiveRepo {
	return &mockArchiveRepo{}
}

func (m *mockArchiveRepo) Insert(ctx context.Context, lobby *model.Lobby) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *lobby
	m.archived = append(m.archived, &cp)
	return nil
}

func (m *mockArchiveRepo) GetByCode(ctx context.Context, joincode int) (*model.Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lobby := range m.archived {
		if lobby.JoinCode == joincode {
			cp := *lobby
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockArchiveRepo) count(joincode int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, lobby := range m.archived {
		if lobby.JoinCode == joincode {
			n++
		}
	}
	return n
}

type mockHostRepo struct {
	mu    sync.Mutex
	hosts map[string]*model.Host
}

func newMockHostRepo() *mockHostRepo {
	return &mockHostRepo{hosts: make(map[string]*model.Host)}
}

func (m *mockHostRepo) host(hostid string) *model.Host {
	if h, ok := m.hosts[hostid]; ok {
		return h
	}
	h := &model.Host{ID: hostid}
	m.hosts[hostid] = h
	return h
}

func (m *mockHostRepo) TouchGroup(ctx context.Context, hostid, group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.host(hostid)
	for _, g := range h.Groups {
		if g == group {
			h.LastGroup = group
			return nil
		}
	}
	h.Groups = append(h.Groups, group)
	h.LastGroup = group
	return nil
}

func (m *mockHostRepo) ApplyStats(ctx context.Context, hostid string, delta model.HostStatDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.host(hostid)
	h.LobbyMinutesUsed += delta.SecondsUsed
	h.Stats.LectionariesStarted += delta.Started
	h.Stats.StudentsTaught += delta.Students
	h.Stats.PromptsSubmitted += delta.Prompts
	return nil
}

func (m *mockHostRepo) GetByID(ctx context.Context, hostid string) (*model.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hosts[hostid]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

type mockStatsRepo struct {
	mu    sync.Mutex
	count int

	shouldFailIncrement bool
}

func newMockStatsRepo() *mockStatsRepo {
	return &mockStatsRepo{}
}

func (m *mockStatsRepo) IncrementActive(ctx context.Context, delta int) error {
	if m.shouldFailIncrement {
		return errors.New("increment failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count += delta
	return nil
}

func (m *mockStatsRepo) ActiveCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count, nil
}

type mockCodeCache struct {
	mu       sync.Mutex
	reserved map[int]bool

	shouldRejectAll bool
}

func newMockCodeCache() *mockCodeCache {
	return &mockCodeCache{reserved: make(map[int]bool)}
}

func (m *mockCodeCache) Reserve(ctx context.Context, joincode int) (bool, error) {
	if m.shouldRejectAll {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reserved[joincode] {
		return false, nil
	}
	m.reserved[joincode] = true
	return true, nil
}

func (m *mockCodeCache) Release(ctx context.Context, joincode int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reserved, joincode)
	return nil
}

type mockCloser struct {
	mu    sync.Mutex
	calls []int
}

func (m *mockCloser) Close(ctx context.Context, joincode int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, joincode)
	return nil
}

func (m *mockCloser) closeCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls...)
}
