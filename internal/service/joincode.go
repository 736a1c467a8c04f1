package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"lection/internal/cache"
	"lection/internal/repository"
)

const joinCodeSpace = 1000000 // 6-digit codes, 000000-999999

// JoinCodeAllocator hands out join codes not used by any live lobby. A
// candidate is reserved in Redis first so concurrent creators cannot race
// each other onto the same code, then checked against the store.
type JoinCodeAllocator struct {
	lobbyRepo   repository.LobbyRepo
	codeCache   cache.CodeCache
	maxAttempts int
}

// NewJoinCodeAllocator creates a new allocator
func NewJoinCodeAllocator(lobbyRepo repository.LobbyRepo, codeCache cache.CodeCache, maxAttempts int) *JoinCodeAllocator {
	return &JoinCodeAllocator{
		lobbyRepo:   lobbyRepo,
		codeCache:   codeCache,
		maxAttempts: maxAttempts,
	}
}

// Allocate returns a join code free at the time of the check. The retry
// budget keeps a saturated code space from looping forever.
func (a *JoinCodeAllocator) Allocate(ctx context.Context) (int, error) {
	for attempts := 0; attempts < a.maxAttempts; attempts++ {
		code, err := randomCode()
		if err != nil {
			return 0, fmt.Errorf("failed to generate candidate code: %w", err)
		}

		reserved, err := a.codeCache.Reserve(ctx, code)
		if err != nil {
			return 0, fmt.Errorf("failed to reserve code: %w", err)
		}
		if !reserved {
			continue
		}

		count, err := a.lobbyRepo.CountByCode(ctx, code)
		if err != nil {
			return 0, fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if count == 0 {
			return code, nil
		}

		// A live lobby still holds this code; drop the reservation.
		if err := a.codeCache.Release(ctx, code); err != nil {
			return 0, fmt.Errorf("failed to release code: %w", err)
		}
	}

	return 0, ErrCodeSpaceExhausted
}

func randomCode() (int, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(b[:]) % joinCodeSpace), nil
}
