package inmemory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sharetube/disco/internal/domain"
	"github.com/sharetube/disco/internal/repository/room"
)

const defaultMaxAttempts = 32

type iConnRepo interface {
	Bind(connID, roomCode string) error
	UnbindIfRoom(connID, roomCode string) bool
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	CodeLength int
	// MaxAttempts bounds the collision retry loop of Create.
	MaxAttempts int
}

type repo struct {
	rooms       map[string]*domain.Room
	mu          sync.RWMutex
	connRepo    iConnRepo
	generator   iGenerator
	codeLength  int
	maxAttempts int
	logger      *slog.Logger
}

func NewRepo(connRepo iConnRepo, generator iGenerator, cfg *Config, logger *slog.Logger) *repo {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}

	return &repo{
		rooms:       make(map[string]*domain.Room),
		connRepo:    connRepo,
		generator:   generator,
		codeLength:  cfg.CodeLength,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

func (r *repo) freeCode(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		code := r.generator.GenerateRandomString(r.codeLength)
		if _, taken := r.rooms[code]; !taken {
			return code, nil
		}

		r.logger.DebugContext(ctx, "room code collision", "room_code", code, "attempt", attempt)
	}

	return "", room.ErrRoomCodeSpaceExhausted
}

// Create allocates a fresh code and binds the admin connection to it.
func (r *repo) Create(ctx context.Context, params *room.CreateRoomParams) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.freeCode(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.connRepo.Bind(params.AdminConnID, code); err != nil {
		return nil, fmt.Errorf("failed to bind admin connection: %w", err)
	}

	rm := domain.NewRoom(&domain.NewRoomParams{
		Code:         code,
		AdminID:      params.AdminID,
		AdminConnID:  params.AdminConnID,
		InitialTrack: params.InitialTrack,
		Playlist:     params.Playlist,
		CreatedAt:    params.CreatedAt,
	})
	r.rooms[code] = rm

	r.logger.DebugContext(ctx, "room created", "room_code", code)
	return rm, nil
}

func (r *repo) Get(ctx context.Context, code string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[code]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return rm, nil
}

// Delete removes the room together with every connection binding that pointed
// at it. It takes the room lock, so callers must not hold it.
func (r *repo) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return room.ErrRoomNotFound
	}

	rm.Lock()
	rm.Close()
	connIDs := rm.ConnIDs()
	rm.Unlock()

	for _, connID := range connIDs {
		r.connRepo.UnbindIfRoom(connID, code)
	}
	delete(r.rooms, code)

	r.logger.DebugContext(ctx, "room deleted", "room_code", code, "conns", len(connIDs))
	return nil
}

func (r *repo) List(ctx context.Context) []*domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*domain.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, rm)
	}

	return rooms
}

func (r *repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
