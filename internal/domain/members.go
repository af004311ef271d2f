package domain

import (
	"errors"
	"slices"
	"time"

	"golang.org/x/exp/maps"
)

var (
	ErrGuestNotFound      = errors.New("guest not found")
	ErrGuestAlreadyExists = errors.New("guest already exists")
)

type Guest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	ConnID    string    `json:"-"`
	JoinedAt  time.Time `json:"joined_at"`
	IsActive  bool      `json:"is_active"`
	LatencyMs int64     `json:"latency_ms"`
}

type Guests struct {
	byID map[string]*Guest
}

func NewGuests() Guests {
	return Guests{byID: make(map[string]*Guest)}
}

func (g Guests) Length() int {
	return len(g.byID)
}

func (g Guests) ActiveCount() int {
	count := 0
	for _, guest := range g.byID {
		if guest.IsActive {
			count++
		}
	}

	return count
}

func (g Guests) GetByID(id string) (*Guest, error) {
	guest, ok := g.byID[id]
	if !ok {
		return nil, ErrGuestNotFound
	}

	return guest, nil
}

// GetByConn looks up the guest currently delivered through connID.
func (g Guests) GetByConn(connID string) (*Guest, error) {
	for _, guest := range g.byID {
		if guest.IsActive && guest.ConnID == connID {
			return guest, nil
		}
	}

	return nil, ErrGuestNotFound
}

func (g *Guests) Add(guest *Guest) error {
	if _, ok := g.byID[guest.ID]; ok {
		return ErrGuestAlreadyExists
	}

	g.byID[guest.ID] = guest
	return nil
}

// AsList returns copies ordered by join time.
func (g Guests) AsList() []Guest {
	guests := maps.Values(g.byID)
	slices.SortFunc(guests, func(a, b *Guest) int {
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	list := make([]Guest, 0, len(guests))
	for _, guest := range guests {
		list = append(list, *guest)
	}

	return list
}

func (g Guests) ActiveConnIDs() []string {
	ids := make([]string, 0, len(g.byID))
	for _, guest := range g.byID {
		if guest.IsActive {
			ids = append(ids, guest.ConnID)
		}
	}

	return ids
}

func (g Guests) ConnIDs() []string {
	ids := make([]string, 0, len(g.byID))
	for _, guest := range g.byID {
		ids = append(ids, guest.ConnID)
	}

	return ids
}
