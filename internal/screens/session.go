package screens

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
)

type Deps struct {
	API          StoreAPI
	Publisher    events.Publisher
	Formatter    *money.Formatter
	CatalogLimit int
	ShareBaseURL string
	Logger       *zap.Logger

	// SessionIdle evicts sessions not touched for that long; 0 keeps them.
	SessionIdle time.Duration
	// MaxSessions evicts the least recently used session once reached; 0
	// means no cap.
	MaxSessions int
}

// Session holds the screens of one user. Sessions share no mutable state.
type Session struct {
	UserID  string
	Catalog *CatalogScreen
	Cart    *CartScreen

	deps    Deps
	logger  *zap.Logger
	mu      sync.Mutex
	details map[int]*DetailsScreen
}

func NewSession(userID string, deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Formatter == nil {
		deps.Formatter = money.DefaultFormatter()
	}
	logger := deps.Logger.With(zap.String("user_id", userID))
	return &Session{
		UserID:  userID,
		Catalog: NewCatalogScreen(deps.API, deps.CatalogLimit, deps.Formatter, logger),
		Cart:    NewCartScreen(userID, deps.API, deps.Publisher, deps.Formatter, logger),
		deps:    deps,
		logger:  logger,
		details: map[int]*DetailsScreen{},
	}
}

// OpenDetails returns the details screen for productID. The product comes
// from the loaded catalog when possible and is fetched by id otherwise.
func (s *Session) OpenDetails(ctx context.Context, productID int) (*DetailsScreen, error) {
	s.mu.Lock()
	if d, ok := s.details[productID]; ok {
		s.mu.Unlock()
		return d, nil
	}
	s.mu.Unlock()

	p, ok := s.Catalog.Product(productID)
	if !ok {
		s.logger.Debug("product not in catalog, fetching by id", zap.Int("product_id", productID))
		var err error
		if p, err = s.deps.API.FetchProduct(ctx, productID); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.details[productID]; ok {
		return d, nil
	}
	d := NewDetailsScreen(p, s.deps.Formatter, s.deps.ShareBaseURL)
	s.details[productID] = d
	return d, nil
}

func (s *Session) CloseDetails(productID int) {
	s.mu.Lock()
	delete(s.details, productID)
	s.mu.Unlock()
}

// Close leaves every screen; results still in flight are dropped.
func (s *Session) Close() {
	s.Catalog.Leave()
	s.Cart.Leave()
	s.mu.Lock()
	s.details = map[int]*DetailsScreen{}
	s.mu.Unlock()
}

type registryEntry struct {
	session  *Session
	lastSeen time.Time
}

// Registry maps user ids to sessions. Sessions idle past Deps.SessionIdle and
// the least recently used one above Deps.MaxSessions are closed on the next
// Get.
type Registry struct {
	deps     Deps
	now      func() time.Time
	mu       sync.Mutex
	sessions map[string]*registryEntry
}

func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Registry{deps: deps, now: time.Now, sessions: map[string]*registryEntry{}}
}

// Get returns the session for userID, creating it on first use.
func (r *Registry) Get(userID string) *Session {
	r.mu.Lock()
	now := r.now()
	if e, ok := r.sessions[userID]; ok {
		e.lastSeen = now
		r.mu.Unlock()
		return e.session
	}

	evicted := r.evictLocked(now)
	s := NewSession(userID, r.deps)
	r.sessions[userID] = &registryEntry{session: s, lastSeen: now}
	r.mu.Unlock()

	for _, old := range evicted {
		r.deps.Logger.Debug("session evicted", zap.String("user_id", old.UserID))
		old.Close()
	}
	return s
}

// evictLocked removes idle sessions, then the oldest ones until a new session
// fits under the cap.
func (r *Registry) evictLocked(now time.Time) []*Session {
	var out []*Session
	if r.deps.SessionIdle > 0 {
		for id, e := range r.sessions {
			if now.Sub(e.lastSeen) >= r.deps.SessionIdle {
				delete(r.sessions, id)
				out = append(out, e.session)
			}
		}
	}
	for r.deps.MaxSessions > 0 && len(r.sessions) >= r.deps.MaxSessions {
		var oldestID string
		var oldest *registryEntry
		for id, e := range r.sessions {
			if oldest == nil || e.lastSeen.Before(oldest.lastSeen) {
				oldestID, oldest = id, e
			}
		}
		delete(r.sessions, oldestID)
		out = append(out, oldest.session)
	}
	return out
}

func (r *Registry) Drop(userID string) bool {
	r.mu.Lock()
	e, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	if ok {
		e.session.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*registryEntry{}
	r.mu.Unlock()

	for _, e := range sessions {
		e.session.Close()
	}
}
