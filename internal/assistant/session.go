package assistant

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sashasgithome/finance-bot-test/internal/cache"
	"github.com/sashasgithome/finance-bot-test/internal/ledger"
	"github.com/sashasgithome/finance-bot-test/internal/models"
	"github.com/sashasgithome/finance-bot-test/internal/taxonomy"
)

const (
	memoSize = 128
	memoTTL  = time.Hour
)

// Session is the state for one verified customer: an immutable ledger
// snapshot, the derived taxonomy and the conversation history. The Telegram
// surface handles each update on its own goroutine, so the mutable history
// is guarded even though turns are normally sequential.
type Session struct {
	CIF      string
	Profile  models.CustomerProfile
	Ledger   *ledger.Ledger
	Taxonomy taxonomy.Taxonomy

	mu      sync.Mutex
	history []models.Message

	// Per-query memoization, keyed on the raw query text and scoped to
	// the session lifetime.
	outcomes *cache.LRUCache[Outcome]
	plans    *cache.LRUCache[models.FilterSpec]
}

func NewSession(cif string, profile models.CustomerProfile, led *ledger.Ledger, tax taxonomy.Taxonomy) *Session {
	return &Session{
		CIF:      cif,
		Profile:  profile,
		Ledger:   led,
		Taxonomy: tax,
		outcomes: cache.NewLRUCache[Outcome](memoSize, memoTTL),
		plans:    cache.NewLRUCache[models.FilterSpec](memoSize, memoTTL),
	}
}

// Append records one conversation turn.
func (s *Session) Append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, models.Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
}

// History returns a copy of the conversation so far.
func (s *Session) History() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.history...)
}

// Reset clears the conversation history only. The customer stays verified
// and the taxonomy is not recomputed.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}
