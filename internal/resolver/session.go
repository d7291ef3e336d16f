package resolver

// Session carries the mutable state of one import run. Each run gets its own
// Session, so concurrent runs never observe each other's cache or corrections.
type Session struct {
	Cache  *Cache
	Ledger *Ledger
}

// NewSession creates a session with an empty cache and ledger.
func NewSession() *Session {
	return &Session{
		Cache:  NewCache(),
		Ledger: NewLedger(),
	}
}

// Reset clears the cache and the ledger together.
func (s *Session) Reset() {
	s.Cache.Reset()
	s.Ledger.Reset()
}
