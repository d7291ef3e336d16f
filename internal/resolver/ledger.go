package resolver

import (
	"sync"

	"github.com/agentstation/utc"
)

// Correction records one automatic municipality correction.
type Correction struct {
	Original  string   `json:"original" yaml:"original"`
	Corrected string   `json:"corrected" yaml:"corrected"`
	Method    Method   `json:"method" yaml:"method"`
	Timestamp utc.Time `json:"timestamp" yaml:"timestamp"`
}

// Ledger is an append-only, chronologically ordered log of corrections.
type Ledger struct {
	mu      sync.Mutex
	records []Correction
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends a correction stamped with the current time.
func (l *Ledger) Record(original, corrected string, method Method) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, Correction{
		Original:  original,
		Corrected: corrected,
		Method:    method,
		Timestamp: utc.Now(),
	})
}

// Drain returns the recorded corrections in call order and empties the ledger.
func (l *Ledger) Drain() []Correction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.records
	l.records = nil
	return out
}

// Len returns the number of recorded corrections.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Reset discards all records.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}
