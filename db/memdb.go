package db

import "sync"

// MemDatabase is the in-memory suppression store, used when
// DATABASE_URL is not configured and in tests. Entries last only as
// long as the process.
type MemDatabase struct {
	mu         sync.Mutex
	suppressed map[string]SuppressionData
}

// InitMemDatabase returns an empty in-memory store.
func InitMemDatabase() *MemDatabase {
	return &MemDatabase{
		suppressed: make(map[string]SuppressionData),
	}
}

func (db *MemDatabase) PutSuppressedEmail(email string, reason string, timestamp string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.suppressed[email] = SuppressionData{Email: email, Reason: reason, Timestamp: timestamp}
	return nil
}

func (db *MemDatabase) IsSuppressedEmail(email string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, ok := db.suppressed[email]
	return ok, nil
}

func (db *MemDatabase) ClearTables() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.suppressed = make(map[string]SuppressionData)
	return nil
}
