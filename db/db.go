package db

// SuppressionData stores an address from which the mail provider
// reported a bounce or complaint. Suppressed addresses are never
// mailed again.
type SuppressionData struct {
	Email     string // Address to suppress.
	Reason    string // eg. "email.bounced" or "complained"
	Timestamp string // Provider-supplied event time.
}

// Database is the suppression store. It is the only persistent state in
// this service; everything else is verified statelessly.
type Database interface {
	// Records a bounce or complaint notification for an address.
	PutSuppressedEmail(email string, reason string, timestamp string) error
	// Returns true if we've suppressed an address.
	IsSuppressedEmail(string) (bool, error)
	ClearTables() error
}
