package db

import (
	"database/sql"
	"log"

	// Imports postgresql driver for database/sql
	_ "github.com/lib/pq"
)

// SQLDatabase is a Database backed by postgresql, for deployments where
// the suppression list must survive restarts.
type SQLDatabase struct {
	conn *sql.DB
}

// InitSQLDatabase connects to Postgres using connectionString and
// ensures the suppression table exists. If connection fails, returns an
// error.
func InitSQLDatabase(connectionString string) (*SQLDatabase, error) {
	log.Printf("Connecting to Postgres DB ...\n")
	conn, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}
	if err = conn.Ping(); err != nil {
		return nil, err
	}
	db := &SQLDatabase{conn: conn}
	if err = db.ensureTables(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *SQLDatabase) ensureTables() error {
	_, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS suppressed_emails (
		email TEXT PRIMARY KEY,
		reason TEXT NOT NULL,
		timestamp TEXT NOT NULL
	)`)
	return err
}

func (db *SQLDatabase) PutSuppressedEmail(email string, reason string, timestamp string) error {
	_, err := db.conn.Exec(`INSERT INTO suppressed_emails (email, reason, timestamp)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET reason = $2, timestamp = $3`,
		email, reason, timestamp)
	return err
}

func (db *SQLDatabase) IsSuppressedEmail(email string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM suppressed_emails WHERE email = $1`, email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (db *SQLDatabase) ClearTables() error {
	_, err := db.conn.Exec(`DELETE FROM suppressed_emails`)
	return err
}
