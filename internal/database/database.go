package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS reports (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		username TEXT NOT NULL,
		pregnancies INTEGER,
		glucose INTEGER,
		blood_pressure INTEGER,
		skin_thickness INTEGER,
		insulin INTEGER,
		bmi REAL,
		diabetes_pedigree_function REAL,
		age INTEGER,
		prediction_result TEXT NOT NULL,
		probability REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (id)
	);

	CREATE INDEX IF NOT EXISTS idx_reports_user_id ON reports (user_id);
	`
	_, err := db.Exec(sqlStmt)
	return err
}

// BootstrapAdmin creates the default admin account exactly once if it is
// absent. The default password is a known insecure placeholder and must be
// rotated out of band.
func BootstrapAdmin(db *sql.DB, password string) error {
	var exists int
	err := db.QueryRow("SELECT COUNT(1) FROM users WHERE username = 'admin'").Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.Exec(
		"INSERT INTO users (id, username, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.New().String(), "admin", "admin@medpredict.local", string(hash), "admin", time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	log.Warn().Msg("Default admin account created (username: admin); rotate the password out of band")
	return nil
}
