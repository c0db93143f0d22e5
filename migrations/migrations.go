package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

const restaurantsTable = `
	CREATE TABLE IF NOT EXISTS restaurants (
		id INT AUTO_INCREMENT PRIMARY KEY,
		cnpj VARCHAR(18) NOT NULL,
		name VARCHAR(100) NOT NULL,
		state VARCHAR(2) NOT NULL,
		city VARCHAR(100) NOT NULL,
		type VARCHAR(50) NOT NULL,
		operating_hours VARCHAR(200),
		postal_code VARCHAR(9) NOT NULL,
		street_number VARCHAR(10) NOT NULL,
		UNIQUE KEY cnpj_idx (cnpj)
	) DEFAULT CHARSET=utf8mb4;
`

const usersTable = `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(50) NOT NULL,
		email VARCHAR(100) NOT NULL,
		password_hash VARCHAR(128) NOT NULL,
		UNIQUE KEY username_idx (username),
		UNIQUE KEY email_idx (email)
	) DEFAULT CHARSET=utf8mb4;
`

// AutoMigrateRestaurants creates the restaurants table if it does not exist.
func AutoMigrateRestaurants(retries int, db *sql.DB) error {
	return execWithRetry(retries, db, restaurantsTable)
}

// AutoMigrateUsers creates the users table if it does not exist.
func AutoMigrateUsers(retries int, db *sql.DB) error {
	return execWithRetry(retries, db, usersTable)
}

// Reset drops every table and creates them again. All data is lost.
func Reset(db *sql.DB) error {
	for _, table := range []string{"restaurants", "users"} {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	if err := AutoMigrateRestaurants(0, db); err != nil {
		return err
	}
	return AutoMigrateUsers(0, db)
}

func execWithRetry(retries int, db *sql.DB, query string) error {
	_, err := db.Exec(query)
	for i := 0; err != nil && i < retries; i++ {
		time.Sleep(1 * time.Second)
		_, err = db.Exec(query)
	}
	return err
}
