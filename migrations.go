package main

import (
	"database/sql"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(filepath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", filepath)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS trips (
			"id" TEXT NOT NULL PRIMARY KEY,
			"spec" BLOB NOT NULL,
			"created_at" DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS plan_records (
			"trip_id" TEXT NOT NULL PRIMARY KEY,
			"macro_plan" BLOB,
			"macro_plan_created_at" DATETIME,
			"poi_plan" BLOB,
			"poi_plan_created_at" DATETIME,
			"itinerary" BLOB,
			"itinerary_created_at" DATETIME,
			"critique" BLOB,
			"critique_created_at" DATETIME,
			"updated_at" DATETIME,
			FOREIGN KEY(trip_id) REFERENCES trips(id)
		);`,
		`CREATE TABLE IF NOT EXISTS pois (
			"id" TEXT NOT NULL PRIMARY KEY,
			"name" TEXT NOT NULL,
			"city" TEXT NOT NULL,
			"category" TEXT NOT NULL,
			"tags" TEXT,
			"rating" REAL,
			"price_tier" TEXT,
			"address" TEXT,
			"lat" REAL,
			"lng" REAL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pois_city ON pois(city);`,
		`CREATE INDEX IF NOT EXISTS idx_pois_category ON pois(category);`,
		`CREATE TABLE IF NOT EXISTS api_caches (
			"key" TEXT NOT NULL PRIMARY KEY,
			"value" BLOB,
			"created_at" DATETIME,
			"expires_at" DATETIME
		);`,
		`CREATE INDEX IF NOT EXISTS idx_api_caches_expires_at ON api_caches(expires_at);`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	log.Println("Migrations completed.")
	return nil
}
