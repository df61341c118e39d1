package main

import (
	"log"
	"time"

	"github.com/school-diary/backend/internal/config"
	"github.com/school-diary/backend/internal/database"
	"github.com/school-diary/backend/internal/models"
)

// Purges refresh tokens that can never be used again: expired ones and
// revoked ones older than a day. Meant to run from cron.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	now := time.Now()

	res := db.Where("expires_at < ?", now).Delete(&models.RefreshToken{})
	if res.Error != nil {
		log.Fatal("Failed to purge expired tokens:", res.Error)
	}
	expired := res.RowsAffected

	res = db.Where("revoked = ? AND created_at < ?", true, now.Add(-24*time.Hour)).
		Delete(&models.RefreshToken{})
	if res.Error != nil {
		log.Fatal("Failed to purge revoked tokens:", res.Error)
	}

	log.Printf("Token cleanup done: %d expired, %d revoked removed", expired, res.RowsAffected)
}
