package database

import (
	"fmt"
	"log"

	"github.com/school-diary/backend/internal/config"
	"github.com/school-diary/backend/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	} else {
		logLevel = logger.Silent
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.Database.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection successful")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	log.Println("Running migrations...")

	err := db.AutoMigrate(
		&models.School{},
		&models.User{},
		&models.Student{},
		&models.Teacher{},
		&models.Timetable{},
		&models.AcademicYearReport{},
		&models.Activity{},
		&models.RefreshToken{},
	)
	if err != nil {
		return err
	}

	// Add performance indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_students_school ON students(school_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_students_class_section ON students(class_id, section_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_teachers_school ON teachers(school_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_activities_time ON activities(time)")

	return nil
}
