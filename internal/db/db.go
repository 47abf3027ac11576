package db

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/reservaestilo/booking-api/internal/config"
	"github.com/reservaestilo/booking-api/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Operator{},
		&models.Booking{},
		&models.AlertLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	seedOperator(db, cfg)

	return db
}

// seedOperator crea el operador inicial si la tabla está vacía y hay
// credenciales en el entorno.
func seedOperator(db *gorm.DB, cfg *config.Config) {
	if cfg.OperatorEmail == "" || cfg.OperatorPassword == "" {
		return
	}

	var count int64
	db.Model(&models.Operator{}).Count(&count)
	if count > 0 {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.OperatorPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("seed operator: %v", err)
		return
	}

	op := models.Operator{
		Name:         "Operador",
		Email:        cfg.OperatorEmail,
		PasswordHash: string(hashed),
		Role:         "owner",
	}
	if err := db.Create(&op).Error; err != nil {
		log.Printf("seed operator: %v", err)
		return
	}
	log.Printf("seed operator: %s creado", op.Email)
}
