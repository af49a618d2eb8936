package postgres

import (
	"fmt"
	"log"

	"github.com/VitaminP8/linkfeed/internal/config"
	"github.com/VitaminP8/linkfeed/models"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
)

// DSN собирает строку подключения из обязательных переменных окружения
func DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.GetEnv("DB_HOST"),
		config.GetEnv("DB_USER"),
		config.GetEnv("DB_PASSWORD"),
		config.GetEnv("DB_NAME"),
		config.GetEnv("DB_PORT"),
		config.GetEnv("DB_SSLMODE"),
	)
}

// Open подключается к базе данных PostgreSQL
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return db, nil
}

// Migrate создает/обновляет таблицы users, links, votes
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&models.User{}, &models.Link{}, &models.Vote{}).Error
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой данных
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	err := db.Close()
	if err != nil {
		return fmt.Errorf("failed to close the database connection: %w", err)
	}

	log.Println("Database connection closed.")
	return nil
}
