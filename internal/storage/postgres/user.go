package postgres

import (
	"context"

	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/apperr"
	"github.com/VitaminP8/linkfeed/models"
	"github.com/jinzhu/gorm"

	"golang.org/x/crypto/bcrypt"
)

type UserPostgresStorage struct {
	db *gorm.DB
}

func NewUserPostgresStorage(db *gorm.DB) *UserPostgresStorage {
	return &UserPostgresStorage{db: db}
}

func (s *UserPostgresStorage) RegisterUser(ctx context.Context, name, email, password string) (*model.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}

	// проверка - существует ли такой пользователь
	var existUser models.User
	err := s.db.Where("email = ?", email).First(&existUser).Error
	if err == nil {
		return nil, apperr.Validation("user with email %s already exists", email)
	}
	if !gorm.IsRecordNotFoundError(err) {
		return nil, apperr.Store("could not check user", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
	}

	err = s.db.Create(u).Error
	if err != nil {
		return nil, apperr.Store("failed to create user", err)
	}

	return toUser(u), nil
}

func (s *UserPostgresStorage) LoginUser(ctx context.Context, email, password string) (*model.User, error) {
	var u models.User
	err := s.db.Where("email = ?", email).First(&u).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, apperr.Store("could not get user", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	if err != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	return toUser(&u), nil
}

func (s *UserPostgresStorage) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var u models.User
	err := s.db.First(&u, id).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, apperr.NotFound("user %d not found", id)
	}
	if err != nil {
		return nil, apperr.Store("could not get user", err)
	}
	return toUser(&u), nil
}

func toUser(u *models.User) *model.User {
	return &model.User{
		ID:    int(u.ID),
		Name:  u.Name,
		Email: u.Email,
	}
}
