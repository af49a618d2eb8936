package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/apperr"
)

// MockUserStorage реализует интерфейс user.UserStorage для тестирования
// (пароли хранятся как есть, без bcrypt)
type MockUserStorage struct {
	mu        sync.Mutex
	users     map[string]*model.User // email -> user
	passwords map[string]string      // email -> password
	nextID    int
}

// NewMockUserStorage создает новый экземпляр мока для хранилища пользователей
func NewMockUserStorage() *MockUserStorage {
	return &MockUserStorage{
		users:     make(map[string]*model.User),
		passwords: make(map[string]string),
		nextID:    1,
	}
}

// RegisterUser имитирует регистрацию пользователя
func (m *MockUserStorage) RegisterUser(ctx context.Context, name, email, password string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[email]; exists {
		return nil, apperr.Validation("user with email %s already exists", email)
	}

	user := &model.User{
		ID:    m.nextID,
		Name:  name,
		Email: email,
	}
	m.nextID++

	m.users[email] = user
	m.passwords[email] = password

	return user, nil
}

// LoginUser имитирует авторизацию пользователя
func (m *MockUserStorage) LoginUser(ctx context.Context, email, password string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[email]
	if !exists || m.passwords[email] != password {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	return user, nil
}

func (m *MockUserStorage) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.ID == int(id) {
			return user, nil
		}
	}
	return nil, apperr.NotFound("user %d not found", id)
}

// GetUserByEmail вспомогательный метод для тестирования
func (m *MockUserStorage) GetUserByEmail(email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[email]
	if !exists {
		return nil, errors.New("user not found")
	}
	return user, nil
}
