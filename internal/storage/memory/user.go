package memory

import (
	"context"
	"sync"

	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/apperr"

	"golang.org/x/crypto/bcrypt"
)

type UserMemoryStorage struct {
	mu        sync.Mutex
	users     map[uint]*model.User
	byEmail   map[string]uint
	passwords map[uint]string // id -> bcrypt hash
	nextID    uint
}

func NewUserMemoryStorage() *UserMemoryStorage {
	return &UserMemoryStorage{
		users:     make(map[uint]*model.User),
		byEmail:   make(map[string]uint),
		passwords: make(map[uint]string),
		nextID:    1,
	}
}

func (s *UserMemoryStorage) RegisterUser(ctx context.Context, name, email, password string) (*model.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, apperr.Validation("user with email %s already exists", email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id := s.nextID
	s.nextID++

	u := &model.User{
		ID:    int(id),
		Name:  name,
		Email: email,
	}

	s.users[id] = u
	s.byEmail[email] = id
	s.passwords[id] = string(hashedPassword)

	copied := *u
	return &copied, nil
}

func (s *UserMemoryStorage) LoginUser(ctx context.Context, email, password string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byEmail[email]
	if !exists {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	err := bcrypt.CompareHashAndPassword([]byte(s.passwords[id]), []byte(password))
	if err != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	copied := *s.users[id]
	return &copied, nil
}

func (s *UserMemoryStorage) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return nil, apperr.NotFound("user %d not found", id)
	}

	copied := *u
	return &copied, nil
}
