package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abusesystem/backend/internal/models"
)

var (
	ErrStaffNotFound   = errors.New("staff account not found")
	ErrNameExists      = errors.New("name already registered")
	ErrInvalidPassword = errors.New("invalid password")
)

// StaffService holds the staff accounts allowed to issue punishments through
// this node's API. Accounts are node-local; fleet-wide staff identity is the
// linked player UUID.
type StaffService struct {
	mu     sync.RWMutex
	staff  map[string]*models.StaffAccount // id -> account
	byName map[string]string               // name -> id
}

func NewStaffService() *StaffService {
	return &StaffService{
		staff:  make(map[string]*models.StaffAccount),
		byName: make(map[string]string),
	}
}

func (s *StaffService) Register(req *models.RegisterStaffRequest) (*models.StaffAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[req.Name]; exists {
		return nil, ErrNameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &models.StaffAccount{
		ID:           uuid.New().String(),
		Name:         req.Name,
		PasswordHash: string(hashedPassword),
		PlayerUUID:   req.PlayerUUID,
		CreatedAt:    time.Now(),
	}

	s.staff[account.ID] = account
	s.byName[account.Name] = account.ID

	return account, nil
}

func (s *StaffService) Login(req *models.LoginStaffRequest) (*models.StaffAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byName[req.Name]
	if !exists {
		return nil, ErrStaffNotFound
	}

	account := s.staff[id]
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidPassword
	}

	return account, nil
}

func (s *StaffService) GetByID(id string) (*models.StaffAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.staff[id]
	if !exists {
		return nil, ErrStaffNotFound
	}

	return account, nil
}
