package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/bcrypt"

	"threadpost/models"
	"threadpost/utils"
)

// UserStorage is the user directory: accounts keyed by ID with a
// lowercase-email index bucket for case-insensitive lookup.
type UserStorage struct {
	db *bolt.DB
}

// NewUserStorage creates user storage on a shared database handle
func NewUserStorage(db *bolt.DB) *UserStorage {
	return &UserStorage{db: db}
}

// Create registers a new user account
func (s *UserStorage) Create(user *models.User, password string) error {
	if strings.TrimSpace(user.Email) == "" || password == "" {
		return utils.ValidationError("Email and password are required", nil)
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}
	user.PasswordHash = string(hashedPassword)

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	emailKey := []byte(strings.ToLower(user.Email))

	return s.db.Update(func(tx *bolt.Tx) error {
		emails := tx.Bucket(userEmailBucket)
		if emails.Get(emailKey) != nil {
			return utils.ValidationError("An account with this email already exists", nil)
		}

		encoded, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to encode user: %v", err)
		}

		if err := tx.Bucket(userBucket).Put([]byte(user.ID), encoded); err != nil {
			return err
		}
		return emails.Put(emailKey, []byte(user.ID))
	})
}

// GetByID retrieves a user by account ID
func (s *UserStorage) GetByID(id string) (*models.User, error) {
	var user models.User

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(userBucket).Get([]byte(id))
		if data == nil {
			return utils.NotFoundError("User not found", nil)
		}
		return json.Unmarshal(data, &user)
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail retrieves a user by email, matched case-insensitively
func (s *UserStorage) GetByEmail(email string) (*models.User, error) {
	var user models.User

	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(userEmailBucket).Get([]byte(strings.ToLower(email)))
		if id == nil {
			return utils.NotFoundError("User not found", nil)
		}

		data := tx.Bucket(userBucket).Get(id)
		if data == nil {
			return utils.NotFoundError("User not found", nil)
		}
		return json.Unmarshal(data, &user)
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// SimilarEmails lists account emails that case-insensitively contain the
// fragment, used as typo suggestions when a participant lookup fails.
func (s *UserStorage) SimilarEmails(fragment string, limit int) ([]string, error) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if needle == "" || limit <= 0 {
		return []string{}, nil
	}

	matches := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(userEmailBucket).ForEach(func(k, v []byte) error {
			if len(matches) >= limit {
				return nil
			}
			if strings.Contains(string(k), needle) {
				matches = append(matches, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return matches, nil
}

// Authenticate verifies the password for an account and records the login
func (s *UserStorage) Authenticate(email, password string) (*models.User, error) {
	user, err := s.GetByEmail(email)
	if err != nil {
		return nil, utils.UnauthorizedError("Invalid email or password", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, utils.UnauthorizedError("Invalid email or password", err)
	}

	user.LastLoginAt = time.Now()
	user.UpdatedAt = user.LastLoginAt

	err = s.db.Update(func(tx *bolt.Tx) error {
		encoded, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to encode user: %v", err)
		}
		return tx.Bucket(userBucket).Put([]byte(user.ID), encoded)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}
