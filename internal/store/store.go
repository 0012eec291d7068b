package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"partyroom-backend/internal/game"
	"partyroom-backend/internal/model"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique value is already taken.
	ErrConflict = errors.New("record already exists")
)

// StateStore persists whole game documents keyed by user id.
type StateStore interface {
	LoadState(ctx context.Context, userID string) (*game.State, error)
	SaveState(ctx context.Context, userID string, state game.State) error
}

// UserStore persists player accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	UserByUsername(ctx context.Context, username string) (*model.User, error)
}

// SubscriptionStore persists browser push subscriptions.
type SubscriptionStore interface {
	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	SubscriptionsForUser(ctx context.Context, userID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	DeleteUserSubscriptions(ctx context.Context, userID string) error
}

// Store defines the interface for all database operations.
type Store interface {
	StateStore
	UserStore
	SubscriptionStore
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// LoadState returns the saved game of a user, or ErrNotFound.
func (s *gormStore) LoadState(ctx context.Context, userID string) (*game.State, error) {
	var doc model.GameDocument
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load game of user %s: %w", userID, err)
	}
	return &doc.State, nil
}

// SaveState upserts the whole document of a user.
func (s *gormStore) SaveState(ctx context.Context, userID string, state game.State) error {
	doc := model.GameDocument{UserID: userID, State: state}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("failed to save game of user %s: %w", userID, err)
	}
	return nil
}

// CreateUser inserts a new account, refusing duplicate usernames.
func (s *gormStore) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("username %q: %w", user.Username, ErrConflict)
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

// UserByUsername looks up an account by its login name.
func (s *gormStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user %q: %w", username, err)
	}
	return &user, nil
}

// SaveSubscription creates or replaces a subscription by endpoint.
func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

// SubscriptionsForUser lists the push subscriptions of a user.
func (s *gormStore) SubscriptionsForUser(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions of user %s: %w", userID, err)
	}
	return subs, nil
}

// DeleteSubscription removes one subscription by endpoint.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// DeleteUserSubscriptions removes every subscription of a user.
func (s *gormStore) DeleteUserSubscriptions(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.PushSubscription{}).Error; err != nil {
		return fmt.Errorf("failed to delete subscriptions of user %s: %w", userID, err)
	}
	return nil
}
