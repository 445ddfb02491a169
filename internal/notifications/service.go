package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service stores and lists in-app notifications. Delivery is fire-and-forget:
// callers never block on or fail because of a notification write.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new notifications service
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Notify records one notification for the user. Failures are logged and
// swallowed so domain operations are never disturbed by them.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, title, message, link string) {
	notification := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Link:      link,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		s.logger.Warn("Failed to store notification",
			zap.String("user_id", userID.String()),
			zap.String("title", title),
			zap.Error(err))
	}
}

// List returns the user's notifications, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	var items []Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&items).Error
	return items, err
}

// MarkRead marks one notification as read. Returns false when the
// notification does not exist or belongs to another user.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	return result.RowsAffected > 0, result.Error
}
