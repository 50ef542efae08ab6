package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/repository"
)

// AdminReviewService 审核顾客评价。
type AdminReviewService interface {
	List(ctx context.Context, status string, page, pageSize int) (*ReviewPage, error)
	Approve(ctx context.Context, id int64) (*ReviewView, error)
	Reject(ctx context.Context, id int64) (*ReviewView, error)
	Delete(ctx context.Context, id int64) error
}

type adminReviewService struct {
	reviews repository.ReviewRepository
	logger  *slog.Logger
	now     func() time.Time
}

func NewAdminReviewService(reviews repository.ReviewRepository, logger *slog.Logger) AdminReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &adminReviewService{reviews: reviews, logger: logger, now: time.Now}
}

// List filters by status; an unknown or empty status lists every review.
func (s *adminReviewService) List(ctx context.Context, status string, page, pageSize int) (*ReviewPage, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
	default:
		status = ""
	}
	return listReviews(ctx, s.reviews, status, page, pageSize)
}

func (s *adminReviewService) Approve(ctx context.Context, id int64) (*ReviewView, error) {
	return s.setStatus(ctx, id, ReviewStatusApproved)
}

func (s *adminReviewService) Reject(ctx context.Context, id int64) (*ReviewView, error) {
	return s.setStatus(ctx, id, ReviewStatusRejected)
}

func (s *adminReviewService) Delete(ctx context.Context, id int64) error {
	if err := s.reviews.Delete(ctx, id); err != nil {
		return translateNotFound(err)
	}
	s.logger.InfoContext(ctx, "review deleted", "review_id", id)
	return nil
}

func (s *adminReviewService) setStatus(ctx context.Context, id int64, status string) (*ReviewView, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	review.Status = status
	review.UpdatedAt = s.now().Unix()
	if err := s.reviews.UpdateStatus(ctx, id, status, review.UpdatedAt); err != nil {
		return nil, translateNotFound(err)
	}
	s.logger.InfoContext(ctx, "review moderated", "review_id", id, "status", status)
	view := toReviewView(review)
	return &view, nil
}
