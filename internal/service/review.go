package service

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brinaregal/brina/internal/repository"
)

// Review moderation states.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

const maxReviewCommentLength = 1000

// ReviewView is the JSON shape of a review.
type ReviewView struct {
	ID         int64  `json:"id"`
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

// ReviewPage is a paginated review listing with the rating summary.
type ReviewPage struct {
	Reviews []ReviewView `json:"reviews"`
	Total   int64        `json:"total"`
	Average float64      `json:"average"`
}

// ReviewInput 描述顾客提交的评价。
type ReviewInput struct {
	UserID  int64
	Rating  int
	Comment string
}

// ReviewService 提供公开评价列表与顾客发表评价。
type ReviewService interface {
	List(ctx context.Context, page, pageSize int) (*ReviewPage, error)
	Create(ctx context.Context, input ReviewInput) (*ReviewView, error)
}

type reviewService struct {
	reviews repository.ReviewRepository
	users   repository.UserRepository
	now     func() time.Time
}

func NewReviewService(reviews repository.ReviewRepository, users repository.UserRepository) ReviewService {
	return &reviewService{reviews: reviews, users: users, now: time.Now}
}

// List returns approved reviews, newest first.
func (s *reviewService) List(ctx context.Context, page, pageSize int) (*ReviewPage, error) {
	return listReviews(ctx, s.reviews, ReviewStatusApproved, page, pageSize)
}

func (s *reviewService) Create(ctx context.Context, input ReviewInput) (*ReviewView, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}
	comment := stripTags(input.Comment)
	if utf8.RuneCountInString(comment) > maxReviewCommentLength {
		comment = string([]rune(comment)[:maxReviewCommentLength])
	}
	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	now := s.now().Unix()
	userID := user.ID
	created, err := s.reviews.Create(ctx, &repository.Review{
		UserID:     &userID,
		AuthorName: strings.TrimSpace(user.Name),
		Rating:     input.Rating,
		Comment:    comment,
		Status:     ReviewStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	view := toReviewView(created)
	return &view, nil
}

func listReviews(ctx context.Context, reviews repository.ReviewRepository, status string, page, pageSize int) (*ReviewPage, error) {
	limit, offset := paginate(page, pageSize)
	filter := repository.ReviewFilter{Status: status, Limit: limit, Offset: offset}
	items, err := reviews.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := reviews.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary, err := reviews.Summary(ctx, status)
	if err != nil {
		return nil, err
	}
	views := make([]ReviewView, 0, len(items))
	for _, r := range items {
		views = append(views, toReviewView(r))
	}
	return &ReviewPage{Reviews: views, Total: total, Average: math.Round(summary.Average*10) / 10}, nil
}

func toReviewView(r *repository.Review) ReviewView {
	return ReviewView{
		ID:         r.ID,
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
	}
}
