package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-logger-api/internal/models"
	"github.com/noah-isme/attendance-logger-api/pkg/dateutil"
	appErrors "github.com/noah-isme/attendance-logger-api/pkg/errors"
)

const (
	msgCardFieldsRequired = "All fields are required"
	msgCardExists         = "Card for this Student or with this Card ID already exists"
	msgCardNotFound       = "Student Card not found"
	msgCardStatus         = "Status must be Active, Inactive, or Lost"
)

type studentCardRepository interface {
	ExistsByStudentIDOrCardID(ctx context.Context, studentID, cardID string) (bool, error)
	Create(ctx context.Context, card *models.StudentCard) error
	FindByStudentID(ctx context.Context, studentID string) (*models.StudentCard, error)
	UpdateStatus(ctx context.Context, studentID string, status models.CardStatus) (*models.StudentCard, error)
}

// IssueCardRequest is the payload for issuing a card.
type IssueCardRequest struct {
	StudentID  string `json:"studentId" validate:"required"`
	CardID     string `json:"cardId" validate:"required"`
	ExpiryDate string `json:"expiryDate" validate:"required"`
}

// UpdateCardStatusRequest changes a card's lifecycle status.
type UpdateCardStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Inactive Lost"`
}

// StudentCardService implements the card registry.
type StudentCardService struct {
	repo      studentCardRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentCardService constructs the card registry service.
func NewStudentCardService(repo studentCardRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StudentCardService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentCardService{repo: repo, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// Issue creates an Active card issued now. The expiry must fall after the issue date.
func (s *StudentCardService) Issue(ctx context.Context, req IssueCardRequest) (*models.StudentCard, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.CardID = strings.TrimSpace(req.CardID)
	req.ExpiryDate = strings.TrimSpace(req.ExpiryDate)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, msgCardFieldsRequired)
	}

	expiry, err := dateutil.ParseDay(req.ExpiryDate)
	if err != nil {
		return nil, appErrors.Validation(err, "Invalid expiry date, expected YYYY-MM-DD")
	}
	issued := s.now().UTC()
	if !expiry.After(issued) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Expiry date must be after the issue date")
	}

	exists, err := s.repo.ExistsByStudentIDOrCardID(ctx, req.StudentID, req.CardID)
	if err != nil {
		s.logger.Error("check card keys", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to issue student card")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, msgCardExists)
	}

	card := &models.StudentCard{
		StudentID:  req.StudentID,
		CardID:     req.CardID,
		IssueDate:  issued,
		ExpiryDate: expiry,
		Status:     models.CardStatusActive,
	}
	if err := s.repo.Create(ctx, card); err != nil {
		if isDuplicate(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msgCardExists)
		}
		s.logger.Error("create card", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to issue student card")
	}
	s.metrics.IncCardIssued()
	return card, nil
}

// GetByStudentID returns the card held by a student.
func (s *StudentCardService) GetByStudentID(ctx context.Context, studentID string) (*models.StudentCard, error) {
	card, err := s.repo.FindByStudentID(ctx, strings.TrimSpace(studentID))
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgCardNotFound)
		}
		s.logger.Error("find card", zap.String("student_id", studentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load student card")
	}
	return card, nil
}

// UpdateStatus moves a student's card to one of Active, Inactive or Lost.
func (s *StudentCardService) UpdateStatus(ctx context.Context, studentID string, req UpdateCardStatusRequest) (*models.StudentCard, error) {
	req.Status = strings.TrimSpace(req.Status)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, msgCardStatus)
	}

	card, err := s.repo.UpdateStatus(ctx, strings.TrimSpace(studentID), models.CardStatus(req.Status))
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgCardNotFound)
		}
		s.logger.Error("update card status", zap.String("student_id", studentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to update card status")
	}
	return card, nil
}
