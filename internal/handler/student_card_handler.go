package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-logger-api/internal/models"
	"github.com/noah-isme/attendance-logger-api/internal/service"
	"github.com/noah-isme/attendance-logger-api/pkg/response"
)

type studentCardService interface {
	Issue(ctx context.Context, req service.IssueCardRequest) (*models.StudentCard, error)
	GetByStudentID(ctx context.Context, studentID string) (*models.StudentCard, error)
	UpdateStatus(ctx context.Context, studentID string, req service.UpdateCardStatusRequest) (*models.StudentCard, error)
}

// StudentCardHandler exposes the card registry.
type StudentCardHandler struct {
	cards studentCardService
}

func NewStudentCardHandler(cards studentCardService) *StudentCardHandler {
	return &StudentCardHandler{cards: cards}
}

// Issue godoc
// @Summary Issue a card to a student
// @Tags Student Cards
// @Accept json
// @Produce json
// @Param payload body service.IssueCardRequest true "Card payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} appErrors.Error
// @Router /student-cards/issue [post]
func (h *StudentCardHandler) Issue(c *gin.Context) {
	var req service.IssueCardRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	card, err := h.cards.Issue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "Student Card issued successfully", "card", card)
}

// Get godoc
// @Summary Get a student's card
// @Tags Student Cards
// @Produce json
// @Param studentId path string true "Student identifier"
// @Success 200 {object} models.StudentCard
// @Failure 404 {object} appErrors.Error
// @Router /student-cards/{studentId} [get]
func (h *StudentCardHandler) Get(c *gin.Context) {
	card, err := h.cards.GetByStudentID(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card)
}

// UpdateStatus godoc
// @Summary Change a card's status
// @Tags Student Cards
// @Accept json
// @Produce json
// @Param studentId path string true "Student identifier"
// @Param payload body service.UpdateCardStatusRequest true "Status payload"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} appErrors.Error
// @Router /student-cards/status/{studentId} [patch]
func (h *StudentCardHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateCardStatusRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	card, err := h.cards.UpdateStatus(c.Request.Context(), c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Card status updated successfully", "card", card)
}
