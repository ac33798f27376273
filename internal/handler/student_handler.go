package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-logger-api/internal/models"
	"github.com/noah-isme/attendance-logger-api/internal/service"
	"github.com/noah-isme/attendance-logger-api/pkg/response"
)

type studentService interface {
	Register(ctx context.Context, req service.RegisterStudentRequest) (*models.Student, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	GetByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	Update(ctx context.Context, id string, req service.UpdateStudentRequest) (*models.Student, error)
}

// StudentHandler exposes student directory endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// Register godoc
// @Summary Register a student
// @Description Missing studentId, email and course are generated or defaulted.
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.RegisterStudentRequest true "Student payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} appErrors.Error
// @Router /students/register [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req service.RegisterStudentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "Student registered successfully", "student", student)
}

// List godoc
// @Summary List all students
// @Tags Students
// @Produce json
// @Success 200 {array} models.Student
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Get godoc
// @Summary Get a student by public identifier
// @Tags Students
// @Produce json
// @Param studentId path string true "Student identifier"
// @Success 200 {object} models.Student
// @Failure 404 {object} appErrors.Error
// @Router /students/{studentId} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.GetByStudentID(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Update godoc
// @Summary Update a student
// @Description Blank or missing course and email keep their stored values.
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Internal student id"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} appErrors.Error
// @Failure 404 {object} appErrors.Error
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Student updated successfully", "student", student)
}
