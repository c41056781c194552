package lms

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	lmsdb "github.com/nao1215/campus/internal/lms/db"
	"github.com/nao1215/campus/pkg/sanitize"
)

type createAssignmentRequest struct {
	CourseID    int64      `json:"course_id" binding:"required,gt=0"`
	Title       string     `json:"title" binding:"required,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=10000"`
	DueDate     *time.Time `json:"due_date"`
}

type assignmentResponse struct {
	ID          int64      `json:"id"`
	CourseID    int64      `json:"course_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

func newAssignmentResponse(a lmsdb.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:          a.ID,
		CourseID:    a.CourseID,
		Title:       a.Title,
		Description: stringPtr(a.Description),
		DueDate:     timePtr(a.DueDate),
	}
}

// handleCreateAssignment は課題を作成するハンドラを返す。
func (s *Server) handleCreateAssignment() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAssignmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		a, err := s.queries.CreateAssignment(c.Request.Context(), lmsdb.CreateAssignmentParams{
			CourseID:    req.CourseID,
			Title:       req.Title,
			Description: nullString(sanitize.Text(req.Description)),
			DueDate:     nullTime(req.DueDate),
		})
		if err != nil {
			respondStoreError(c, "課題作成", err)
			return
		}
		c.JSON(http.StatusOK, newAssignmentResponse(a))
	}
}

// handleListAssignments は課題一覧を返すハンドラを返す。
func (s *Server) handleListAssignments() gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := parseListParams(c)
		if !ok {
			return
		}

		assignments, err := s.queries.ListAssignments(c.Request.Context(), params)
		if err != nil {
			respondStoreError(c, "課題一覧取得", err)
			return
		}

		resp := make([]assignmentResponse, 0, len(assignments))
		for _, a := range assignments {
			resp = append(resp, newAssignmentResponse(a))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleGetAssignment は課題を1件返すハンドラを返す。
func (s *Server) handleGetAssignment() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		a, err := s.queries.GetAssignment(c.Request.Context(), id)
		if err != nil {
			respondLookupError(c, "課題", err)
			return
		}
		c.JSON(http.StatusOK, newAssignmentResponse(a))
	}
}
