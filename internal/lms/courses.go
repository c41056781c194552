package lms

import (
	"net/http"

	"github.com/gin-gonic/gin"
	lmsdb "github.com/nao1215/campus/internal/lms/db"
	"github.com/nao1215/campus/pkg/sanitize"
)

type createCourseRequest struct {
	Title        string  `json:"title" binding:"required,max=200"`
	Description  *string `json:"description" binding:"omitempty,max=10000"`
	InstructorID *int64  `json:"instructor_id"`
}

type courseResponse struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	InstructorID *int64  `json:"instructor_id"`
}

func newCourseResponse(c lmsdb.Course) courseResponse {
	return courseResponse{
		ID:           c.ID,
		Title:        c.Title,
		Description:  stringPtr(c.Description),
		InstructorID: int64Ptr(c.InstructorID),
	}
}

// handleCreateCourse はコースを作成するハンドラを返す。
func (s *Server) handleCreateCourse() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createCourseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		course, err := s.queries.CreateCourse(c.Request.Context(), lmsdb.CreateCourseParams{
			Title:        req.Title,
			Description:  nullString(sanitize.Text(req.Description)),
			InstructorID: nullInt64(req.InstructorID),
		})
		if err != nil {
			respondStoreError(c, "コース作成", err)
			return
		}
		c.JSON(http.StatusOK, newCourseResponse(course))
	}
}

// handleListCourses はコース一覧を返すハンドラを返す。
func (s *Server) handleListCourses() gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := parseListParams(c)
		if !ok {
			return
		}

		courses, err := s.queries.ListCourses(c.Request.Context(), params)
		if err != nil {
			respondStoreError(c, "コース一覧取得", err)
			return
		}

		resp := make([]courseResponse, 0, len(courses))
		for _, course := range courses {
			resp = append(resp, newCourseResponse(course))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleGetCourse はコースを1件返すハンドラを返す。
func (s *Server) handleGetCourse() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		course, err := s.queries.GetCourse(c.Request.Context(), id)
		if err != nil {
			respondLookupError(c, "コース", err)
			return
		}
		c.JSON(http.StatusOK, newCourseResponse(course))
	}
}
