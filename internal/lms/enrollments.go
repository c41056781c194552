package lms

import (
	"net/http"

	"github.com/gin-gonic/gin"
	lmsdb "github.com/nao1215/campus/internal/lms/db"
)

type createEnrollmentRequest struct {
	UserID   int64 `json:"user_id" binding:"required,gt=0"`
	CourseID int64 `json:"course_id" binding:"required,gt=0"`
}

type enrollmentResponse struct {
	ID       int64 `json:"id"`
	UserID   int64 `json:"user_id"`
	CourseID int64 `json:"course_id"`
}

// handleCreateEnrollment は受講登録を作成するハンドラを返す。
// 参照先のユーザーとコースの存在は確認しない。
func (s *Server) handleCreateEnrollment() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createEnrollmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		e, err := s.queries.CreateEnrollment(c.Request.Context(), lmsdb.CreateEnrollmentParams{
			UserID:   req.UserID,
			CourseID: req.CourseID,
		})
		if err != nil {
			respondStoreError(c, "受講登録", err)
			return
		}
		c.JSON(http.StatusOK, enrollmentResponse{ID: e.ID, UserID: e.UserID, CourseID: e.CourseID})
	}
}

// handleListEnrollments は受講登録一覧を返すハンドラを返す。
func (s *Server) handleListEnrollments() gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := parseListParams(c)
		if !ok {
			return
		}

		enrollments, err := s.queries.ListEnrollments(c.Request.Context(), params)
		if err != nil {
			respondStoreError(c, "受講登録一覧取得", err)
			return
		}

		resp := make([]enrollmentResponse, 0, len(enrollments))
		for _, e := range enrollments {
			resp = append(resp, enrollmentResponse{ID: e.ID, UserID: e.UserID, CourseID: e.CourseID})
		}
		c.JSON(http.StatusOK, resp)
	}
}
