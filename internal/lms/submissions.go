package lms

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	lmsdb "github.com/nao1215/campus/internal/lms/db"
	"github.com/nao1215/campus/pkg/sanitize"
)

type createSubmissionRequest struct {
	AssignmentID int64   `json:"assignment_id" binding:"required,gt=0"`
	UserID       int64   `json:"user_id" binding:"required,gt=0"`
	Content      *string `json:"content" binding:"omitempty,max=100000"`
}

type submissionResponse struct {
	ID           int64     `json:"id"`
	AssignmentID int64     `json:"assignment_id"`
	UserID       int64     `json:"user_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Content      *string   `json:"content"`
}

func newSubmissionResponse(sub lmsdb.Submission) submissionResponse {
	return submissionResponse{
		ID:           sub.ID,
		AssignmentID: sub.AssignmentID,
		UserID:       sub.UserID,
		SubmittedAt:  sub.SubmittedAt,
		Content:      stringPtr(sub.Content),
	}
}

// handleCreateSubmission は提出物を作成するハンドラを返す。
// 本文は保存前にサニタイズし、提出日時はサーバーの現在時刻（UTC）を使う。
func (s *Server) handleCreateSubmission() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSubmissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sub, err := s.queries.CreateSubmission(c.Request.Context(), lmsdb.CreateSubmissionParams{
			AssignmentID: req.AssignmentID,
			UserID:       req.UserID,
			SubmittedAt:  s.now().UTC(),
			Content:      nullString(sanitize.Text(req.Content)),
		})
		if err != nil {
			respondStoreError(c, "提出物作成", err)
			return
		}
		c.JSON(http.StatusOK, newSubmissionResponse(sub))
	}
}

// handleListSubmissions は提出物一覧を返すハンドラを返す。
func (s *Server) handleListSubmissions() gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := parseListParams(c)
		if !ok {
			return
		}

		subs, err := s.queries.ListSubmissions(c.Request.Context(), params)
		if err != nil {
			respondStoreError(c, "提出物一覧取得", err)
			return
		}

		resp := make([]submissionResponse, 0, len(subs))
		for _, sub := range subs {
			resp = append(resp, newSubmissionResponse(sub))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleGetSubmission は提出物を1件返すハンドラを返す。
func (s *Server) handleGetSubmission() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		sub, err := s.queries.GetSubmission(c.Request.Context(), id)
		if err != nil {
			respondLookupError(c, "提出物", err)
			return
		}
		c.JSON(http.StatusOK, newSubmissionResponse(sub))
	}
}
