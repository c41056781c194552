package lms

import (
	"net/http"

	"github.com/gin-gonic/gin"
	lmsdb "github.com/nao1215/campus/internal/lms/db"
	"github.com/nao1215/campus/pkg/sanitize"
)

// createPostRequest は投稿作成リクエスト。
// 本文は必須だが空文字列は受け付ける。
type createPostRequest struct {
	Author  string  `json:"author" binding:"required,max=100"`
	Content *string `json:"content" binding:"required,max=100000"`
}

type postResponse struct {
	ID      int64  `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

func newPostResponse(p lmsdb.DiscussionPost) postResponse {
	return postResponse{ID: p.ID, Author: p.Author, Content: p.Content}
}

// handleCreatePost はディスカッション投稿を作成するハンドラを返す。
func (s *Server) handleCreatePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		post, err := s.queries.CreatePost(c.Request.Context(), lmsdb.CreatePostParams{
			Author:  req.Author,
			Content: sanitize.String(*req.Content),
		})
		if err != nil {
			respondStoreError(c, "投稿作成", err)
			return
		}
		c.JSON(http.StatusOK, newPostResponse(post))
	}
}

// handleListPosts は投稿一覧を返すハンドラを返す。
func (s *Server) handleListPosts() gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := parseListParams(c)
		if !ok {
			return
		}

		posts, err := s.queries.ListPosts(c.Request.Context(), params)
		if err != nil {
			respondStoreError(c, "投稿一覧取得", err)
			return
		}

		resp := make([]postResponse, 0, len(posts))
		for _, p := range posts {
			resp = append(resp, newPostResponse(p))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleGetPost は投稿を1件返すハンドラを返す。
func (s *Server) handleGetPost() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		post, err := s.queries.GetPost(c.Request.Context(), id)
		if err != nil {
			respondLookupError(c, "投稿", err)
			return
		}
		c.JSON(http.StatusOK, newPostResponse(post))
	}
}
