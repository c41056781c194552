package lms

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	lmsdb "github.com/nao1215/campus/internal/lms/db"
	"github.com/nao1215/campus/pkg/credential"
)

// createUserRequest はユーザー作成リクエスト。
// bcryptは72バイトを超える入力を扱えないため、パスワード長を制限する。
type createUserRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Role     string `json:"role" binding:"required,oneof=student instructor admin"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// userResponse はユーザーのレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func newUserResponse(u lmsdb.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// handleCreateUser はユーザーを作成するハンドラを返す。
func (s *Server) handleCreateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		hash, err := credential.HashPassword(req.Password)
		if err != nil {
			log.Printf("パスワードハッシュ化エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザー作成に失敗しました"})
			return
		}

		user, err := s.queries.CreateUser(c.Request.Context(), lmsdb.CreateUserParams{
			Name:         req.Name,
			Email:        req.Email,
			Role:         req.Role,
			PasswordHash: hash,
		})
		if lmsdb.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "このメールアドレスは既に登録されています"})
			return
		}
		if err != nil {
			respondStoreError(c, "ユーザー作成", err)
			return
		}

		c.JSON(http.StatusOK, newUserResponse(user))
	}
}

// handleListUsers はユーザー一覧を返すハンドラを返す。
func (s *Server) handleListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := parseListParams(c)
		if !ok {
			return
		}

		users, err := s.queries.ListUsers(c.Request.Context(), params)
		if err != nil {
			respondStoreError(c, "ユーザー一覧取得", err)
			return
		}

		resp := make([]userResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, newUserResponse(u))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleGetUser はユーザーを1件返すハンドラを返す。
func (s *Server) handleGetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		user, err := s.queries.GetUser(c.Request.Context(), id)
		if err != nil {
			respondLookupError(c, "ユーザー", err)
			return
		}
		c.JSON(http.StatusOK, newUserResponse(user))
	}
}
