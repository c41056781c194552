package lms

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	lmsdb "github.com/nao1215/campus/internal/lms/db"
	"github.com/nao1215/campus/pkg/credential"
	"github.com/nao1215/campus/pkg/middleware"
)

// userFinder はusersテーブルをcredential.UserFinderとして公開する。
type userFinder struct {
	queries *lmsdb.Queries
}

// FindUserByEmail はメールアドレスが完全一致するユーザーを返す。
func (f userFinder) FindUserByEmail(ctx context.Context, email string) (credential.StoredUser, error) {
	u, err := f.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return credential.StoredUser{}, credential.ErrUserNotFound
	}
	if err != nil {
		return credential.StoredUser{}, err
	}
	return credential.StoredUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
	}, nil
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	userResponse
	Token string `json:"token"`
}

// handleLogin はメールアドレスとパスワードを照合してトークンを発行するハンドラを返す。
// 存在しないメールアドレスと誤ったパスワードは同じ401を返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := s.verifier.Authenticate(c.Request.Context(), req.Email, req.Password)
		if errors.Is(err, credential.ErrAuthFailed) {
			s.metrics.Login("failure")
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			s.metrics.Login("error")
			log.Printf("ログイン照合エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ログイン処理に失敗しました"})
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, user.ID, user.Email, user.Role)
		if err != nil {
			s.metrics.Login("error")
			log.Printf("JWT生成エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークン生成に失敗しました"})
			return
		}

		s.metrics.Login("success")
		c.JSON(http.StatusOK, loginResponse{
			userResponse: userResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
			Token:        token,
		})
	}
}

// handleGetCurrentUser はトークンのユーザー情報を返すハンドラを返す。
func (s *Server) handleGetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.queries.GetUser(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			respondLookupError(c, "ユーザー", err)
			return
		}
		c.JSON(http.StatusOK, newUserResponse(user))
	}
}
