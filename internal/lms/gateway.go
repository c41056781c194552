package lms

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/campus/pkg/staticres"
	"github.com/nao1215/campus/pkg/upload"
)

// multipartOverhead はマルチパートのヘッダーや他のフィールドに許容するバイト数。
const multipartOverhead = 1 << 20

type uploadResponse struct {
	Filename       string `json:"filename"`
	StoredFilename string `json:"stored_filename"`
	AssignmentID   int64  `json:"assignment_id"`
	Size           int64  `json:"size"`
	Success        bool   `json:"success"`
}

// handleUpload は課題ファイルのアップロードを受け付けるハンドラを返す。
// ファイルはサーバーが生成した名前で保存し、クライアントのファイル名はメタデータとしてのみ返す。
func (s *Server) handleUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.uploadMaxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.uploadMaxBytes+multipartOverhead)
		}

		if _, err := c.MultipartForm(); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				s.rejectTooLarge(c)
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart/form-data形式で送信してください"})
			return
		}

		assignmentID, err := strconv.ParseInt(c.PostForm("assignment_id"), 10, 64)
		if err != nil || assignmentID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "assignment_idは正の整数で指定してください"})
			return
		}

		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fileが指定されていません"})
			return
		}

		// 拡張子が許可されていなければファイルを開く前に拒否する
		if _, ok := s.uploads.Allowed(header.Filename); !ok {
			s.rejectUnsupported(c)
			return
		}

		f, err := header.Open()
		if err != nil {
			s.metrics.Upload("error")
			log.Printf("[upload] 受信ファイルのオープンに失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ファイルの読み込みに失敗しました"})
			return
		}
		defer f.Close()

		stored, err := s.uploads.Accept(c.Request.Context(), assignmentID, header.Filename, f)
		if err != nil {
			s.respondUploadError(c, err)
			return
		}

		s.metrics.Upload("accepted")
		log.Printf("[upload] 保存しました: assignment=%d stored=%s size=%d", stored.AssignmentID, stored.StoredFilename, stored.Size)
		c.JSON(http.StatusOK, uploadResponse{
			Filename:       stored.OriginalFilename,
			StoredFilename: stored.StoredFilename,
			AssignmentID:   stored.AssignmentID,
			Size:           stored.Size,
			Success:        true,
		})
	}
}

func (s *Server) respondUploadError(c *gin.Context, err error) {
	var storageErr *upload.StorageError
	switch {
	case errors.Is(err, upload.ErrUnsupportedFileType):
		s.rejectUnsupported(c)
	case errors.Is(err, upload.ErrTooLarge):
		s.rejectTooLarge(c)
	case errors.As(err, &storageErr):
		s.metrics.Upload("error")
		log.Printf("[upload] 保存に失敗: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ファイルの保存に失敗しました"})
	default:
		// クライアントの切断などで受信が途中で終わった
		s.metrics.Upload("rejected")
		log.Printf("[upload] 受信が中断されました: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "ファイルの受信が中断されました"})
	}
}

func (s *Server) rejectUnsupported(c *gin.Context) {
	s.metrics.Upload("rejected")
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   upload.ErrUnsupportedFileType.Error(),
		"allowed": s.uploads.AllowedExtensions(),
	})
}

func (s *Server) rejectTooLarge(c *gin.Context) {
	s.metrics.Upload("rejected")
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": upload.ErrTooLarge.Error()})
}

type safeScriptResponse struct {
	Script  string `json:"script"`
	Content string `json:"content"`
	Message string `json:"message"`
}

// handleSafeScript は許可リストにあるスクリプトの内容を返すハンドラを返す。
// 内容は読み出すだけで実行はしない。
func (s *Server) handleSafeScript() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("script")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "scriptを指定してください: " + strings.Join(staticres.Names(), ", "),
			})
			return
		}
		// 許可リストにない名前はファイルシステムに触れずに404とする
		if !staticres.IsAllowed(name) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "scriptには次のいずれかを指定してください: " + strings.Join(staticres.Names(), ", "),
			})
			return
		}

		res, err := s.scripts.Read(name)
		if errors.Is(err, staticres.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "スクリプトファイルが見つかりません"})
			return
		}
		if err != nil {
			log.Printf("[safe-script] 読み出しエラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, safeScriptResponse{
			Script:  res.Name,
			Content: res.Content,
			Message: "スクリプトの内容を返しました（実行はしていません）",
		})
	}
}
