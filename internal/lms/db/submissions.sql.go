package db

import (
	"context"
	"database/sql"
	"time"
)

const submissionColumns = `id, assignment_id, user_id, submitted_at, content`

func scanSubmission(s scanner) (Submission, error) {
	var (
		sub         Submission
		submittedAt sql.NullString
	)
	if err := s.Scan(&sub.ID, &sub.AssignmentID, &sub.UserID, &submittedAt, &sub.Content); err != nil {
		return Submission{}, err
	}
	t, err := parseNullTime(submittedAt)
	if err != nil {
		return Submission{}, err
	}
	sub.SubmittedAt = t.Time
	return sub, nil
}

// CreateSubmissionParams は提出物作成のパラメータ。Contentはサニタイズ済みであること。
type CreateSubmissionParams struct {
	AssignmentID int64
	UserID       int64
	SubmittedAt  time.Time
	Content      sql.NullString
}

const createSubmission = `INSERT INTO submissions (assignment_id, user_id, submitted_at, content) VALUES (?, ?, ?, ?)
RETURNING ` + submissionColumns

// CreateSubmission は提出物を作成して作成した行を返す。
func (q *Queries) CreateSubmission(ctx context.Context, arg CreateSubmissionParams) (Submission, error) {
	row := q.db.QueryRowContext(ctx, createSubmission, arg.AssignmentID, arg.UserID, formatTime(arg.SubmittedAt), arg.Content)
	return scanSubmission(row)
}

const getSubmission = `SELECT ` + submissionColumns + ` FROM submissions WHERE id = ?`

// GetSubmission はIDで提出物を取得する。
func (q *Queries) GetSubmission(ctx context.Context, id int64) (Submission, error) {
	return scanSubmission(q.db.QueryRowContext(ctx, getSubmission, id))
}

const listSubmissions = `SELECT ` + submissionColumns + ` FROM submissions ORDER BY id LIMIT ? OFFSET ?`

// ListSubmissions は提出物一覧をID順に取得する。
func (q *Queries) ListSubmissions(ctx context.Context, arg ListParams) ([]Submission, error) {
	rows, err := q.db.QueryContext(ctx, listSubmissions, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSubmission)
}
