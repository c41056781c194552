package db

import (
	"context"
	"database/sql"
)

const assignmentColumns = `id, course_id, title, description, due_date`

func scanAssignment(s scanner) (Assignment, error) {
	var (
		a   Assignment
		due sql.NullString
	)
	if err := s.Scan(&a.ID, &a.CourseID, &a.Title, &a.Description, &due); err != nil {
		return Assignment{}, err
	}
	dueDate, err := parseNullTime(due)
	if err != nil {
		return Assignment{}, err
	}
	a.DueDate = dueDate
	return a, nil
}

// CreateAssignmentParams は課題作成のパラメータ。
type CreateAssignmentParams struct {
	CourseID    int64
	Title       string
	Description sql.NullString
	DueDate     sql.NullTime
}

const createAssignment = `INSERT INTO assignments (course_id, title, description, due_date) VALUES (?, ?, ?, ?)
RETURNING ` + assignmentColumns

// CreateAssignment は課題を作成して作成した行を返す。
func (q *Queries) CreateAssignment(ctx context.Context, arg CreateAssignmentParams) (Assignment, error) {
	row := q.db.QueryRowContext(ctx, createAssignment, arg.CourseID, arg.Title, arg.Description, nullTimeArg(arg.DueDate))
	return scanAssignment(row)
}

const getAssignment = `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = ?`

// GetAssignment はIDで課題を取得する。
func (q *Queries) GetAssignment(ctx context.Context, id int64) (Assignment, error) {
	return scanAssignment(q.db.QueryRowContext(ctx, getAssignment, id))
}

const listAssignments = `SELECT ` + assignmentColumns + ` FROM assignments ORDER BY id LIMIT ? OFFSET ?`

// ListAssignments は課題一覧をID順に取得する。
func (q *Queries) ListAssignments(ctx context.Context, arg ListParams) ([]Assignment, error) {
	rows, err := q.db.QueryContext(ctx, listAssignments, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAssignment)
}
