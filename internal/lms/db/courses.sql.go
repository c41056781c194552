package db

import (
	"context"
	"database/sql"
)

const courseColumns = `id, title, description, instructor_id`

func scanCourse(s scanner) (Course, error) {
	var c Course
	err := s.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID)
	return c, err
}

// CreateCourseParams はコース作成のパラメータ。
type CreateCourseParams struct {
	Title        string
	Description  sql.NullString
	InstructorID sql.NullInt64
}

const createCourse = `INSERT INTO courses (title, description, instructor_id) VALUES (?, ?, ?)
RETURNING ` + courseColumns

// CreateCourse はコースを作成して作成した行を返す。
func (q *Queries) CreateCourse(ctx context.Context, arg CreateCourseParams) (Course, error) {
	return scanCourse(q.db.QueryRowContext(ctx, createCourse, arg.Title, arg.Description, arg.InstructorID))
}

const getCourse = `SELECT ` + courseColumns + ` FROM courses WHERE id = ?`

// GetCourse はIDでコースを取得する。
func (q *Queries) GetCourse(ctx context.Context, id int64) (Course, error) {
	return scanCourse(q.db.QueryRowContext(ctx, getCourse, id))
}

const listCourses = `SELECT ` + courseColumns + ` FROM courses ORDER BY id LIMIT ? OFFSET ?`

// ListCourses はコース一覧をID順に取得する。
func (q *Queries) ListCourses(ctx context.Context, arg ListParams) ([]Course, error) {
	rows, err := q.db.QueryContext(ctx, listCourses, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCourse)
}
