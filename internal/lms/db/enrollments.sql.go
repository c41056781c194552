package db

import "context"

const enrollmentColumns = `id, user_id, course_id`

func scanEnrollment(s scanner) (Enrollment, error) {
	var e Enrollment
	err := s.Scan(&e.ID, &e.UserID, &e.CourseID)
	return e, err
}

// CreateEnrollmentParams は受講登録のパラメータ。
type CreateEnrollmentParams struct {
	UserID   int64
	CourseID int64
}

const createEnrollment = `INSERT INTO enrollments (user_id, course_id) VALUES (?, ?)
RETURNING ` + enrollmentColumns

// CreateEnrollment は受講登録を作成して作成した行を返す。
func (q *Queries) CreateEnrollment(ctx context.Context, arg CreateEnrollmentParams) (Enrollment, error) {
	return scanEnrollment(q.db.QueryRowContext(ctx, createEnrollment, arg.UserID, arg.CourseID))
}

const listEnrollments = `SELECT ` + enrollmentColumns + ` FROM enrollments ORDER BY id LIMIT ? OFFSET ?`

// ListEnrollments は受講登録一覧をID順に取得する。
func (q *Queries) ListEnrollments(ctx context.Context, arg ListParams) ([]Enrollment, error) {
	rows, err := q.db.QueryContext(ctx, listEnrollments, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEnrollment)
}
