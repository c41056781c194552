package db

import (
	"database/sql"
	"time"
)

// User は users テーブルの行。
type User struct {
	ID           int64
	Name         string
	Email        string
	Role         string
	PasswordHash string
}

// Course は courses テーブルの行。
type Course struct {
	ID           int64
	Title        string
	Description  sql.NullString
	InstructorID sql.NullInt64
}

// Enrollment は enrollments テーブルの行。
type Enrollment struct {
	ID       int64
	UserID   int64
	CourseID int64
}

// Assignment は assignments テーブルの行。
type Assignment struct {
	ID          int64
	CourseID    int64
	Title       string
	Description sql.NullString
	DueDate     sql.NullTime
}

// Submission は submissions テーブルの行。
type Submission struct {
	ID           int64
	AssignmentID int64
	UserID       int64
	SubmittedAt  time.Time
	Content      sql.NullString
}

// DiscussionPost は discussion_posts テーブルの行。
type DiscussionPost struct {
	ID      int64
	Author  string
	Content string
}
