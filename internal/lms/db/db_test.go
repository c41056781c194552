package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// newTestQueries はマイグレーション適用済みのインメモリSQLiteでQueriesを生成する。
// 各テストケースで独立したデータベースを使用する。
func newTestQueries(t *testing.T) *Queries {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリSQLiteの接続に失敗: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(context.Background(), sqlDB); err != nil {
		t.Fatalf("マイグレーションに失敗: %v", err)
	}
	return New(sqlDB)
}

func TestUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("作成したユーザーをIDとメールアドレスで取得できること", func(t *testing.T) {
		t.Parallel()

		q := newTestQueries(t)
		created, err := q.CreateUser(ctx, CreateUserParams{Name: "佐藤 一郎", Email: "ichiro@example.com", Role: "student", PasswordHash: "$2a$hash"})
		if err != nil {
			t.Fatalf("CreateUser()でエラーが発生: %v", err)
		}
		if created.ID == 0 {
			t.Fatal("IDが採番されていない")
		}

		byID, err := q.GetUser(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetUser()でエラーが発生: %v", err)
		}
		if byID != created {
			t.Errorf("GetUser() = %+v, want %+v", byID, created)
		}

		byEmail, err := q.GetUserByEmail(ctx, "ichiro@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail()でエラーが発生: %v", err)
		}
		if byEmail.ID != created.ID {
			t.Errorf("GetUserByEmail().ID = %d, want %d", byEmail.ID, created.ID)
		}
	})

	t.Run("メールアドレスの検索は大文字小文字を区別すること", func(t *testing.T) {
		t.Parallel()

		q := newTestQueries(t)
		if _, err := q.CreateUser(ctx, CreateUserParams{Name: "a", Email: "case@example.com", Role: "student", PasswordHash: "h"}); err != nil {
			t.Fatalf("CreateUser()でエラーが発生: %v", err)
		}
		if _, err := q.GetUserByEmail(ctx, "CASE@example.com"); !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("err = %v, want sql.ErrNoRows", err)
		}
	})

	t.Run("重複したメールアドレスは一意制約違反になること", func(t *testing.T) {
		t.Parallel()

		q := newTestQueries(t)
		arg := CreateUserParams{Name: "a", Email: "dup@example.com", Role: "student", PasswordHash: "h"}
		if _, err := q.CreateUser(ctx, arg); err != nil {
			t.Fatalf("CreateUser()でエラーが発生: %v", err)
		}
		_, err := q.CreateUser(ctx, arg)
		if !IsUniqueViolation(err) {
			t.Errorf("err = %v, want 一意制約違反", err)
		}
		if IsUniqueViolation(errors.New("other")) {
			t.Error("一意制約違反以外のエラーを一意制約違反と判定した")
		}
	})

	t.Run("存在しないIDはsql.ErrNoRowsを返すこと", func(t *testing.T) {
		t.Parallel()

		q := newTestQueries(t)
		if _, err := q.GetUser(ctx, 999); !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("err = %v, want sql.ErrNoRows", err)
		}
	})

	t.Run("一覧はID順でオフセットと件数が効くこと", func(t *testing.T) {
		t.Parallel()

		q := newTestQueries(t)
		for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
			if _, err := q.CreateUser(ctx, CreateUserParams{Name: email, Email: email, Role: "student", PasswordHash: "h"}); err != nil {
				t.Fatalf("CreateUser()でエラーが発生: %v", err)
			}
		}

		users, err := q.ListUsers(ctx, ListParams{Offset: 1, Limit: 1})
		if err != nil {
			t.Fatalf("ListUsers()でエラーが発生: %v", err)
		}
		if len(users) != 1 || users[0].Email != "b@example.com" {
			t.Errorf("ListUsers() = %+v, want [b@example.com]", users)
		}
	})
}

func TestCoursesAndEnrollments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := newTestQueries(t)

	course, err := q.CreateCourse(ctx, CreateCourseParams{Title: "線形代数"})
	if err != nil {
		t.Fatalf("CreateCourse()でエラーが発生: %v", err)
	}
	if course.Description.Valid || course.InstructorID.Valid {
		t.Errorf("未指定の列がNULLになっていない: %+v", course)
	}

	got, err := q.GetCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetCourse()でエラーが発生: %v", err)
	}
	if got.Title != "線形代数" {
		t.Errorf("Title = %q, want %q", got.Title, "線形代数")
	}

	enrollment, err := q.CreateEnrollment(ctx, CreateEnrollmentParams{UserID: 1, CourseID: course.ID})
	if err != nil {
		t.Fatalf("CreateEnrollment()でエラーが発生: %v", err)
	}
	list, err := q.ListEnrollments(ctx, ListParams{Limit: 100})
	if err != nil {
		t.Fatalf("ListEnrollments()でエラーが発生: %v", err)
	}
	if len(list) != 1 || list[0] != enrollment {
		t.Errorf("ListEnrollments() = %+v, want [%+v]", list, enrollment)
	}

	empty, err := q.ListCourses(ctx, ListParams{Offset: 10, Limit: 100})
	if err != nil {
		t.Fatalf("ListCourses()でエラーが発生: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListCourses() = %#v, want 空スライス", empty)
	}
}

func TestAssignmentsAndSubmissions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := newTestQueries(t)

	due := time.Date(2026, 11, 30, 23, 59, 0, 0, time.UTC)
	assignment, err := q.CreateAssignment(ctx, CreateAssignmentParams{
		CourseID:    1,
		Title:       "レポート課題",
		Description: sql.NullString{String: "A4で2枚", Valid: true},
		DueDate:     sql.NullTime{Time: due, Valid: true},
	})
	if err != nil {
		t.Fatalf("CreateAssignment()でエラーが発生: %v", err)
	}
	if !assignment.DueDate.Valid || !assignment.DueDate.Time.Equal(due) {
		t.Errorf("DueDate = %+v, want %v", assignment.DueDate, due)
	}

	noDue, err := q.CreateAssignment(ctx, CreateAssignmentParams{CourseID: 1, Title: "期限なし"})
	if err != nil {
		t.Fatalf("CreateAssignment()でエラーが発生: %v", err)
	}
	if noDue.DueDate.Valid {
		t.Errorf("DueDate = %+v, want NULL", noDue.DueDate)
	}

	submittedAt := time.Date(2026, 11, 29, 10, 0, 0, 123000000, time.UTC)
	sub, err := q.CreateSubmission(ctx, CreateSubmissionParams{
		AssignmentID: assignment.ID,
		UserID:       1,
		SubmittedAt:  submittedAt,
		Content:      sql.NullString{String: "<p>提出します</p>", Valid: true},
	})
	if err != nil {
		t.Fatalf("CreateSubmission()でエラーが発生: %v", err)
	}

	got, err := q.GetSubmission(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubmission()でエラーが発生: %v", err)
	}
	if !got.SubmittedAt.Equal(submittedAt) {
		t.Errorf("SubmittedAt = %v, want %v", got.SubmittedAt, submittedAt)
	}
	if got.Content.String != "<p>提出します</p>" {
		t.Errorf("Content = %q", got.Content.String)
	}

	nullContent, err := q.CreateSubmission(ctx, CreateSubmissionParams{AssignmentID: assignment.ID, UserID: 2, SubmittedAt: submittedAt})
	if err != nil {
		t.Fatalf("CreateSubmission()でエラーが発生: %v", err)
	}
	if nullContent.Content.Valid {
		t.Errorf("Content = %+v, want NULL", nullContent.Content)
	}
}

func TestPosts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := newTestQueries(t)

	post, err := q.CreatePost(ctx, CreatePostParams{Author: "田中", Content: "質問があります"})
	if err != nil {
		t.Fatalf("CreatePost()でエラーが発生: %v", err)
	}
	got, err := q.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost()でエラーが発生: %v", err)
	}
	if got != post {
		t.Errorf("GetPost() = %+v, want %+v", got, post)
	}

	if _, err := q.GetPost(ctx, post.ID+1); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}
