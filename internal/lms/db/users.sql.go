package db

import "context"

const userColumns = `id, name, email, role, password_hash`

func scanUser(s scanner) (User, error) {
	var u User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash)
	return u, err
}

// CreateUserParams はユーザー作成のパラメータ。
type CreateUserParams struct {
	Name         string
	Email        string
	Role         string
	PasswordHash string
}

const createUser = `INSERT INTO users (name, email, role, password_hash) VALUES (?, ?, ?, ?)
RETURNING ` + userColumns

// CreateUser はユーザーを作成して作成した行を返す。
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Name, arg.Email, arg.Role, arg.PasswordHash)
	return scanUser(row)
}

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

// GetUser はIDでユーザーを取得する。
func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

// GetUserByEmail はメールアドレスの完全一致でユーザーを取得する。
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT ? OFFSET ?`

// ListUsers はユーザー一覧をID順に取得する。
func (q *Queries) ListUsers(ctx context.Context, arg ListParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}
