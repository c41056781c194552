package db

import "context"

const postColumns = `id, author, content`

func scanPost(s scanner) (DiscussionPost, error) {
	var p DiscussionPost
	err := s.Scan(&p.ID, &p.Author, &p.Content)
	return p, err
}

// CreatePostParams はディスカッション投稿のパラメータ。Contentはサニタイズ済みであること。
type CreatePostParams struct {
	Author  string
	Content string
}

const createPost = `INSERT INTO discussion_posts (author, content) VALUES (?, ?)
RETURNING ` + postColumns

// CreatePost は投稿を作成して作成した行を返す。
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (DiscussionPost, error) {
	return scanPost(q.db.QueryRowContext(ctx, createPost, arg.Author, arg.Content))
}

const getPost = `SELECT ` + postColumns + ` FROM discussion_posts WHERE id = ?`

// GetPost はIDで投稿を取得する。
func (q *Queries) GetPost(ctx context.Context, id int64) (DiscussionPost, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPost, id))
}

const listPosts = `SELECT ` + postColumns + ` FROM discussion_posts ORDER BY id LIMIT ? OFFSET ?`

// ListPosts は投稿一覧をID順に取得する。
func (q *Queries) ListPosts(ctx context.Context, arg ListParams) ([]DiscussionPost, error) {
	rows, err := q.db.QueryContext(ctx, listPosts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPost)
}
