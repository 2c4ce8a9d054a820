package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/prakhar1989/blag/internal/blog"
)

const pgUniqueViolation = "23505"

// PostgresPosts implements PostStore over database/sql with the pgx stdlib
// driver.
type PostgresPosts struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func NewPostgresPosts(db *sql.DB, logger *zap.SugaredLogger) *PostgresPosts {
	return &PostgresPosts{db: db, logger: logger}
}

func (p *PostgresPosts) Create(ctx context.Context, subject, content string, isDraft bool) (*blog.Post, error) {
	query := `
		INSERT INTO posts (subject, content, is_draft, created, last_modified)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id, subject, content, is_draft, created, last_modified
	`

	var post blog.Post
	err := p.db.QueryRowContext(ctx, query, subject, content, isDraft).Scan(
		&post.ID, &post.Subject, &post.Content, &post.IsDraft, &post.Created, &post.LastModified,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	p.logger.Debugw("Created post", "id", post.ID, "is_draft", post.IsDraft)
	return &post, nil
}

func (p *PostgresPosts) GetByID(ctx context.Context, id int64) (*blog.Post, error) {
	query := `
		SELECT id, subject, content, is_draft, created, last_modified
		FROM posts WHERE id = $1
	`

	var post blog.Post
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.Subject, &post.Content, &post.IsDraft, &post.Created, &post.LastModified,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}

	return &post, nil
}

func (p *PostgresPosts) ListPublished(ctx context.Context) ([]blog.Post, error) {
	return p.list(ctx, false)
}

func (p *PostgresPosts) ListDrafts(ctx context.Context) ([]blog.Post, error) {
	return p.list(ctx, true)
}

func (p *PostgresPosts) list(ctx context.Context, drafts bool) ([]blog.Post, error) {
	query := `
		SELECT id, subject, content, is_draft, created, last_modified
		FROM posts WHERE is_draft = $1
		ORDER BY created DESC, id DESC
	`

	rows, err := p.db.QueryContext(ctx, query, drafts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []blog.Post
	for rows.Next() {
		var post blog.Post
		if err := rows.Scan(&post.ID, &post.Subject, &post.Content, &post.IsDraft, &post.Created, &post.LastModified); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

func (p *PostgresPosts) Update(ctx context.Context, id int64, subject, content string, isDraft bool) (*blog.Post, error) {
	query := `
		UPDATE posts
		SET subject = $2, content = $3, is_draft = $4, last_modified = now()
		WHERE id = $1
		RETURNING id, subject, content, is_draft, created, last_modified
	`

	var post blog.Post
	err := p.db.QueryRowContext(ctx, query, id, subject, content, isDraft).Scan(
		&post.ID, &post.Subject, &post.Content, &post.IsDraft, &post.Created, &post.LastModified,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post %d: %w", id, err)
	}

	p.logger.Debugw("Updated post", "id", post.ID)
	return &post, nil
}

func (p *PostgresPosts) Delete(ctx context.Context, id int64) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	p.logger.Debugw("Deleted post", "id", id)
	return nil
}

// PostgresUsers implements UserStore. Username uniqueness relies on the
// unique index, so two concurrent registrations cannot both succeed.
type PostgresUsers struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func NewPostgresUsers(db *sql.DB, logger *zap.SugaredLogger) *PostgresUsers {
	return &PostgresUsers{db: db, logger: logger}
}

func (u *PostgresUsers) Register(ctx context.Context, username, email, passwordHash string) (*blog.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, created)
		VALUES ($1, $2, $3, now())
		RETURNING id, username, email, password_hash, created
	`

	var user blog.User
	err := u.db.QueryRowContext(ctx, query, username, email, passwordHash).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Created,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	u.logger.Infow("Registered user", "id", user.ID, "username", user.Username)
	return &user, nil
}

func (u *PostgresUsers) GetByUsername(ctx context.Context, username string) (*blog.User, error) {
	query := `
		SELECT id, username, email, password_hash, created
		FROM users WHERE username = $1
	`

	var user blog.User
	err := u.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}

	return &user, nil
}

func (u *PostgresUsers) GetByID(ctx context.Context, id int64) (*blog.User, error) {
	query := `
		SELECT id, username, email, password_hash, created
		FROM users WHERE id = $1
	`

	var user blog.User
	err := u.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return &user, nil
}

var (
	_ PostStore = (*PostgresPosts)(nil)
	_ UserStore = (*PostgresUsers)(nil)
)
