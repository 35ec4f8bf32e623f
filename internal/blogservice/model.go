package blogservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUserForeignKey = errors.New("user_id does not exist")
	ErrNotOwner       = errors.New("caller does not own the blog")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// scanBlog reads one row of the blogs-with-owner projection. The owner
// columns come from a LEFT JOIN and may all be NULL.
func scanBlog(row interface{ Scan(dest ...any) error }) (*Blog, error) {
	var (
		blog     Blog
		author   sql.NullString
		ownerID  sql.NullInt64
		username sql.NullString
		name     sql.NullString
	)

	err := row.Scan(&blog.ID, &blog.Title, &author, &blog.URL, &blog.Likes, &ownerID, &username, &name, &blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		return nil, err
	}

	blog.Author = author.String
	if ownerID.Valid {
		blog.User = &BlogUser{
			ID:       int(ownerID.Int64),
			Username: username.String,
			Name:     name.String,
		}
	}

	return &blog, nil
}

const blogColumns = `
	b.id, b.title, b.author, b.url, b.likes, b.user_id, u.username, u.name, b.created_at, b.updated_at`

func (m *BlogModel) insert(ctx context.Context, title, author, url string, likes, userID int) (int, error) {
	query := `
		INSERT INTO blogs (title, author, url, likes, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	authorArg := sql.NullString{String: author, Valid: author != ""}

	var id int
	err := m.db.QueryRowContext(ctx, query, title, authorArg, url, likes, userID).Scan(&id)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blogs_user_id_fkey"):
			return 0, ErrUserForeignKey
		default:
			return 0, err
		}
	}

	return id, nil
}

func (m *BlogModel) getBlogById(ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs b
		LEFT JOIN users u ON b.user_id = u.id
		WHERE b.id = $1`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

// getBlogs lists blogs newest first. A nil limit or offset leaves the
// corresponding clause unbounded (LIMIT NULL / OFFSET NULL).
func (m *BlogModel) getBlogs(ctx context.Context, limit, offset *int) ([]Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs b
		LEFT JOIN users u ON b.user_id = u.id
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $1 OFFSET $2`

	var limitArg, offsetArg any
	if limit != nil {
		limitArg = *limit
	}
	if offset != nil {
		offsetArg = *offset
	}

	rows, err := m.db.QueryContext(ctx, query, limitArg, offsetArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

// updateLikes applies the likes field only. Returns ErrRecordNotFound when
// the id does not reference an existing blog.
func (m *BlogModel) updateLikes(ctx context.Context, id, likes int) error {
	query := `
		UPDATE blogs
		SET likes = $1, updated_at = now()
		WHERE id = $2
		RETURNING id`

	err := m.db.QueryRowContext(ctx, query, likes, id).Scan(&id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// deleteBlog removes the blog after verifying existence and ownership inside
// a single transaction. Ownerless rows cannot be removed by anyone.
func (m *BlogModel) deleteBlog(ctx context.Context, blogID, callerID int) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var ownerID sql.NullInt64
	err = tx.QueryRowContext(ctx, "SELECT user_id FROM blogs WHERE id = $1 FOR UPDATE", blogID).Scan(&ownerID)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	if !ownerID.Valid || int(ownerID.Int64) != callerID {
		_ = tx.Rollback()
		return ErrNotOwner
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM blogs WHERE id = $1", blogID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
