package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mini-linkedin/internal/domain"
)

// LikeResult es el estado resultante del toggle de like sobre un post.
type LikeResult struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"isLiked"`
}

// PostRepository define el contrato de persistencia para el agregado Post.
// Likes y comentarios solo se tocan a traves de estos metodos; cada mutacion
// bloquea la fila del post para serializar escrituras sobre el mismo agregado.
type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	GetByID(ctx context.Context, id string) (domain.Post, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, userID string) (LikeResult, error)
	AddComment(ctx context.Context, postID string, comment domain.Comment) ([]domain.Comment, error)
	ListAll(ctx context.Context) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error)
}

// PgPostRepository implementa PostRepository usando pgxpool.
type PgPostRepository struct {
	pool *pgxpool.Pool
}

func NewPgPostRepository(pool *pgxpool.Pool) *PgPostRepository {
	return &PgPostRepository{pool: pool}
}

const postSelect = `
	SELECT p.id, p.content, p.created_at,
	       u.id, u.name, u.email, u.bio, u.created_at
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

func (r *PgPostRepository) Create(ctx context.Context, post domain.Post) error {
	const query = `
		INSERT INTO posts (id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Author.ID,
		post.Content,
		post.CreatedAt,
	)
	return err
}

func (r *PgPostRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	post, err := r.scanPost(r.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return domain.Post{}, err
	}
	posts := []domain.Post{post}
	if err := r.hydrate(ctx, posts); err != nil {
		return domain.Post{}, err
	}
	return posts[0], nil
}

// Delete elimina el post; likes y comentarios caen en cascada con el agregado.
func (r *PgPostRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgPostRepository) ToggleLike(ctx context.Context, postID, userID string) (LikeResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return LikeResult{}, err
	}
	defer tx.Rollback(ctx)

	if err := lockPost(ctx, tx, postID); err != nil {
		return LikeResult{}, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return LikeResult{}, err
	}
	liked := false
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID); err != nil {
			return LikeResult{}, err
		}
		liked = true
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return LikeResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return LikeResult{}, err
	}
	return LikeResult{Likes: count, IsLiked: liked}, nil
}

func (r *PgPostRepository) AddComment(ctx context.Context, postID string, comment domain.Comment) ([]domain.Comment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := lockPost(ctx, tx, postID); err != nil {
		return nil, err
	}

	const insert = `
		INSERT INTO post_comments (id, post_id, user_id, user_name, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, insert,
		comment.ID,
		postID,
		comment.User.ID,
		comment.User.Name,
		comment.Text,
		comment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	comments, err := listComments(ctx, tx, postID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *PgPostRepository) ListAll(ctx context.Context) ([]domain.Post, error) {
	return r.listPosts(ctx, postSelect+` ORDER BY p.created_at DESC`)
}

func (r *PgPostRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	return r.listPosts(ctx, postSelect+` WHERE p.author_id = $1 ORDER BY p.created_at DESC`, authorID)
}

func (r *PgPostRepository) listPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := r.scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PgPostRepository) scanPost(row pgx.Row) (domain.Post, error) {
	var p domain.Post
	err := row.Scan(
		&p.ID,
		&p.Content,
		&p.CreatedAt,
		&p.Author.ID,
		&p.Author.Name,
		&p.Author.Email,
		&p.Author.Bio,
		&p.Author.CreatedAt,
	)
	if err != nil {
		return domain.Post{}, err
	}
	p.Likes = []string{}
	p.Comments = []domain.Comment{}
	return p, nil
}

// hydrate carga likes y comentarios para el conjunto de posts en dos queries.
func (r *PgPostRepository) hydrate(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(posts))
	index := make(map[string]int, len(posts))
	for i, p := range posts {
		ids = append(ids, p.ID)
		index[p.ID] = i
	}

	likeRows, err := r.pool.Query(ctx, `
		SELECT post_id, user_id
		FROM post_likes
		WHERE post_id = ANY($1)
	`, ids)
	if err != nil {
		return err
	}
	defer likeRows.Close()
	for likeRows.Next() {
		var postID, userID string
		if err := likeRows.Scan(&postID, &userID); err != nil {
			return err
		}
		i := index[postID]
		posts[i].Likes = append(posts[i].Likes, userID)
	}
	if err := likeRows.Err(); err != nil {
		return err
	}

	commentRows, err := r.pool.Query(ctx, `
		SELECT post_id, id, user_id, user_name, text, created_at
		FROM post_comments
		WHERE post_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`, ids)
	if err != nil {
		return err
	}
	defer commentRows.Close()
	for commentRows.Next() {
		var postID string
		var c domain.Comment
		if err := commentRows.Scan(&postID, &c.ID, &c.User.ID, &c.User.Name, &c.Text, &c.CreatedAt); err != nil {
			return err
		}
		i := index[postID]
		posts[i].Comments = append(posts[i].Comments, c)
	}
	return commentRows.Err()
}

func lockPost(ctx context.Context, tx pgx.Tx, postID string) error {
	var id string
	return tx.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&id)
}

func listComments(ctx context.Context, tx pgx.Tx, postID string) ([]domain.Comment, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, user_id, user_name, text, created_at
		FROM post_comments
		WHERE post_id = $1
		ORDER BY created_at ASC, id ASC
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.User.ID, &c.User.Name, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
