package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mini-linkedin/internal/domain"
	"mini-linkedin/internal/repository"
)

// PostService coordina reglas de negocio para el agregado Post y el feed.
type PostService struct {
	logger *zap.Logger
	posts  repository.PostRepository
	users  repository.UserRepository
	cache  FeedCache
}

// NewPostService crea un PostService; cache puede ser nil para leer siempre
// de la base.
func NewPostService(logger *zap.Logger, posts repository.PostRepository, users repository.UserRepository, cache FeedCache) *PostService {
	return &PostService{
		logger: logger,
		posts:  posts,
		users:  users,
		cache:  cache,
	}
}

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrNotPostAuthor  = errors.New("not the post author")
	ErrContentInvalid = errors.New("post content empty or too long")
	ErrCommentInvalid = errors.New("comment text empty or too long")
)

const (
	maxPostContentLen = 1000
	maxCommentTextLen = 500
)

// Create publica un post nuevo con likes y comentarios vacios.
func (s *PostService) Create(ctx context.Context, authorID, content string) (domain.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxPostContentLen {
		return domain.Post{}, ErrContentInvalid
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, ErrUserNotFound
		}
		return domain.Post{}, err
	}

	post := domain.Post{
		ID:        uuid.NewString(),
		Content:   content,
		Author:    author,
		Likes:     []string{},
		Comments:  []domain.Comment{},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return domain.Post{}, err
	}
	s.invalidateFeed(ctx)
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id string) (domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, ErrPostNotFound
		}
		return domain.Post{}, err
	}
	return post, nil
}

// Delete elimina el post de forma permanente; solo el autor puede hacerlo.
func (s *PostService) Delete(ctx context.Context, id, requesterID string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.Author.ID != requesterID {
		return ErrNotPostAuthor
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPostNotFound
		}
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

// ToggleLike agrega o quita al usuario del set de likes del post.
func (s *PostService) ToggleLike(ctx context.Context, postID, requesterID string) (repository.LikeResult, error) {
	result, err := s.posts.ToggleLike(ctx, postID, requesterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.LikeResult{}, ErrPostNotFound
		}
		return repository.LikeResult{}, err
	}
	s.invalidateFeed(ctx)
	return result, nil
}

// AddComment agrega un comentario al final y devuelve la secuencia completa
// para que el llamador resincronice su vista sin un segundo fetch.
func (s *PostService) AddComment(ctx context.Context, postID, requesterID, text string) ([]domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxCommentTextLen {
		return nil, ErrCommentInvalid
	}

	commenter, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	comment := domain.Comment{
		ID: uuid.NewString(),
		User: domain.CommentAuthor{
			ID:   commenter.ID,
			Name: commenter.Name,
		},
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	comments, err := s.posts.AddComment(ctx, postID, comment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	s.invalidateFeed(ctx)
	return comments, nil
}

// Feed devuelve todos los posts, mas recientes primero.
func (s *PostService) Feed(ctx context.Context) ([]domain.Post, error) {
	if s.cache != nil {
		if posts, ok := s.cache.Get(ctx); ok {
			return posts, nil
		}
	}
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, posts)
	}
	return posts, nil
}

// ListByAuthor devuelve los posts de un usuario, mas recientes primero.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID)
}

func (s *PostService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx)
}
