package domain

import "time"

// Post es la raiz del agregado: likes y comentarios viven dentro del post y
// solo se mutan a traves del repositorio del agregado.
type Post struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    User      `json:"author"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentAuthor guarda el nombre del comentarista al momento de comentar.
type CommentAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Comment struct {
	ID        string        `json:"id"`
	User      CommentAuthor `json:"user"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"createdAt"`
}

// LikedBy indica si el usuario ya esta en el set de likes.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
