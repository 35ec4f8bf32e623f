package blogservice

import (
	"database/sql"
	"time"

	"github.com/hlumme/bloglist/internal/common"
)

type Blog struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
	// User is the resolved owner reference. Nil for seed rows that predate
	// ownership tracking.
	User      *BlogUser `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlogUser is the projection of the owning user embedded in blog responses.
type BlogUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m  *BlogModel
	c  *common.Cache
	mb common.MessageProducer
}
