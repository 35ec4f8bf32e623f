package blogservice

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hlumme/bloglist/internal/common"
)

func NewBlogService(db *sql.DB, c *common.Cache, mb common.MessageProducer) *BlogService {
	return &BlogService{m: newBlogModel(db), c: c, mb: mb}
}

type CreateBlogRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	// Likes is optional; an absent field defaults to zero.
	Likes  *int `json:"likes"`
	UserID int  `json:"user_id"`
}

// CreateBlog persists a new blog owned by the requesting user and publishes
// a blog.created event. Title and URL are required; a missing likes field
// defaults to zero before any write happens.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	likes := 0
	if req.Likes != nil {
		likes = *req.Likes
	}

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateURL(v, req.URL)
	validateLikes(v, likes)
	validateInt(v, req.UserID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	id, err := s.m.insert(ctx, req.Title, req.Author, req.URL, likes, req.UserID)
	if err != nil {
		return nil, err
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, err
	}

	event, err := json.Marshal(struct {
		Event    string `json:"event"`
		BlogID   int    `json:"blog_id"`
		Title    string `json:"title"`
		Username string `json:"username,omitempty"`
	}{
		Event:    string(common.BlogCreatedKey),
		BlogID:   blog.ID,
		Title:    blog.Title,
		Username: blog.ownerUsername(),
	})
	if err != nil {
		return nil, err
	}

	err = s.mb.Publish(ctx, event, common.BlogCreatedKey, common.ActivityExchange)
	if err != nil {
		return nil, err
	}

	s.invalidate()

	return blog, nil
}

// GetBlogByID returns a blog post by its ID with the owner resolved.
func (s *BlogService) GetBlogByID(ctx context.Context, id int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if s.c != nil {
		if cached, ok := s.c.Get(common.CacheKeyBlog(id)); ok {
			return cached.(*Blog), nil
		}
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.c != nil {
		s.c.Set(common.CacheKeyBlog(id), blog)
	}

	return blog, nil
}

// GetBlogs returns blogs newest first. Nil limit and offset list everything.
func (s *BlogService) GetBlogs(ctx context.Context, limit, offset *int) ([]Blog, error) {
	key := common.CacheKeyBlogList(limit, offset)
	if s.c != nil {
		if cached, ok := s.c.Get(key); ok {
			return cached.([]Blog), nil
		}
	}

	blogs, err := s.m.getBlogs(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if s.c != nil {
		s.c.Set(key, blogs)
	}

	return blogs, nil
}

// UpdateLikes sets the likes counter of an existing blog and returns the
// updated document. Only the likes field is recognized.
func (s *BlogService) UpdateLikes(ctx context.Context, id, likes int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	validateLikes(v, likes)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	err := s.m.updateLikes(ctx, id, likes)
	if err != nil {
		return nil, err
	}

	s.invalidate()

	return s.m.getBlogById(ctx, id)
}

// DeleteBlog removes a blog post. Only the owning user may delete it.
func (s *BlogService) DeleteBlog(ctx context.Context, blogID, callerID int) error {
	v := common.NewValidator()
	validateInt(v, blogID, "id")
	validateInt(v, callerID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	err := s.m.deleteBlog(ctx, blogID, callerID)
	if err != nil {
		return err
	}

	s.invalidate()

	return nil
}

// invalidate drops all cached blogs after a mutation. The cache is dedicated
// to this service, so a full flush is cheap.
func (s *BlogService) invalidate() {
	if s.c != nil {
		s.c.Flush()
	}
}

func (b *Blog) ownerUsername() string {
	if b.User == nil {
		return ""
	}
	return b.User.Username
}
