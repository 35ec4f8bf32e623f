package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hlumme/bloglist/internal/blogservice"
)

func seedBlog(t *testing.T, db *sql.DB, title, url string, likes int) int {
	var id int
	err := db.QueryRow(`
		INSERT INTO blogs (title, url, likes)
		VALUES ($1, $2, $3)
		RETURNING id`, title, url, likes).Scan(&id)
	if err != nil {
		t.Fatalf("could not seed blog: %v", err)
	}

	return id
}

func blogCount(t *testing.T, db *sql.DB) int {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM blogs").Scan(&count)
	if err != nil {
		t.Fatalf("could not count blogs: %v", err)
	}

	return count
}

func decodeBlogs(t *testing.T, body []byte) []blogservice.Blog {
	var blogs []blogservice.Blog
	err := json.Unmarshal(body, &blogs)
	if err != nil {
		t.Fatalf("could not decode blog list: %v", err)
	}

	return blogs
}

func decodeBlog(t *testing.T, body []byte) blogservice.Blog {
	var blog blogservice.Blog
	err := json.Unmarshal(body, &blog)
	if err != nil {
		t.Fatalf("could not decode blog: %v", err)
	}

	return blog
}

func registerAndLogin(t *testing.T, ts *testServer, username, name, password string) string {
	status, _, _ := ts.post(t, "/api/users", map[string]string{
		"username": username,
		"name":     name,
		"password": password,
	}, nil)
	assert.Equal(t, http.StatusCreated, status)

	status, _, body := ts.post(t, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	assert.Equal(t, http.StatusOK, status)

	var session struct {
		Token    string `json:"token"`
		Username string `json:"username"`
		Name     string `json:"name"`
	}
	err := json.Unmarshal(body, &session)
	assert.NoError(t, err)
	assert.Equal(t, username, session.Username)
	assert.Equal(t, name, session.Name)
	assert.NotEmpty(t, session.Token)

	return session.Token
}

// TestBlogListScenario walks the whole resource lifecycle: two seeded blogs,
// a registered user, a token-authenticated creation, a likes update and an
// owner-only deletion.
func TestBlogListScenario(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	seedBlog(t, db, "Pekka ihmemaassa", "booky.com", 1)
	seedBlog(t, db, "Antti Kairossa", "aksu.net", 2)

	t.Run("blogs are returned as json", func(t *testing.T) {
		status, header, body := ts.get(t, "/api/blogs", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, header.Get("Content-Type"), "application/json")

		blogs := decodeBlogs(t, body)
		assert.Len(t, blogs, 2)

		// every blog exposes its own id, not a raw store key
		for _, blog := range blogs {
			assert.NotZero(t, blog.ID)
		}
	})

	token := registerAndLogin(t, ts, "pedro123", "Pedro", "salsa")

	t.Run("a valid blog can be added", func(t *testing.T) {
		status, header, body := ts.post(t, "/api/blogs", map[string]any{
			"title": "Liisa Karjalassa",
			"url":   "test.fi/1",
		}, &token)
		assert.Equal(t, http.StatusCreated, status)
		assert.Contains(t, header.Get("Content-Type"), "application/json")

		blog := decodeBlog(t, body)
		assert.Equal(t, "Liisa Karjalassa", blog.Title)
		assert.Equal(t, 0, blog.Likes)
		assert.NotNil(t, blog.User)
		assert.Equal(t, "pedro123", blog.User.Username)

		status, _, body = ts.get(t, "/api/blogs", nil)
		assert.Equal(t, http.StatusOK, status)

		blogs := decodeBlogs(t, body)
		assert.Len(t, blogs, 3)

		titles := make([]string, 0, len(blogs))
		for _, b := range blogs {
			titles = append(titles, b.Title)
		}
		assert.Contains(t, titles, "Liisa Karjalassa")
	})

	t.Run("adding a blog without a token fails", func(t *testing.T) {
		before := blogCount(t, db)

		status, _, _ := ts.post(t, "/api/blogs", map[string]any{
			"title": "Kirjaton",
			"url":   "test.fi/2",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, before, blogCount(t, db))
	})

	t.Run("adding a blog without title and url fails", func(t *testing.T) {
		before := blogCount(t, db)

		status, _, _ := ts.post(t, "/api/blogs", map[string]any{
			"author": "Kari Kielonen",
		}, &token)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, before, blogCount(t, db))
	})

	t.Run("modifying likes of an existing blog", func(t *testing.T) {
		_, _, body := ts.get(t, "/api/blogs", nil)
		blogs := decodeBlogs(t, body)
		target := blogs[0]

		status, _, body := ts.put(t, "/api/blogs/"+strconv.Itoa(target.ID), map[string]any{
			"likes": target.Likes + 200,
		}, &token)
		assert.Equal(t, http.StatusOK, status)

		modified := decodeBlog(t, body)
		assert.Equal(t, target.Likes+200, modified.Likes)

		_, _, body = ts.get(t, "/api/blogs", nil)
		for _, b := range decodeBlogs(t, body) {
			if b.ID == target.ID {
				assert.Equal(t, target.Likes+200, b.Likes)
			}
		}
	})

	t.Run("modifying likes of a missing blog returns 404", func(t *testing.T) {
		status, _, _ := ts.put(t, "/api/blogs/999999", map[string]any{"likes": 5}, &token)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("removing an owned blog", func(t *testing.T) {
		_, _, body := ts.get(t, "/api/blogs", nil)
		blogs := decodeBlogs(t, body)
		before := len(blogs)

		var owned *blogservice.Blog
		for i, b := range blogs {
			if b.User != nil && b.User.Username == "pedro123" {
				owned = &blogs[i]
				break
			}
		}
		assert.NotNil(t, owned)

		status, _, _ := ts.delete(t, "/api/blogs/"+strconv.Itoa(owned.ID), &token)
		assert.Equal(t, http.StatusNoContent, status)

		_, _, body = ts.get(t, "/api/blogs", nil)
		assert.Len(t, decodeBlogs(t, body), before-1)

		// the id is gone for good
		status, _, _ = ts.delete(t, "/api/blogs/"+strconv.Itoa(owned.ID), &token)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("removing a blog owned by someone else returns 403", func(t *testing.T) {
		otherToken := registerAndLogin(t, ts, "angelina777", "Angelina", "kastike")

		status, _, body := ts.post(t, "/api/blogs", map[string]any{
			"title": "Pedron kirja",
			"url":   "test.fi/3",
		}, &token)
		assert.Equal(t, http.StatusCreated, status)
		blog := decodeBlog(t, body)

		status, _, _ = ts.delete(t, "/api/blogs/"+strconv.Itoa(blog.ID), &otherToken)
		assert.Equal(t, http.StatusForbidden, status)
	})

	// regression: the id cast fault in an earlier iteration surfaced this
	// as a 500
	t.Run("removing a missing blog returns 404", func(t *testing.T) {
		status, _, _ := ts.delete(t, "/api/blogs/1232434", &token)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestCreateUserValidation(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	status, _, body := ts.post(t, "/api/users", map[string]string{
		"username": "pedro123",
		"name":     "Pedro",
		"password": "salsa",
	}, nil)
	assert.Equal(t, http.StatusCreated, status)
	assert.NotContains(t, string(body), "password")

	t.Run("duplicate username", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/users", map[string]string{
			"username": "pedro123",
			"name":     "Impostor",
			"password": "kastike",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("weak password", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/users", map[string]string{
			"username": "angelina777",
			"name":     "Angelina",
			"password": "",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestLoginFailures(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	registerAndLogin(t, ts, "pedro123", "Pedro", "salsa")

	t.Run("wrong password", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/login", map[string]string{
			"username": "pedro123",
			"password": "kastike",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("unknown user", func(t *testing.T) {
		status, _, _ := ts.post(t, "/api/login", map[string]string{
			"username": "nobody99",
			"password": "salsa",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}
