package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hlumme/bloglist/internal/common"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("invalid authentication credentials")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, c *common.Cache) *UserService {
	return &UserService{
		m:  newUserModel(db),
		mb: mb,
		c:  c,
	}
}

// CreateUser creates a new user account and publishes a user.created event.
// The plaintext password is hashed before any write; it is never stored.
func (s *UserService) CreateUser(ctx context.Context, username, name, password string) (*User, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Username: username,
		Name:     name,
	}

	err := u.Password.set(password)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	event, err := json.Marshal(struct {
		Event    string `json:"event"`
		Username string `json:"username"`
	}{
		Event:    string(common.UserCreatedKey),
		Username: u.Username,
	})
	if err != nil {
		return nil, err
	}

	err = s.mb.Publish(ctx, event, common.UserCreatedKey, common.ActivityExchange)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// LoginUser verifies the credentials and issues a fresh access token.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*User, *Token, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	user, err := s.m.getUserByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, nil, ErrAuthenticationFailure
		default:
			return nil, nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrAuthenticationFailure
	}

	// opportunistic cleanup of stale tokens for this user
	if err := s.m.deleteExpiredTokens(ctx, user.ID); err != nil {
		return nil, nil, err
	}

	token, err := s.m.createToken(ctx, user.ID, AccessTokenTime)
	if err != nil {
		return nil, nil, err
	}

	return user, token, nil
}

// GetUserByAccessToken resolves the caller identity from a plain bearer
// token. Results are cached briefly keyed by the token hash.
func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash := hashToken(token)

	if s.c != nil {
		if cached, ok := s.c.Get(common.CacheKeyUserByAccessToken(hash)); ok {
			return cached.(*User), nil
		}
	}

	user, err := s.m.getUserByToken(ctx, hash)
	if err != nil {
		return nil, err
	}

	if s.c != nil {
		s.c.Set(common.CacheKeyUserByAccessToken(hash), user, userCacheTime)
	}

	return user, nil
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
