// Package account covers sign-up, sign-in and sign-out against the store.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oggyb/muzz-chat/internal/credential"
	"github.com/oggyb/muzz-chat/internal/db"
	svcErr "github.com/oggyb/muzz-chat/internal/errors"
	"github.com/oggyb/muzz-chat/internal/gateway"
	"github.com/oggyb/muzz-chat/internal/session"
)

// ErrInvalidCredentials is returned by SignIn for an unknown username or a
// wrong password. The two cases are not told apart.
var ErrInvalidCredentials = errors.New("invalid username or password")

var validate *validator.Validate

func init() {
	validate = validator.New()
	// report fields by their json name
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// SignUpInput is what a new user submits.
type SignUpInput struct {
	Username string    `json:"username" validate:"required,min=3,max=64"`
	Email    string    `json:"email" validate:"required,email,max=128"`
	Password string    `json:"password" validate:"required,min=6"`
	Gender   db.Gender `json:"gender" validate:"required,oneof=male female"`
}

type Service struct {
	gw     *gateway.Gateway
	hasher *credential.Hasher
	log    *slog.Logger
}

func New(gw *gateway.Gateway, hasher *credential.Hasher, log *slog.Logger) *Service {
	return &Service{gw: gw, hasher: hasher, log: log}
}

// SignUp validates in, rejects a taken username or email and stores the new
// user. Validation failures never reach the store.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (db.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return db.User{}, svcErr.FromValidator(err)
	}

	if err := s.ensureFree(ctx, "username", in.Username); err != nil {
		return db.User{}, err
	}
	if err := s.ensureFree(ctx, "email", in.Email); err != nil {
		return db.User{}, err
	}

	created, err := gateway.Insert(ctx, s.gw, db.TableUsers, db.User{
		Username:     in.Username,
		Email:        in.Email,
		Gender:       in.Gender,
		PasswordHash: s.hasher.Hash(in.Password),
	})
	if err != nil {
		// lost a race with a concurrent sign-up
		if errors.Is(err, svcErr.ErrConstraint) {
			return db.User{}, svcErr.Validation("username", "is already in use")
		}
		return db.User{}, fmt.Errorf("create user: %w", err)
	}

	u := created[0]
	u.PasswordHash = ""
	s.log.Info("user signed up", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *Service) ensureFree(ctx context.Context, column, value string) error {
	_, err := gateway.SelectOne[db.User](ctx, s.gw, gateway.Query{
		Table:   db.TableUsers,
		Columns: []string{"id"},
		Where:   []gateway.Filter{gateway.Eq(column, value)},
	})
	switch {
	case errors.Is(err, svcErr.ErrNotFound):
		return nil
	case err == nil, errors.Is(err, svcErr.ErrAmbiguous):
		return svcErr.Validation(column, "is already in use")
	default:
		return fmt.Errorf("check %s: %w", column, err)
	}
}

// SignIn looks the user up by username and password digest and, on success,
// makes it the session's current user.
func (s *Service) SignIn(ctx context.Context, sess *session.Session, username, password string) (db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return db.User{}, svcErr.Validation("username", "is required")
	}
	if password == "" {
		return db.User{}, svcErr.Validation("password", "is required")
	}

	u, err := gateway.SelectOne[db.User](ctx, s.gw, gateway.Query{
		Table:   db.TableUsers,
		Columns: db.UserColumns,
		Where: []gateway.Filter{
			gateway.Eq("username", username),
			gateway.Eq("password_hash", s.hasher.Hash(password)),
		},
	})
	if err != nil {
		if errors.Is(err, svcErr.ErrNotFound) {
			return db.User{}, ErrInvalidCredentials
		}
		return db.User{}, fmt.Errorf("sign in: %w", err)
	}

	if sess != nil {
		sess.Set(&u)
	}
	return u, nil
}

// SignOut clears the session.
func (s *Service) SignOut(sess *session.Session) {
	sess.Clear()
}

// FindUser loads the public columns of one user. A missing user is a
// NotFound StoreError.
func FindUser(ctx context.Context, gw *gateway.Gateway, id uint64) (db.User, error) {
	return gateway.SelectOne[db.User](ctx, gw, gateway.Query{
		Table:   db.TableUsers,
		Columns: db.UserColumns,
		Where:   []gateway.Filter{gateway.Eq("id", id)},
	})
}
