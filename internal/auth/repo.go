package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"animetrack/pkg/models"
)

// DemoUsername is a reserved identity that gets auto-provisioned on first use
// so the demo flow works without registration.
const (
	DemoUsername = "demo"
	DemoPassword = "demo1234"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) CreateUser(ctx context.Context, u models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, full_name, password_hash, disabled)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Username, u.FullName, u.PasswordHash, u.Disabled)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, full_name, password_hash, disabled, created_at
		FROM users
		WHERE username = ?
	`, username)

	var u models.User
	var created time.Time
	if err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.PasswordHash, &u.Disabled, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get by username: %w", err)
	}
	u.CreatedAt = created
	return &u, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, full_name, password_hash, disabled, created_at
		FROM users
		WHERE id = ?
	`, id)

	var u models.User
	var created time.Time
	if err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.PasswordHash, &u.Disabled, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	u.CreatedAt = created
	return &u, nil
}

// EnsureUser resolves username to a stored user, provisioning a row when none
// exists yet. The demo identity gets its real password; anyone else gets an
// unusable placeholder hash (they are expected to have registered already,
// this path only guarantees a foreign key target).
func (r *Repo) EnsureUser(ctx context.Context, username string) (*models.User, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	password := "!placeholder!"
	fullName := ""
	if username == DemoUsername {
		password = DemoPassword
		fullName = "Demo User"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	nu := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		FullName:     fullName,
		PasswordHash: string(hash),
	}
	if err := r.CreateUser(ctx, nu); err != nil {
		// lost a race: someone else provisioned the same username
		if existing, gerr := r.GetByUsername(ctx, username); gerr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return r.GetByUsername(ctx, username)
}
