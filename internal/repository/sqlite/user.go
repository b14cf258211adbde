package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garasiku/servicebook/internal/apperror"
	"github.com/garasiku/servicebook/internal/model"
	"github.com/garasiku/servicebook/internal/repository"
)

// UserRepo implements repository.UserRepository on the shared connection
// pool.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a UserRepo.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Compile-time check that *UserRepo implements the interface.
var _ repository.UserRepository = (*UserRepo)(nil)

// userColumns maps patch-schema field names onto columns for the uniqueness
// probe. Only whitelisted fields are queryable; anything else is a
// programming error, not user input reaching SQL.
var userColumns = map[string]string{
	"name":  "name",
	"email": "email",
}

// Create inserts a new user. A UNIQUE violation on name or email surfaces
// as apperror.Conflict: it means a concurrent request won the race after
// the uniqueness guard's pre-check passed.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, photo, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash, user.Role, user.Photo,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "Username or email is already registered.")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Name, err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	return nil
}

// GetByID retrieves a user. Returns apperror.ErrNotFound if absent.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, photo, created_at, updated_at
		 FROM users WHERE id = ?`, id))
}

// GetByEmail retrieves a user by email, for login.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, photo, created_at, updated_at
		 FROM users WHERE email = ?`, email))
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Photo,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("sqlite: scanning user: %w", err)
	}
	return &u, nil
}

// Update persists the user's mutable fields.
func (r *UserRepo) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, password_hash = ?, photo = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name, user.Email, user.PasswordHash, user.Photo, user.UpdatedAt, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "Username or email is already registered.")
		}
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}
	return requireRow(res, "User")
}

// Delete removes the user and, through the FK cascade, every vehicle and
// child resource they own.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	return requireRow(res, "User")
}

// ExistsByField implements the uniqueness probe for user fields.
func (r *UserRepo) ExistsByField(ctx context.Context, field, value string, excludeID int64) (bool, error) {
	column, ok := userColumns[field]
	if !ok {
		return false, fmt.Errorf("sqlite: %q is not a unique user field", field)
	}

	var count int
	err := r.db.conn.QueryRowContext(ctx,
		// Column name comes from the whitelist above, never from input.
		fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE %s = ? AND id != ?`, column),
		value, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: probing users.%s: %w", column, err)
	}
	return count > 0, nil
}

// requireRow converts a zero-row UPDATE/DELETE into not-found.
func requireRow(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource)
	}
	return nil
}
