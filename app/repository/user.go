package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vibast-solutions/ms-go-users/app/entity"
)

var ErrDuplicateEmail = errors.New("email already registered")

const userColumns = `id, email, password_hash, activation_link, status, registration_date, last_login_date`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, user entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, activation_link, status, registration_date, last_login_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.ActivationLink,
		string(user.Status),
		user.RegistrationDate,
		user.LastLoginDate,
	)
	if isDuplicateEntry(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE email = ?
	`
	return r.findOne(ctx, query, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE id = ?
	`
	return r.findOne(ctx, query, id)
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users ORDER BY registration_date, email
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// Update writes the mutable fields of user and returns the stored state.
func (r *UserRepository) Update(ctx context.Context, user entity.User) (entity.User, error) {
	query := `
		UPDATE users SET
			status = ?,
			last_login_date = ?
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query,
		string(user.Status),
		user.LastLoginDate,
		user.ID,
	); err != nil {
		return entity.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (int64, error) {
	query := `DELETE FROM users WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	user, err := scanUser(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func scanUser(scan rowScanner) (*entity.User, error) {
	user := &entity.User{}
	var status string
	if err := scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.ActivationLink,
		&status,
		&user.RegistrationDate,
		&user.LastLoginDate,
	); err != nil {
		return nil, err
	}

	user.Status = entity.UserStatus(status)
	if !user.Status.Valid() {
		user.Status = entity.UserStatusInactive
	}
	return user, nil
}
