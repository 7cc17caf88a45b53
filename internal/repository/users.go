package repository

import (
	"context"
	"database/sql"

	"tixbay/internal/database"
	"tixbay/internal/models"
)

type PostgresUserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Upsert records the account on first login and refreshes
// last_login_at afterwards. The role is never downgraded here: it is
// set to customer only on first insert.
func (r *PostgresUserRepository) Upsert(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}

	query := `
		INSERT INTO users (email, name, photo_url, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
		    photo_url = COALESCE(EXCLUDED.photo_url, users.photo_url),
		    last_login_at = NOW()
		RETURNING role, created_at, last_login_at`

	return r.db.QueryRowContext(ctx, query,
		user.Email,
		user.Name,
		user.PhotoURL,
		user.Role,
	).Scan(&user.Role, &user.CreatedAt, &user.LastLoginAt)
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT email, name, photo_url, role, created_at, last_login_at
		FROM users
		WHERE email = $1`

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.Email,
		&user.Name,
		&user.PhotoURL,
		&user.Role,
		&user.CreatedAt,
		&user.LastLoginAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT email, name, photo_url, role, created_at, last_login_at
		FROM users
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.Email,
			&user.Name,
			&user.PhotoURL,
			&user.Role,
			&user.CreatedAt,
			&user.LastLoginAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *PostgresUserRepository) SetRole(ctx context.Context, email string, role models.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = $2 WHERE email = $1`, email, role)
	if err != nil {
		return err
	}
	return requireRow(res)
}
