package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

const userColumns = "id, email, name, role, password_hash, created_at, updated_at"

type userRow struct {
	ID           int       `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row userRow) user() user.User {
	return user.User{
		ID:           row.ID,
		Email:        row.Email,
		Name:         row.Name,
		Role:         row.Role,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func usersFromRows(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user())
	}
	return users
}

type userRepository struct {
	db core.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO users (email, name, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := sqlx.GetContext(ctx, repo.db, &usr.ID, q,
		usr.Email, usr.Name, usr.Role, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt)
	if err != nil {
		return user.User{}, errors.Wrap(trapConstraintErr(err), "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE users SET email = $1, name = $2, role = $3, password_hash = $4, updated_at = $5 WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, q, usr.Email, usr.Name, usr.Role, usr.PasswordHash, usr.UpdatedAt, usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(trapConstraintErr(err), "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, core.NewNotFoundError("user", usr.ID)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, repo.db, &row, "SELECT "+userColumns+" FROM users WHERE id = $1", id); err != nil {
		return user.User{}, trapNoRowsErr(err, core.NewNotFoundError("user", id))
	}
	return row.user(), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, repo.db, &row, "SELECT "+userColumns+" FROM users WHERE email = $1", email); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound)
	}
	return row.user(), nil
}

func (repo *userRepository) GetUsersByID(ctx context.Context, ids ...int) ([]user.User, error) {
	if len(ids) == 0 {
		return []user.User{}, nil
	}
	var rows []userRow
	q := "SELECT " + userColumns + " FROM users WHERE id IN (?) ORDER BY id"
	if err := selectIn(ctx, repo.db, &rows, q, core.UniqueInts(ids)); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	return usersFromRows(rows), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	var w where
	if filter.Search != "" {
		w.add("(name ILIKE $%[1]d OR email ILIKE $%[1]d)", "%"+filter.Search+"%")
	}
	if len(filter.Roles) > 0 {
		w.add("role = ANY($%[1]d)", pq.Array(filter.Roles))
	}

	orderBy := core.OrderBy(ordering, "id", "name", "email", "role", "created_at")
	if orderBy == "" {
		orderBy = "id ASC"
	}

	var rows []userRow
	q := "SELECT " + userColumns + " FROM users" + w.String() + " ORDER BY " + orderBy
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	return usersFromRows(rows), nil
}
