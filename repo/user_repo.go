package repo

import (
	"context"
	"fmt"

	"github.com/Tarun9121/project-lambok/db"
	"github.com/Tarun9121/project-lambok/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// userRepo
// ─────────────────────────────────────────────────────────────────────────────

type userRepo struct {
	q db.Querier
}

// NewUserRepo returns a UserRepository backed by q, which may be a *db.DB or
// a *db.Tx.
func NewUserRepo(q db.Querier) UserRepository {
	return &userRepo{q: q}
}

var _ UserRepository = (*userRepo)(nil)

const (
	userColumns = `id, name, email, password`

	sqlInsertUser = `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	sqlInsertUserWithID = `
		INSERT INTO users (id, name, email, password)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	sqlGetUserByID = `
		SELECT ` + userColumns + `
		FROM   users
		WHERE  id = $1`

	sqlGetUserByEmail = `
		SELECT ` + userColumns + `
		FROM   users
		WHERE  email = $1`

	sqlListUsers = `
		SELECT ` + userColumns + `
		FROM   users
		ORDER  BY id
		LIMIT  $1 OFFSET $2`

	sqlUpdateUser = `
		UPDATE users
		SET    name = $1, email = $2, password = $3
		WHERE  id = $4
		RETURNING ` + userColumns

	sqlDeleteUser = `DELETE FROM users WHERE id = $1`

	sqlCountUsers = `SELECT COUNT(*) FROM users`
)

// Insert stores u. A zero id lets the database assign one; the stored user is
// returned either way.
func (r *userRepo) Insert(ctx context.Context, u models.User) (models.User, error) {
	if u.ID() == 0 {
		return scanUser(r.q.QueryRow(ctx, sqlInsertUser, u.Name(), u.Email(), u.Password()))
	}
	return scanUser(r.q.QueryRow(ctx, sqlInsertUserWithID, u.ID(), u.Name(), u.Email(), u.Password()))
}

// GetByID returns db.ErrNotFound when no user has id.
func (r *userRepo) GetByID(ctx context.Context, id int) (models.User, error) {
	return scanUser(r.q.QueryRow(ctx, sqlGetUserByID, id))
}

// GetByEmail returns db.ErrNotFound when no user has email.
func (r *userRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.q.QueryRow(ctx, sqlGetUserByEmail, email))
}

// List returns a page of users ordered by id.
func (r *userRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	rows, err := r.q.Query(ctx, sqlListUsers, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("repo/user: list: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update loads the user, lets modify adjust a builder seeded from it and
// writes the result back. The id cannot change; fields modify leaves alone
// keep their stored values.
func (r *userRepo) Update(ctx context.Context, id int, modify func(*models.UserBuilder)) (models.User, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	b := current.ToBuilder()
	if modify != nil {
		modify(b)
	}
	next := b.SetID(id).Build()
	if next.Equal(current) {
		return current, nil
	}

	return scanUser(r.q.QueryRow(ctx, sqlUpdateUser, next.Name(), next.Email(), next.Password(), id))
}

// Delete returns db.ErrNotFound when nothing was deleted.
func (r *userRepo) Delete(ctx context.Context, id int) error {
	res, err := r.q.Exec(ctx, sqlDeleteUser, id)
	if err != nil {
		return fmt.Errorf("repo/user: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo/user: delete: %w", err)
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

// BatchInsert stores users through prepared statements. Like Insert it keeps
// non-zero ids and lets the database assign the rest. Run it inside
// db.ExecTx for all-or-nothing semantics.
func (r *userRepo) BatchInsert(ctx context.Context, users []models.User) ([]models.User, error) {
	if len(users) == 0 {
		return nil, nil
	}

	auto, err := r.q.Prepare(ctx, sqlInsertUser)
	if err != nil {
		return nil, fmt.Errorf("repo/user: prepare: %w", err)
	}
	defer auto.Close()

	withID, err := r.q.Prepare(ctx, sqlInsertUserWithID)
	if err != nil {
		return nil, fmt.Errorf("repo/user: prepare: %w", err)
	}
	defer withID.Close()

	stored := make([]models.User, 0, len(users))
	for _, u := range users {
		var row *db.Row
		if u.ID() == 0 {
			row = auto.QueryRow(ctx, u.Name(), u.Email(), u.Password())
		} else {
			row = withID.QueryRow(ctx, u.ID(), u.Name(), u.Email(), u.Password())
		}
		saved, err := scanUser(row)
		if err != nil {
			return nil, err
		}
		stored = append(stored, saved)
	}
	return stored, nil
}

// Count returns the number of stored users.
func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, sqlCountUsers).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo/user: count: %w", err)
	}
	return n, nil
}

// scanUser maps one row onto a fresh builder.
func scanUser(row scanner) (models.User, error) {
	var (
		id                    int
		name, email, password string
	)
	if err := row.Scan(&id, &name, &email, &password); err != nil {
		return models.User{}, fmt.Errorf("repo/user: %w", err)
	}
	return models.NewUserBuilder().
		SetID(id).
		SetName(name).
		SetEmail(email).
		SetPassword(password).
		Build(), nil
}
