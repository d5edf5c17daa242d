package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/uplist/uplist/internal/board/domain"
)

type adminsRepo struct {
	db dbtx
}

const adminColumns = `id, email, display_name, role, password_hash, created_at, updated_at`

func scanAdmin(row interface{ Scan(...any) error }) (domain.Admin, error) {
	var a domain.Admin
	err := row.Scan(&a.ID, &a.Email, &a.DisplayName, &a.Role, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *adminsRepo) GetAdminByID(ctx context.Context, id string) (domain.Admin, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = ?`, id)
	a, err := scanAdmin(row)
	if err != nil {
		return domain.Admin{}, mapNotFound(err)
	}
	return a, nil
}

func (r *adminsRepo) GetAdminByEmail(ctx context.Context, email string) (domain.Admin, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = ?`, strings.ToLower(email))
	a, err := scanAdmin(row)
	if err != nil {
		return domain.Admin{}, mapNotFound(err)
	}
	return a, nil
}

func (r *adminsRepo) CreateAdmin(ctx context.Context, a domain.Admin) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, display_name, role, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, strings.ToLower(a.Email), a.DisplayName, a.Role, a.PasswordHash, a.CreatedAt, a.UpdatedAt)
	return mapConstraint(err)
}

func (r *adminsRepo) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+adminColumns+` FROM admins ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []domain.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *adminsRepo) UpdatePasswordHash(ctx context.Context, adminID string, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE admins SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), adminID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *adminsRepo) DeleteAdmin(ctx context.Context, adminID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, adminID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *adminsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
