package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/staffhub/internal/models"
)

type EmployeeStore struct {
	pool *pgxpool.Pool
}

func NewEmployeeStore(pool *pgxpool.Pool) *EmployeeStore {
	return &EmployeeStore{pool: pool}
}

const employeeColumns = `id, tenant_id, name, email, role, created_at`

func scanEmployee(row pgx.Row, e *models.Employee) error {
	return row.Scan(
		&e.ID,
		&e.TenantID,
		&e.Name,
		&e.Email,
		&e.Role,
		&e.CreatedAt,
	)
}

func (s *EmployeeStore) GetByID(ctx context.Context, tenantID, employeeID uuid.UUID) (*models.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND tenant_id = $2`

	var e models.Employee
	if err := scanEmployee(s.pool.QueryRow(ctx, query, employeeID, tenantID), &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}

func (s *EmployeeStore) GetMany(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Employee, error) {
	out := make(map[uuid.UUID]models.Employee, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE tenant_id = $1 AND id = ANY($2::uuid[])`

	rows, err := s.pool.Query(ctx, query, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("get employees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Employee
		if err := scanEmployee(rows, &e); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return out, nil
}

func (s *EmployeeStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE tenant_id = $1
		ORDER BY name, id`

	rows, err := s.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]models.Employee, 0)
	for rows.Next() {
		var e models.Employee
		if err := scanEmployee(rows, &e); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return employees, nil
}
