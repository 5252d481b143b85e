package postgres

import (
	"context"
	"errors"
	"fmt"

	"restaurant-pos/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const staffColumns = `id, store_id, username, display_name, pin_hash, active, created_at, updated_at`

// StaffRepo implements ports.StaffRepository.
type StaffRepo struct {
	pool Pool
}

// NewStaffRepo creates a new StaffRepo.
func NewStaffRepo(pool Pool) *StaffRepo {
	return &StaffRepo{pool: pool}
}

// GetByID fetches a staff member by ID. Returns nil when absent.
func (r *StaffRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Staff, error) {
	s, err := scanStaff(r.pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get staff by id: %w", err)
	}
	return s, nil
}

// GetByUsername fetches a staff member by login name. Returns nil when absent.
func (r *StaffRepo) GetByUsername(ctx context.Context, username string) (*domain.Staff, error) {
	s, err := scanStaff(r.pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE username = $1`, username))
	if err != nil {
		return nil, fmt.Errorf("get staff by username: %w", err)
	}
	return s, nil
}

func scanStaff(row pgx.Row) (*domain.Staff, error) {
	s := &domain.Staff{}
	err := row.Scan(&s.ID, &s.StoreID, &s.Username, &s.DisplayName, &s.PINHash, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
