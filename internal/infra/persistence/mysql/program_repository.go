package mysql

import (
	"context"
	"database/sql"
	"errors"

	domprogram "github.com/arimulian/Revamp-Codeid-sales/internal/domain/program"
)

type ProgramRepository struct {
	db *sql.DB
}

func NewProgramRepository(db *sql.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

func (r *ProgramRepository) GetByID(ctx context.Context, id int64) (*domprogram.Program, error) {
	var p domprogram.Program
	err := r.db.QueryRowContext(ctx, `
        SELECT id, title, price
        FROM programs WHERE id = ?
    `, id).Scan(&p.ID, &p.Title, &p.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domprogram.ErrProgramNotFound
		}
		return nil, err
	}
	return &p, nil
}
