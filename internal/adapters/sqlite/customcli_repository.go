package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/agentboard/internal/domain"
)

type CustomCLIRepository struct {
	db *sql.DB
}

func NewCustomCLIRepository(db *sql.DB) *CustomCLIRepository {
	return &CustomCLIRepository{db: db}
}

func (r *CustomCLIRepository) Save(ctx context.Context, c *domain.CustomCLI) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO custom_clis (id, name, icon, color, config_path, skills_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon,
			color = excluded.color,
			config_path = excluded.config_path,
			skills_path = excluded.skills_path`,
		c.ID, c.Name, c.Icon, c.Color, c.ConfigPath, c.SkillsPath, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save custom CLI: %w", err)
	}
	return nil
}

func (r *CustomCLIRepository) GetByID(ctx context.Context, id string) (*domain.CustomCLI, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, icon, color, config_path, skills_path, created_at FROM custom_clis WHERE id = ?`, id)

	var c domain.CustomCLI
	err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.ConfigPath, &c.SkillsPath, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get custom CLI: %w", err)
	}
	return &c, nil
}

func (r *CustomCLIRepository) GetAll(ctx context.Context) ([]*domain.CustomCLI, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, icon, color, config_path, skills_path, created_at FROM custom_clis ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom CLIs: %w", err)
	}
	defer rows.Close()

	var clis []*domain.CustomCLI
	for rows.Next() {
		var c domain.CustomCLI
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.ConfigPath, &c.SkillsPath, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan custom CLI: %w", err)
		}
		clis = append(clis, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate custom CLIs: %w", err)
	}
	return clis, nil
}

func (r *CustomCLIRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM custom_clis WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete custom CLI: %w", err)
	}
	return nil
}
