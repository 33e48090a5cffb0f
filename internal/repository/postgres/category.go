package postgres

import (
	"context"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository"
)

type categoryRepository struct {
	db DBTX
}

func NewCategoryRepository(db DBTX) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	err := r.db.QueryRowContext(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, c.Name).Scan(&c.ID)
	return translateError(err, "category", 0)
}

func (r *categoryRepository) GetByID(ctx context.Context, id int32) (*domain.Category, error) {
	c := &domain.Category{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, translateError(err, "category", id)
	}
	return c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) Update(ctx context.Context, c *domain.Category) error {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name=$1 WHERE id=$2`, c.Name, c.ID)
	if err != nil {
		return translateError(err, "category", c.ID)
	}
	return notFoundIfNone(res, "category", c.ID)
}
