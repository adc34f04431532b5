package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
)

type CategorySQLite struct {
	db *sql.DB
}

func NewCategorySQLite(db *sql.DB) *CategorySQLite {
	return &CategorySQLite{db: db}
}

var _ CategoryRepo = (*CategorySQLite)(nil)

const (
	selectCategoriesSQL     = `SELECT id, name, color, icon, created_at FROM categories ORDER BY name`
	selectCategoryByIDSQL   = `SELECT id, name, color, icon, created_at FROM categories WHERE id = ?`
	selectCategoryByNameSQL = `SELECT id, name, color, icon, created_at FROM categories WHERE name = ?`
	insertCategorySQL       = `INSERT INTO categories (id, name, color, icon, created_at) VALUES (?, ?, ?, ?, ?)`
	updateCategorySQL       = `UPDATE categories SET name=?, color=?, icon=? WHERE id=?`
	deleteCategorySQL       = `DELETE FROM categories WHERE id = ?`
)

func scanCategory(row interface{ Scan(dest ...any) error }) (models.Category, error) {
	var (
		c     models.Category
		color sql.NullString
		icon  sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &color, &icon, &c.CreatedAt); err != nil {
		return models.Category{}, err
	}
	c.Color = color.String
	c.Icon = icon.String
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (r *CategorySQLite) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, selectCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches a category. Returns (nil, nil) if not found.
func (r *CategorySQLite) GetByID(ctx context.Context, id string) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, selectCategoryByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select category %q: %w", id, err)
	}
	return &c, nil
}

// GetByName fetches a category by its unique name. Returns (nil, nil) if not found.
func (r *CategorySQLite) GetByName(ctx context.Context, name string) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, selectCategoryByNameSQL, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select category by name %q: %w", name, err)
	}
	return &c, nil
}

func (r *CategorySQLite) Create(ctx context.Context, c models.Category) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, insertCategorySQL, c.ID, c.Name, c.Color, c.Icon, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("insert category %q: %w", c.Name, err)
	}
	return nil
}

func (r *CategorySQLite) Update(ctx context.Context, c models.Category) error {
	_, err := r.db.ExecContext(ctx, updateCategorySQL, c.Name, c.Color, c.Icon, c.ID)
	if err != nil {
		return fmt.Errorf("update category %q: %w", c.ID, err)
	}
	return nil
}

// Delete removes a category; devices referencing it are detached via
// ON DELETE SET NULL.
func (r *CategorySQLite) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteCategorySQL, id)
	if err != nil {
		return fmt.Errorf("delete category %q: %w", id, err)
	}
	return nil
}
