package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rolesmith/rolesmith/internal/role"
	"github.com/rolesmith/rolesmith/internal/store"
)

// ErrCatalogRoleNotFound is returned when a catalog entry does not exist.
var ErrCatalogRoleNotFound = errors.New("role not found in catalog")

// CatalogEntry is a catalog listing row: metadata without the full document.
type CatalogEntry struct {
	Slug        string
	Name        string
	Description string
	PushedBy    string
	UpdatedAt   time.Time
}

// CatalogRepository stores role documents in the shared catalog
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Put upserts a role document keyed by its slugified name.
func (r *CatalogRepository) Put(ctx context.Context, d *role.Definition, pushedBy string) error {
	doc, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode role document: %w", err)
	}

	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO role_documents (slug, name, description, document, pushed_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (slug) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    document = EXCLUDED.document,
		    pushed_by = EXCLUDED.pushed_by,
		    updated_at = now()
	`, store.Slug(d.Name), d.Name, d.Description, doc, pushedBy)

	if err != nil {
		return fmt.Errorf("failed to push role to catalog: %w", err)
	}
	return nil
}

// Get retrieves a role document by name (slug or display name form).
func (r *CatalogRepository) Get(ctx context.Context, name string) (*role.Definition, error) {
	var doc []byte
	err := r.db.pool.QueryRow(ctx, `
		SELECT document FROM role_documents WHERE slug = $1
	`, store.Slug(name)).Scan(&doc)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogRoleNotFound, name)
		}
		return nil, fmt.Errorf("failed to pull role from catalog: %w", err)
	}

	var d role.Definition
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, fmt.Errorf("invalid role document in catalog: %w", err)
	}
	return &d, nil
}

// List returns catalog metadata for all stored roles, sorted by slug.
func (r *CatalogRepository) List(ctx context.Context) ([]CatalogEntry, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT slug, name, description, pushed_by, updated_at
		FROM role_documents
		ORDER BY slug
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.Slug, &e.Name, &e.Description, &e.PushedBy, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes a role document from the catalog.
func (r *CatalogRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM role_documents WHERE slug = $1
	`, store.Slug(name))
	if err != nil {
		return fmt.Errorf("failed to delete role from catalog: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrCatalogRoleNotFound, name)
	}
	return nil
}
