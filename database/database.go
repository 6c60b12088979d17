package database

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// Counts is a snapshot of how many rows each content table holds.
type Counts struct {
	Models   int64
	Archives int64
	Admins   int64
}

type ModelSummary struct {
	ID           string
	Name         string
	Slug         string
	Category     string
	ArchiveCount int64
}

type ArchiveSummary struct {
	ID        string
	Title     string
	ModelID   string
	ModelSlug string
}

// PurgeResult reports what PurgeContent removed.
type PurgeResult struct {
	ArchivesDeleted int64
	ModelsDeleted   int64
}

// Inventory runs the operator reporting and cleanup queries directly against
// the underlying connection.
type Inventory struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

func NewInventory(gdb *gorm.DB) (*Inventory, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}

	var format sq.PlaceholderFormat = sq.Question
	if gdb.Dialector.Name() == DriverPostgres {
		format = sq.Dollar
	}

	return &Inventory{
		db:   sqlDB,
		psql: sq.StatementBuilder.PlaceholderFormat(format),
	}, nil
}

func (inv *Inventory) count(ctx context.Context, table string) (int64, error) {
	sqlStr, args, err := inv.psql.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query for %s: %w", table, err)
	}

	var n int64
	if err := inv.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// Counts returns the number of models, archives and admins.
func (inv *Inventory) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	var err error

	if c.Models, err = inv.count(ctx, "models"); err != nil {
		return Counts{}, err
	}
	if c.Archives, err = inv.count(ctx, "archives"); err != nil {
		return Counts{}, err
	}
	if c.Admins, err = inv.count(ctx, "admins"); err != nil {
		return Counts{}, err
	}
	return c, nil
}

// Models lists every model with the number of archives it owns, ordered by name.
func (inv *Inventory) Models(ctx context.Context) ([]ModelSummary, error) {
	queryBuilder := inv.psql.Select("m.id", "m.name", "m.slug", "m.category", "COUNT(a.id)").
		From("models m").
		LeftJoin("archives a ON a.model_id = m.id").
		GroupBy("m.id", "m.name", "m.slug", "m.category").
		OrderBy("m.name ASC", "m.id ASC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for model inventory: %w", err)
	}

	rows, err := inv.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query model inventory: %w", err)
	}
	defer rows.Close()

	var out []ModelSummary
	for rows.Next() {
		var s ModelSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.Category, &s.ArchiveCount); err != nil {
			return nil, fmt.Errorf("failed to scan model inventory row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Archives lists every archive with the slug of its owning model, newest first.
// Archives whose model no longer exists are reported with an empty slug.
func (inv *Inventory) Archives(ctx context.Context) ([]ArchiveSummary, error) {
	queryBuilder := inv.psql.Select("a.id", "a.title", "a.model_id", "COALESCE(m.slug, '')").
		From("archives a").
		LeftJoin("models m ON m.id = a.model_id").
		OrderBy("a.created_at DESC", "a.id ASC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for archive inventory: %w", err)
	}

	rows, err := inv.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive inventory: %w", err)
	}
	defer rows.Close()

	var out []ArchiveSummary
	for rows.Next() {
		var s ArchiveSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.ModelID, &s.ModelSlug); err != nil {
			return nil, fmt.Errorf("failed to scan archive inventory row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PurgeContent deletes every archive and then every model in one transaction.
// Admin accounts are left in place.
func (inv *Inventory) PurgeContent(ctx context.Context) (PurgeResult, error) {
	tx, err := inv.db.BeginTx(ctx, nil)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("failed to begin purge transaction: %w", err)
	}
	defer tx.Rollback()

	var res PurgeResult
	for _, step := range []struct {
		table string
		dest  *int64
	}{
		{"archives", &res.ArchivesDeleted},
		{"models", &res.ModelsDeleted},
	} {
		sqlStr, args, err := inv.psql.Delete(step.table).ToSql()
		if err != nil {
			return PurgeResult{}, fmt.Errorf("failed to build delete for %s: %w", step.table, err)
		}
		result, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return PurgeResult{}, fmt.Errorf("failed to delete %s: %w", step.table, err)
		}
		if *step.dest, err = result.RowsAffected(); err != nil {
			return PurgeResult{}, fmt.Errorf("failed to read rows affected for %s: %w", step.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return PurgeResult{}, fmt.Errorf("failed to commit purge: %w", err)
	}
	return res, nil
}
