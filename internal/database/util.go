package database

import (
	"context"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PublicTables lists the tables of the public schema.
func (d *DBinstanceStruct) PublicTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := d.WithContext(ctx).
		Raw(`SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename`).
		Scan(&tables).Error
	if err != nil {
		return nil, errors.Wrap(err, "list public tables")
	}
	return tables, nil
}

// DropAllTables drops every table of the public schema and returns the dropped names.
func (d *DBinstanceStruct) DropAllTables(ctx context.Context) ([]string, error) {
	tables, err := d.PublicTables(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if err := d.WithContext(ctx).Exec("DROP TABLE IF EXISTS " + pq.QuoteIdentifier(t) + " CASCADE").Error; err != nil {
			return nil, errors.Wrapf(err, "drop table %s", t)
		}
		zap.L().Info("dropped table", zap.String("table", t))
	}
	return tables, nil
}
