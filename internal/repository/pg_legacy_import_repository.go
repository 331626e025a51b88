package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Compile-time check
var _ LegacyImportRepository = (*pgLegacyImportRepository)(nil)

type pgLegacyImportRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewPgLegacyImportRepository(db DBTX, logger *zap.Logger) LegacyImportRepository {
	return &pgLegacyImportRepository{
		db:     db,
		logger: logger.Named("PgLegacyImportRepo"),
	}
}

// HasImported проверяет наличие отметки о выполненной миграции.
func (r *pgLegacyImportRepository) HasImported(ctx context.Context, ownerID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM legacy_imports WHERE owner_id = $1)`
	var exists bool

	err := r.db.QueryRow(ctx, query, ownerID).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check legacy import flag", zap.String("ownerID", ownerID), zap.Error(err))
		return false, fmt.Errorf("ошибка проверки флага миграции для %s: %w", ownerID, err)
	}
	return exists, nil
}

// MarkImported ставит отметку о миграции. ON CONFLICT DO NOTHING делает операцию идемпотентной.
func (r *pgLegacyImportRepository) MarkImported(ctx context.Context, ownerID string) error {
	query := `
        INSERT INTO legacy_imports (owner_id, imported_at)
        VALUES ($1, $2)
        ON CONFLICT (owner_id) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, ownerID, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to mark legacy import", zap.String("ownerID", ownerID), zap.Error(err))
		return fmt.Errorf("ошибка записи флага миграции для %s: %w", ownerID, err)
	}
	r.logger.Info("Legacy import marked", zap.String("ownerID", ownerID))
	return nil
}
