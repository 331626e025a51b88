package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"funnel-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check
var _ FunnelRepository = (*pgFunnelRepository)(nil)

type pgFunnelRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewPgFunnelRepository(db DBTX, logger *zap.Logger) FunnelRepository {
	return &pgFunnelRepository{
		db:     db,
		logger: logger.Named("PgFunnelRepo"),
	}
}

// funnelRow - промежуточное представление строки funnels: JSONB читается как байты.
type funnelRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	OwnerID   string    `db:"owner_id"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row *funnelRow) toModel() (*models.Funnel, error) {
	funnel := &models.Funnel{
		ID:        row.ID,
		Name:      row.Name,
		OwnerID:   row.OwnerID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Data, &funnel.Data); err != nil {
		return nil, fmt.Errorf("ошибка десериализации данных воронки %s: %w", row.ID, err)
	}
	return funnel, nil
}

// Create - Реализация метода Create
func (r *pgFunnelRepository) Create(ctx context.Context, funnel *models.Funnel) error {
	query := `
        INSERT INTO funnels
            (id, name, owner_id, data, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6)
    `
	logFields := []zap.Field{zap.String("funnelID", funnel.ID.String()), zap.String("ownerID", funnel.OwnerID)}
	r.logger.Debug("Creating funnel", logFields...)

	dataJSON, err := json.Marshal(funnel.Data)
	if err != nil {
		r.logger.Error("Failed to marshal funnel data", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка сериализации данных воронки: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		funnel.ID,
		funnel.Name,
		funnel.OwnerID,
		dataJSON,
		funnel.CreatedAt,
		funnel.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create funnel", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка создания воронки: %w", err)
	}
	r.logger.Info("Funnel created successfully", logFields...)
	return nil
}

// GetByID - Реализация метода GetByID (с проверкой владельца)
func (r *pgFunnelRepository) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*models.Funnel, error) {
	query := `
        SELECT id, name, owner_id, data, created_at, updated_at
        FROM funnels
        WHERE id = $1 AND owner_id = $2
    `
	logFields := []zap.Field{zap.String("funnelID", id.String()), zap.String("ownerID", ownerID)}
	r.logger.Debug("Getting funnel by ID", logFields...)

	row := &funnelRow{}
	err := r.db.QueryRow(ctx, query, id, ownerID).Scan(
		&row.ID, &row.Name, &row.OwnerID, &row.Data, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Funnel not found by ID for user", logFields...)
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get funnel by ID", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка получения воронки %s: %w", id, err)
	}
	return row.toModel()
}

// GetByIDPublic - чтение без проверки владельца (для плеера)
func (r *pgFunnelRepository) GetByIDPublic(ctx context.Context, id uuid.UUID) (*models.Funnel, error) {
	query := `
        SELECT id, name, owner_id, data, created_at, updated_at
        FROM funnels
        WHERE id = $1
    `
	logFields := []zap.Field{zap.String("funnelID", id.String())}
	r.logger.Debug("Getting funnel by ID (public)", logFields...)

	row := &funnelRow{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.Name, &row.OwnerID, &row.Data, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Funnel not found by ID (public)", logFields...)
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get funnel by ID (public)", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка получения воронки %s (public): %w", id, err)
	}
	return row.toModel()
}

// Update - полная перезапись имени и данных воронки
func (r *pgFunnelRepository) Update(ctx context.Context, funnel *models.Funnel) error {
	query := `
        UPDATE funnels SET
            name = $1, data = $2, updated_at = $3
        WHERE id = $4 AND owner_id = $5
    `
	logFields := []zap.Field{zap.String("funnelID", funnel.ID.String()), zap.String("ownerID", funnel.OwnerID)}
	r.logger.Debug("Updating funnel", logFields...)

	dataJSON, err := json.Marshal(funnel.Data)
	if err != nil {
		r.logger.Error("Failed to marshal funnel data", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка сериализации данных воронки: %w", err)
	}

	commandTag, err := r.db.Exec(ctx, query,
		funnel.Name, dataJSON, time.Now().UTC(), funnel.ID, funnel.OwnerID,
	)
	if err != nil {
		r.logger.Error("Failed to update funnel", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка обновления воронки %s: %w", funnel.ID, err)
	}
	if commandTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent or unauthorized funnel", logFields...)
		return models.ErrNotFound
	}
	r.logger.Info("Funnel updated successfully", logFields...)
	return nil
}

// ListByOwner возвращает все воронки пользователя, новые первыми.
func (r *pgFunnelRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Funnel, error) {
	query := `
        SELECT id, name, owner_id, data, created_at, updated_at
        FROM funnels
        WHERE owner_id = $1
        ORDER BY created_at DESC, id DESC
    `
	logFields := []zap.Field{zap.String("ownerID", ownerID)}
	r.logger.Debug("Listing funnels by owner", logFields...)

	var rows []funnelRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, ownerID); err != nil {
		r.logger.Error("Failed to query funnels by owner", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка получения списка воронок из БД: %w", err)
	}

	funnels, err := rowsToModels(rows)
	if err != nil {
		r.logger.Error("Failed to decode funnel rows", append(logFields, zap.Error(err))...)
		return nil, err
	}

	r.logger.Debug("Funnels listed successfully", append(logFields, zap.Int("count", len(funnels)))...)
	return funnels, nil
}

// ListAll - список всех воронок для админского обзора.
func (r *pgFunnelRepository) ListAll(ctx context.Context) ([]models.Funnel, error) {
	query := `
        SELECT id, name, owner_id, data, created_at, updated_at
        FROM funnels
        ORDER BY created_at DESC, id DESC
    `
	r.logger.Debug("Listing all funnels")

	var rows []funnelRow
	if err := pgxscan.Select(ctx, r.db, &rows, query); err != nil {
		r.logger.Error("Failed to query all funnels", zap.Error(err))
		return nil, fmt.Errorf("ошибка получения полного списка воронок из БД: %w", err)
	}

	funnels, err := rowsToModels(rows)
	if err != nil {
		r.logger.Error("Failed to decode funnel rows", zap.Error(err))
		return nil, err
	}

	r.logger.Debug("All funnels listed successfully", zap.Int("count", len(funnels)))
	return funnels, nil
}

// Delete
func (r *pgFunnelRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	query := `DELETE FROM funnels WHERE id = $1 AND owner_id = $2`
	logFields := []zap.Field{
		zap.String("funnelID", id.String()),
		zap.String("ownerID", ownerID),
	}
	r.logger.Debug("Deleting funnel", logFields...)

	commandTag, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		r.logger.Error("Failed to delete funnel", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка удаления воронки %s: %w", id, err)
	}

	if commandTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to delete non-existent or unauthorized funnel", logFields...)
		return models.ErrNotFound
	}

	r.logger.Info("Funnel deleted successfully", logFields...)
	return nil
}

func rowsToModels(rows []funnelRow) ([]models.Funnel, error) {
	funnels := make([]models.Funnel, 0, len(rows))
	for i := range rows {
		funnel, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		funnels = append(funnels, *funnel)
	}
	return funnels, nil
}
