package service

import (
	"context"
	"sync"
	"time"

	"funnel-server/internal/models"
	"funnel-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const coalescerWriteTimeout = 10 * time.Second

// SaveCoalescer сглаживает поток сохранений из редактора: серия правок одной
// воронки схлопывается в одну запись в БД после паузы в interval. Побеждает
// последнее состояние (last-write-wins), промежуточные снимки отбрасываются.
type SaveCoalescer struct {
	repo     repository.FunnelRepository
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]*pendingSave
}

type pendingSave struct {
	timer  *time.Timer
	funnel *models.Funnel
}

func NewSaveCoalescer(repo repository.FunnelRepository, interval time.Duration, logger *zap.Logger) *SaveCoalescer {
	return &SaveCoalescer{
		repo:     repo,
		interval: interval,
		logger:   logger.Named("SaveCoalescer"),
		pending:  make(map[uuid.UUID]*pendingSave),
	}
}

// Schedule ставит снимок воронки в очередь на сохранение. Если по этой воронке
// уже есть отложенная запись, ее таймер перезапускается, а снимок заменяется
// новым. При неположительном interval запись выполняется немедленно.
func (c *SaveCoalescer) Schedule(ctx context.Context, funnel *models.Funnel) error {
	if c.interval <= 0 {
		return c.repo.Update(ctx, funnel)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ps, ok := c.pending[funnel.ID]; ok {
		ps.funnel = funnel
		ps.timer.Reset(c.interval)
		c.logger.Debug("Pending save replaced", zap.String("funnelID", funnel.ID.String()))
		return nil
	}

	id := funnel.ID
	ps := &pendingSave{funnel: funnel}
	ps.timer = time.AfterFunc(c.interval, func() {
		c.flushOne(id)
	})
	c.pending[id] = ps
	c.logger.Debug("Save scheduled", zap.String("funnelID", id.String()), zap.Duration("interval", c.interval))
	return nil
}

// flushOne выполняет отложенную запись по срабатыванию таймера.
func (c *SaveCoalescer) flushOne(id uuid.UUID) {
	c.mu.Lock()
	ps, ok := c.pending[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, id)
	funnel := ps.funnel
	c.mu.Unlock()

	// Таймер живет дольше HTTP-запроса, породившего сохранение,
	// поэтому используем собственный контекст с таймаутом.
	ctx, cancel := context.WithTimeout(context.Background(), coalescerWriteTimeout)
	defer cancel()

	if err := c.repo.Update(ctx, funnel); err != nil {
		c.logger.Error("Coalesced save failed", zap.String("funnelID", id.String()), zap.Error(err))
		return
	}
	c.logger.Debug("Coalesced save flushed", zap.String("funnelID", id.String()))
}

// Flush синхронно записывает все отложенные снимки. Вызывается при
// graceful shutdown, чтобы не потерять последние правки.
func (c *SaveCoalescer) Flush(ctx context.Context) {
	c.mu.Lock()
	snapshots := make([]*models.Funnel, 0, len(c.pending))
	for id, ps := range c.pending {
		ps.timer.Stop()
		snapshots = append(snapshots, ps.funnel)
		delete(c.pending, id)
	}
	c.mu.Unlock()

	for _, funnel := range snapshots {
		if err := c.repo.Update(ctx, funnel); err != nil {
			c.logger.Error("Flush of pending save failed", zap.String("funnelID", funnel.ID.String()), zap.Error(err))
		}
	}
	if len(snapshots) > 0 {
		c.logger.Info("Pending saves flushed", zap.Int("count", len(snapshots)))
	}
}
