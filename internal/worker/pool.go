package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const purgeBatchSize = 100

// Pool периодически вычищает протухшие ключи идемпотентности.
// Несколько воркеров не мешают друг другу за счет SKIP LOCKED.
type Pool struct {
	pool     *pgxpool.Pool
	logger   *zap.Logger
	count    int
	interval time.Duration
	ttl      time.Duration
	wg       sync.WaitGroup
	stop     chan struct{}
}

func NewPool(pool *pgxpool.Pool, logger *zap.Logger, count int, interval, ttl time.Duration) *Pool {
	return &Pool{
		pool:     pool,
		logger:   logger,
		count:    count,
		interval: interval,
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting janitor pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	p.logger.Info("Stopping janitor pool...")
	close(p.stop)
	p.wg.Wait()
	p.logger.Info("Janitor pool stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := p.purgeBatch(ctx)
			if err != nil {
				p.logger.Error("janitor error", zap.Int("worker", id), zap.Error(err))
				continue
			}
			if purged > 0 {
				p.logger.Info("Purged expired idempotency keys",
					zap.Int("worker", id),
					zap.Int64("purged", purged),
				)
			}
		}
	}
}

func (p *Pool) purgeBatch(ctx context.Context) (int64, error) {
	cmd, err := p.pool.Exec(ctx, `
		DELETE FROM idempotency_keys
		WHERE (key, owner_id) IN (
			SELECT key, owner_id
			FROM idempotency_keys
			WHERE created_at < $1
			FOR UPDATE SKIP LOCKED
			LIMIT $2
		)
	`, time.Now().Add(-p.ttl), purgeBatchSize)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
