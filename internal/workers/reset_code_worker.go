package workers

import (
	"context"
	"time"

	"portal_backend/internal/logger"
	"portal_backend/internal/repositories"

	"gorm.io/gorm"
)

// ResetCodeWorker периодически гасит просроченные коды сброса пароля,
// чтобы неиспользованные коды не лежали в базе после истечения срока.
type ResetCodeWorker struct {
	db       *gorm.DB
	userRepo repositories.UserRepository
	interval time.Duration
	now      func() time.Time
}

func NewResetCodeWorker(db *gorm.DB, userRepo repositories.UserRepository, interval time.Duration) *ResetCodeWorker {
	return &ResetCodeWorker{
		db:       db,
		userRepo: userRepo,
		interval: interval,
		now:      time.Now,
	}
}

// Start запускает очистку в фоне до отмены ctx. Нулевой интервал - воркер выключен.
func (w *ResetCodeWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		logger.Warn("Reset code worker disabled", "interval", w.interval)
		return
	}
	go w.run(ctx)
}

func (w *ResetCodeWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reset code worker stopped")
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				logger.Error("Error clearing expired reset codes", "error", err)
			}
		}
	}
}

// Sweep - один проход очистки, возвращает число затронутых аккаунтов
func (w *ResetCodeWorker) Sweep(ctx context.Context) (int64, error) {
	cleared, err := w.userRepo.ClearExpiredResetCodes(w.db.WithContext(ctx), w.now().UTC())
	if err != nil {
		return 0, err
	}
	if cleared > 0 {
		logger.Info("Cleared expired reset codes", "count", cleared)
	}
	return cleared, nil
}
