package worker

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/Claudio1052/Limpeza/internal/config"
	"github.com/Claudio1052/Limpeza/internal/domain"

	"github.com/rs/zerolog"
)

// SessionPruner removes expired entries and reports how many were dropped.
// The in-memory session store implements it; the Redis store expires keys on
// its own and needs no pruning.
type SessionPruner interface {
	PruneExpired() int
}

// retentionRule binds one directory to its retention window. Days <= 0 or an
// empty directory disables the rule.
type retentionRule struct {
	name string
	dir  string
	days int
}

// Janitor owns file retention: it periodically deletes export artifacts and
// database backups past their retention windows, and prunes expired sessions
// from stores that cannot expire entries themselves.
type Janitor struct {
	rules    []retentionRule
	sessions SessionPruner // may be nil
	clock    domain.Clock
	interval time.Duration
	logger   *zerolog.Logger
}

func NewJanitor(exports config.ExportConfig, backups config.BackupConfig, sessions SessionPruner, clock domain.Clock, logger *zerolog.Logger) *Janitor {
	return &Janitor{
		rules: []retentionRule{
			{name: "exports", dir: exports.Path, days: exports.RetentionDays},
			{name: "backups", dir: backups.StoragePath, days: backups.RetentionDays},
		},
		sessions: sessions,
		clock:    clock,
		interval: time.Hour,
		logger:   logger,
	}
}

// Start runs the cleanup loop until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info().Msg("Janitor started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("Janitor stopped")
			return
		case <-ticker.C:
			j.RunOnce()
		}
	}
}

// RunOnce performs a single cleanup pass.
func (j *Janitor) RunOnce() {
	for _, rule := range j.rules {
		if removed, err := j.pruneDir(rule); err != nil {
			j.logger.Error().Err(err).Str("rule", rule.name).Msg("Retention cleanup failed")
		} else if removed > 0 {
			j.logger.Info().Str("rule", rule.name).Int("removed", removed).Msg("Old files removed")
		}
	}

	if j.sessions != nil {
		if pruned := j.sessions.PruneExpired(); pruned > 0 {
			j.logger.Info().Int("pruned", pruned).Msg("Expired sessions pruned")
		}
	}
}

func (j *Janitor) pruneDir(rule retentionRule) (int, error) {
	if rule.days <= 0 || rule.dir == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(rule.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := j.clock.Now().AddDate(0, 0, -rule.days)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(rule.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			j.logger.Warn().Err(err).Str("file", path).Msg("Failed to remove file")
			continue
		}
		removed++
	}
	return removed, nil
}
