package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/clients/redis"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// SettingsService is the read path every mutating operation consults for
// process-wide governance switches, legal hold above all. Values are cached
// in-process; updates write through to the database and broadcast an
// invalidation so sibling processes re-read.
type SettingsService interface {
	LegalHoldActive(ctx context.Context) (bool, error)
	SetLegalHold(dbc dbctx.Context, active bool, actor string) error
	ValidationStrict(ctx context.Context) (bool, error)
	VersionRetainYears(ctx context.Context) (int, error)
	Set(dbc dbctx.Context, key, value, actor string) error
	All(dbc dbctx.Context) ([]*types.Setting, error)
	StartInvalidationListener(ctx context.Context) error
}

type settingsService struct {
	db          *gorm.DB
	log         *logger.Logger
	settingRepo repos.SettingRepo
	audit       AuditService
	bus         redis.SettingsBus

	mu    sync.RWMutex
	cache map[string]string
}

func NewSettingsService(
	db *gorm.DB,
	baseLog *logger.Logger,
	settingRepo repos.SettingRepo,
	audit AuditService,
	bus redis.SettingsBus,
) SettingsService {
	return &settingsService{
		db:          db,
		log:         baseLog.With("service", "SettingsService"),
		settingRepo: settingRepo,
		audit:       audit,
		bus:         bus,
		cache:       make(map[string]string),
	}
}

// get reads through the cache. A store error propagates: callers must fail
// closed rather than act on a guessed value.
func (s *settingsService) get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	v, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return v, nil
	}

	setting, err := s.settingRepo.Get(dbctx.Context{Ctx: ctx}, key)
	if err != nil {
		s.log.Error("setting read failed", "key", key, "error", err)
		return "", fmt.Errorf("read setting %s: %w", key, err)
	}
	val := ""
	if setting != nil {
		val = setting.Value
	}
	s.mu.Lock()
	s.cache[key] = val
	s.mu.Unlock()
	return val, nil
}

func (s *settingsService) invalidate(key string) {
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
}

func (s *settingsService) LegalHoldActive(ctx context.Context) (bool, error) {
	v, err := s.get(ctx, types.SettingLegalHold)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (s *settingsService) SetLegalHold(dbc dbctx.Context, active bool, actor string) error {
	before := "unknown"
	if cur, err := s.LegalHoldActive(dbc.Ctx); err == nil {
		before = strconv.FormatBool(cur)
	}
	if err := s.Set(dbc, types.SettingLegalHold, strconv.FormatBool(active), actor); err != nil {
		return err
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Setting",
		Action:      "LEGAL_HOLD_CHANGED",
		Details:     fmt.Sprintf("legal hold set to %v", active),
		Before:      before,
		After:       strconv.FormatBool(active),
		PerformedBy: actor,
		Scope:       types.AuditScopeLegal,
	})
	return nil
}

func (s *settingsService) ValidationStrict(ctx context.Context) (bool, error) {
	v, err := s.get(ctx, types.SettingValidationStrict)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (s *settingsService) VersionRetainYears(ctx context.Context) (int, error) {
	v, err := s.get(ctx, types.SettingVersionRetainYears)
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, nil
	}
	return n, nil
}

func (s *settingsService) Set(dbc dbctx.Context, key, value, actor string) error {
	if _, err := s.settingRepo.Upsert(dbc, key, value, actor); err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	s.invalidate(key)
	if s.bus != nil {
		if err := s.bus.PublishInvalidation(dbc.Ctx, key); err != nil {
			s.log.Warn("settings invalidation publish failed", "key", key, "error", err)
		}
	}
	return nil
}

func (s *settingsService) All(dbc dbctx.Context) ([]*types.Setting, error) {
	return s.settingRepo.All(dbc)
}

// StartInvalidationListener subscribes to the settings channel when a bus is
// configured. Without one, the in-process cache is still correct for a single
// process because Set invalidates locally.
func (s *settingsService) StartInvalidationListener(ctx context.Context) error {
	if s.bus == nil {
		return nil
	}
	return s.bus.StartForwarder(ctx, func(key string) {
		s.log.Debug("settings invalidation received", "key", key)
		s.invalidate(key)
	})
}
