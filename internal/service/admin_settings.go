package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/repository"
	"github.com/brinaregal/brina/internal/security"
)

// SettingCategorySecurity groups the login protection settings.
const SettingCategorySecurity = "security"

// ErrUnknownSetting is returned when saving a key outside the known set.
var ErrUnknownSetting = errors.New("service: unknown setting / 未知的设置项")

// settingKind 描述设置值的类型，用于保存前规范化。
type settingKind int

const (
	settingBool settingKind = iota
	settingPositiveInt
)

var knownSettings = map[string]struct {
	category string
	kind     settingKind
}{
	SettingPasswordLimitEnable: {SettingCategorySecurity, settingBool},
	SettingPasswordLimitCount:  {SettingCategorySecurity, settingPositiveInt},
	SettingPasswordLimitExpire: {SettingCategorySecurity, settingPositiveInt},
}

// AdminSettingsService 负责后台设置读写。
type AdminSettingsService interface {
	GetByCategory(ctx context.Context, category string) (map[string]string, error)
	SaveSettings(ctx context.Context, category string, settings map[string]string, actor string) error
	Get(ctx context.Context, key string) (string, error)
}

// AdminSettingsOptions 注入设置服务依赖。
type AdminSettingsOptions struct {
	Settings repository.SettingRepository
	Audit    security.Recorder
	Now      func() time.Time
}

type adminSettingsService struct {
	settings repository.SettingRepository
	audit    security.Recorder
	now      func() time.Time
}

// NewAdminSettingsService 构建设置服务。
func NewAdminSettingsService(opts AdminSettingsOptions) AdminSettingsService {
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &adminSettingsService{
		settings: opts.Settings,
		audit:    opts.Audit,
		now:      nowFn,
	}
}

// GetByCategory 按分类读取设置，返回 key/value 映射。
func (s *adminSettingsService) GetByCategory(ctx context.Context, category string) (map[string]string, error) {
	if s == nil || s.settings == nil {
		return nil, fmt.Errorf("admin settings service not configured / 设置服务未配置")
	}
	trimmedCategory := strings.TrimSpace(category)
	if trimmedCategory == "" {
		return nil, fmt.Errorf("category is required / 分类不能为空")
	}
	entries, err := s.settings.ListByCategory(ctx, trimmedCategory)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(entries))
	for _, entry := range entries {
		// internal keys such as the JWT secret share the table
		if _, ok := knownSettings[entry.Key]; !ok {
			continue
		}
		result[entry.Key] = entry.Value
	}
	return result, nil
}

// SaveSettings 校验并保存分类设置。任一项无效时不写入任何值。
func (s *adminSettingsService) SaveSettings(ctx context.Context, category string, settings map[string]string, actor string) error {
	if s == nil || s.settings == nil {
		return fmt.Errorf("admin settings service not configured / 设置服务未配置")
	}
	trimmedCategory := strings.TrimSpace(category)
	if trimmedCategory == "" {
		return fmt.Errorf("category is required / 分类不能为空")
	}
	if len(settings) == 0 {
		return nil
	}

	normalized := make(map[string]string, len(settings))
	for key, value := range settings {
		trimmedKey := strings.TrimSpace(key)
		meta, ok := knownSettings[trimmedKey]
		if !ok || meta.category != trimmedCategory {
			return fmt.Errorf("%w: %s", ErrUnknownSetting, trimmedKey)
		}
		v, err := normalizeSettingValue(meta.kind, value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", trimmedKey, err)
		}
		normalized[trimmedKey] = v
	}

	now := s.now().Unix()
	entries := make([]repository.Setting, 0, len(normalized))
	for key, value := range normalized {
		entries = append(entries, repository.Setting{
			Key:       key,
			Value:     value,
			Category:  trimmedCategory,
			UpdatedAt: now,
		})
	}
	if err := s.settings.UpsertMany(ctx, entries); err != nil {
		return err
	}
	if s.audit != nil {
		keys := make([]string, 0, len(normalized))
		for key := range normalized {
			keys = append(keys, key)
		}
		s.audit.Record(ctx, security.Event{
			Kind:     security.EventSettingsSaved,
			ActorID:  actor,
			Metadata: map[string]any{"category": trimmedCategory, "keys": keys},
		})
	}
	return nil
}

// Get 按 key 获取设置值，未命中返回 ErrNotFound。
func (s *adminSettingsService) Get(ctx context.Context, key string) (string, error) {
	if s == nil || s.settings == nil {
		return "", fmt.Errorf("admin settings service not configured / 设置服务未配置")
	}
	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return "", fmt.Errorf("key is required / key 不能为空")
	}
	entry, err := s.settings.Get(ctx, trimmedKey)
	if err != nil {
		return "", translateNotFound(err)
	}
	if entry == nil {
		return "", ErrNotFound
	}
	return entry.Value, nil
}

func normalizeSettingValue(kind settingKind, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	switch kind {
	case settingBool:
		switch strings.ToLower(trimmed) {
		case "1", "true", "on", "yes":
			return "1", nil
		case "0", "false", "off", "no", "":
			return "0", nil
		}
		return "", fmt.Errorf("invalid boolean %q", value)
	case settingPositiveInt:
		n, err := strconv.Atoi(trimmed)
		if err != nil || n <= 0 {
			return "", fmt.Errorf("invalid positive integer %q", value)
		}
		return strconv.Itoa(n), nil
	}
	return trimmed, nil
}
