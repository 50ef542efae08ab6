package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// DefaultLang 是站点默认语言。
const DefaultLang = "fr-FR"

// Manager 管理翻译内容。
type Manager struct {
	defaultLang  string
	translations map[string]map[string]string
	matcher      language.Matcher
	tags         []language.Tag
	logger       *slog.Logger
	mu           sync.RWMutex
}

// Option 用于配置 Manager。
type Option func(*Manager)

// WithLogger 设置 Manager 使用的日志实例。
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDefaultLang 设置默认语言。
func WithDefaultLang(lang string) Option {
	return func(m *Manager) {
		m.defaultLang = lang
	}
}

// NewManager 创建 i18n Manager。
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		defaultLang:  DefaultLang,
		translations: make(map[string]map[string]string),
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := m.loadEmbeddedTranslations(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manager) loadEmbeddedTranslations() error {
	entries, err := embeddedLocales.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("failed to read locales directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		lang := strings.TrimSuffix(entry.Name(), ".json")
		data, err := embeddedLocales.ReadFile("locales/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}

		var content map[string]string
		if err := json.Unmarshal(data, &content); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", entry.Name(), err)
		}

		m.mu.Lock()
		m.translations[lang] = content
		m.rebuildMatcherLocked()
		m.mu.Unlock()
	}

	return nil
}

// LoadFromDir 从外部目录加载翻译文件，覆盖同名键。
func (m *Manager) LoadFromDir(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read external locales directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		lang := strings.TrimSuffix(file.Name(), ".json")
		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			m.logger.Warn("failed to read external locale file", "file", file.Name(), "error", err)
			continue
		}

		var content map[string]string
		if err := json.Unmarshal(data, &content); err != nil {
			m.logger.Warn("failed to unmarshal external locale file", "file", file.Name(), "error", err)
			continue
		}

		m.mu.Lock()
		if _, exists := m.translations[lang]; !exists {
			m.translations[lang] = make(map[string]string)
		}
		maps.Copy(m.translations[lang], content)
		m.rebuildMatcherLocked()
		m.mu.Unlock()
	}
	return nil
}

func (m *Manager) rebuildMatcherLocked() {
	langs := slices.Sorted(maps.Keys(m.translations))
	// 默认语言放在首位，作为匹配失败时的结果
	tags := make([]language.Tag, 0, len(langs))
	if tag, err := language.Parse(m.defaultLang); err == nil {
		tags = append(tags, tag)
	}
	for _, lang := range langs {
		if lang == m.defaultLang {
			continue
		}
		if tag, err := language.Parse(lang); err == nil {
			tags = append(tags, tag)
		}
	}
	m.tags = tags
	m.matcher = language.NewMatcher(tags)
}

// Match 把任意语言标签归一到已加载的语言，例如 "fr" → "fr-FR"。
func (m *Manager) Match(lang string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.matchLocked(lang)
}

func (m *Manager) matchLocked(lang string) string {
	if _, ok := m.translations[lang]; ok {
		return lang
	}
	tag, err := language.Parse(lang)
	if err != nil || m.matcher == nil {
		return m.defaultLang
	}
	_, idx, conf := m.matcher.Match(tag)
	if conf == language.No || idx >= len(m.tags) {
		return m.defaultLang
	}
	return m.tags[idx].String()
}

// Translate 按语言与键名返回翻译内容，找不到时回退默认语言，再回退为 key。
func (m *Manager) Translate(lang, key string, args ...any) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, candidate := range []string{m.matchLocked(lang), m.defaultLang} {
		if trans, ok := m.translations[candidate]; ok {
			if val, ok := trans[key]; ok {
				if len(args) > 0 {
					return fmt.Sprintf(val, args...)
				}
				return val
			}
		}
	}
	return key
}

// GetSupportedLanguages 返回支持的语言列表。
func (m *Manager) GetSupportedLanguages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.translations))
}

// GetTranslations 返回指定语言的完整翻译表副本。
func (m *Manager) GetTranslations(lang string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if trans, ok := m.translations[lang]; ok {
		return maps.Clone(trans)
	}
	return nil
}
