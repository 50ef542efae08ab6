// 文件路径: internal/bootstrap/jwt_signing_key.go
// 模块说明: 解析 JWT 签名密钥，未配置时生成并写入 settings 表。
package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/repository"
)

type JWTSigningKeySource string

const (
	defaultJWTSigningKey    = "change-me"
	jwtSigningKeySettingKey = "auth_signing_key"
	jwtSigningKeyCategory   = "system"
	jwtSigningKeyBytes      = 32

	JWTSigningKeySourceConfig    JWTSigningKeySource = "config"
	JWTSigningKeySourceSettings  JWTSigningKeySource = "settings"
	JWTSigningKeySourceGenerated JWTSigningKeySource = "generated"
)

type jwtSigningKeyDeps struct {
	now        func() time.Time
	randReader io.Reader
}

// ResolveJWTSigningKey resolves the signing key with priority
// config/env > settings > generate-and-persist.
func ResolveJWTSigningKey(ctx context.Context, settings repository.SettingRepository, configuredKey string, now func() time.Time) (string, JWTSigningKeySource, error) {
	return resolveJWTSigningKey(ctx, settings, configuredKey, jwtSigningKeyDeps{
		now:        now,
		randReader: rand.Reader,
	})
}

func resolveJWTSigningKey(ctx context.Context, settings repository.SettingRepository, configuredKey string, deps jwtSigningKeyDeps) (string, JWTSigningKeySource, error) {
	configured := strings.TrimSpace(configuredKey)
	if configured != "" && configured != defaultJWTSigningKey {
		return configured, JWTSigningKeySourceConfig, nil
	}

	if settings == nil {
		return "", "", fmt.Errorf("resolve jwt signing key: settings store is required when auth.signing_key is unset; you can set BRINA_AUTH_SIGNING_KEY")
	}
	if deps.now == nil {
		deps.now = time.Now
	}
	if deps.randReader == nil {
		deps.randReader = rand.Reader
	}

	existing, err := settings.Get(ctx, jwtSigningKeySettingKey)
	switch {
	case err == nil && strings.TrimSpace(existing.Value) != "":
		return strings.TrimSpace(existing.Value), JWTSigningKeySourceSettings, nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return "", "", fmt.Errorf("read jwt signing key from settings: %w; you can set BRINA_AUTH_SIGNING_KEY", err)
	}

	generated, err := generateJWTSigningKey(deps.randReader)
	if err != nil {
		return "", "", fmt.Errorf("generate jwt signing key: %w", err)
	}
	stored, created, err := settings.InsertIfAbsent(ctx, &repository.Setting{
		Key:       jwtSigningKeySettingKey,
		Value:     generated,
		Category:  jwtSigningKeyCategory,
		UpdatedAt: deps.now().Unix(),
	})
	if err != nil {
		return "", "", fmt.Errorf("persist jwt signing key to settings: %w; you can set BRINA_AUTH_SIGNING_KEY", err)
	}
	if !created {
		// another process (serve or a CLI command) generated it first
		return strings.TrimSpace(stored.Value), JWTSigningKeySourceSettings, nil
	}
	return generated, JWTSigningKeySourceGenerated, nil
}

func generateJWTSigningKey(reader io.Reader) (string, error) {
	buf := make([]byte, jwtSigningKeyBytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
