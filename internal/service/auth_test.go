package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brinaregal/brina/internal/auth/token"
	"github.com/brinaregal/brina/internal/security"
)

func newTestAuth(t *testing.T, env *testEnv, audit security.Recorder) AuthService {
	t.Helper()
	rate, err := security.NewRateLimiter(env.cache)
	require.NoError(t, err)
	return NewAuthService(AuthDeps{
		Users:     env.store.Users(),
		Settings:  env.store.Settings(),
		LoginLogs: env.store.LoginLogs(),
		Hasher:    env.hasher,
		Tokens:    token.MustManager(token.Options{SigningKey: []byte("test-signing-key"), Issuer: "brina", TTL: time.Hour}),
		Rate:      rate,
		Audit:     audit,
		Cache:     env.cache,
	})
}

func TestAuthLoginAndVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "chef@brina.bj", "motdepasse1", true)
	audit := &recordingAudit{}
	svc := newTestAuth(t, env, audit)

	result, err := svc.Login(ctx, LoginInput{Email: "  CHEF@brina.bj ", Password: "motdepasse1", IP: "10.0.0.2"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.UserID)
	assert.True(t, result.IsAdmin)

	claims, err := svc.Verify(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.True(t, claims.IsAdmin)

	_, err = svc.Verify(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	logs, err := env.store.LoginLogs().ListByEmail(ctx, "chef@brina.bj", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Success)
	assert.Contains(t, audit.Kinds(), security.EventLoginSuccess)
}

func TestAuthLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, "client@brina.bj", "secret12", false)
	svc := newTestAuth(t, env, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "nobody@brina.bj", Password: "secret12"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "client@brina.bj", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	for i := 0; i < 5; i++ {
		_, err = svc.Login(ctx, LoginInput{Email: "client@brina.bj", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	// locked even with the right password
	_, err = svc.Login(ctx, LoginInput{Email: "client@brina.bj", Password: "secret12"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestAuthPasswordLimitCanBeDisabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addUser(t, "client@brina.bj", "secret12", false)
	settings := NewAdminSettingsService(AdminSettingsOptions{Settings: env.store.Settings()})
	require.NoError(t, settings.SaveSettings(ctx, SettingCategorySecurity, map[string]string{
		SettingPasswordLimitEnable: "off",
	}, "admin"))
	svc := newTestAuth(t, env, nil)

	for i := 0; i < 6; i++ {
		_, err := svc.Login(ctx, LoginInput{Email: "client@brina.bj", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := svc.Login(ctx, LoginInput{Email: "client@brina.bj", Password: "secret12"})
	require.NoError(t, err)
}

func TestAuthDisabledAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "off@brina.bj", "secret12", false)
	svc := newTestAuth(t, env, nil)

	result, err := svc.Login(ctx, LoginInput{Email: "off@brina.bj", Password: "secret12"})
	require.NoError(t, err)

	user.Status = 0
	require.NoError(t, env.store.Users().Save(ctx, user))

	_, err = svc.Login(ctx, LoginInput{Email: "off@brina.bj", Password: "secret12"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
	_, err = svc.Verify(ctx, result.Token)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	audit := &recordingAudit{}
	auth := newTestAuth(t, env, audit)
	rate, err := security.NewRateLimiter(env.cache)
	require.NoError(t, err)
	svc := NewRegisterService(env.store.Users(), env.hasher, auth, rate, audit)

	valid := RegisterInput{
		Name:            "Rodrigue",
		Email:           "Rodrigue@Example.com",
		Phone:           "+229 97 00 00 10",
		Address:         "Akpakpa",
		Password:        "abc123",
		PasswordConfirm: "abc123",
		IP:              "10.1.1.1",
	}
	result, err := svc.Register(ctx, valid)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "rodrigue@example.com", result.Email)
	assert.False(t, result.IsAdmin)
	assert.Contains(t, audit.Kinds(), security.EventRegister)

	stored, err := env.store.Users().FindByEmail(ctx, "rodrigue@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "abc123", stored.Password)
	assert.Equal(t, "+22997000010", stored.Phone)

	_, err = svc.Register(ctx, valid)
	assert.ErrorIs(t, err, ErrEmailExists)

	cases := []struct {
		name   string
		mutate func(in *RegisterInput)
		want   error
	}{
		{"no name", func(in *RegisterInput) { in.Name = "" }, ErrInvalidName},
		{"bad email", func(in *RegisterInput) { in.Email = "nope" }, ErrInvalidEmail},
		{"bad phone", func(in *RegisterInput) { in.Phone = "12" }, ErrInvalidPhone},
		{"short password", func(in *RegisterInput) { in.Password, in.PasswordConfirm = "abc", "abc" }, ErrInvalidPassword},
		{"mismatch", func(in *RegisterInput) { in.PasswordConfirm = "abc124" }, ErrPasswordMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			in.Email = "other@example.com"
			tc.mutate(&in)
			_, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestInstallCreatesFirstAdminOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	audit := &recordingAudit{}
	svc := NewInstallService(env.store.Users(), env.hasher, audit)

	need, err := svc.NeedsBootstrap(ctx)
	require.NoError(t, err)
	assert.True(t, need)

	_, err = svc.CreateAdmin(ctx, InstallInput{Email: "admin@brina.bj", Name: "Admin", Password: "onlyletters"})
	assert.ErrorIs(t, err, ErrInvalidPassword)

	admin, err := svc.CreateAdmin(ctx, InstallInput{Email: "admin@brina.bj", Name: "Admin", Password: "Brina2026"})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, []string{security.EventAdminCreated}, audit.Kinds())

	need, err = svc.NeedsBootstrap(ctx)
	require.NoError(t, err)
	assert.False(t, need)

	_, err = svc.CreateAdmin(ctx, InstallInput{Email: "second@brina.bj", Name: "Second", Password: "Brina2026"})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	forced, err := svc.CreateAdmin(ctx, InstallInput{Email: "second@brina.bj", Name: "Second", Password: "Brina2026", Force: true})
	require.NoError(t, err)
	assert.True(t, forced.IsAdmin)
}

func TestInstallConcurrentRequestsCreateSingleAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewInstallService(env.store.Users(), env.hasher, nil)

	need, err := svc.NeedsBootstrap(ctx)
	require.NoError(t, err)
	require.True(t, need)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateAdmin(ctx, InstallInput{
				Email:    fmt.Sprintf("admin%d@brina.bj", i),
				Name:     "Admin",
				Password: "Brina2026",
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrAlreadyInitialized):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)

	admins := 0
	for i := 0; i < workers; i++ {
		user, err := env.store.Users().FindByEmail(ctx, fmt.Sprintf("admin%d@brina.bj", i))
		if err == nil && user.IsAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}
