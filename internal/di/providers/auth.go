package providers

import (
	"encoding/hex"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/tasktiles/tasktiles-server/internal/auth"
	"github.com/tasktiles/tasktiles-server/internal/config"
	"github.com/tasktiles/tasktiles-server/internal/logger"
	"github.com/tasktiles/tasktiles-server/internal/ratelimit"
)

// AuthKey is the PASETO symmetric key as a hex string.
type AuthKey string

// ProvideAuthKey loads or generates the authentication key. The key lives
// next to the database file.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	keyHex, err := auth.LoadOrGenerateKey(filepath.Dir(cfg.Database.Path))
	if err != nil {
		return "", err
	}

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return "", err
	}
	cfg.Auth.AccessTokenKey = keyBytes

	log.Info("Authentication key loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"refresh_token_duration", cfg.Auth.RefreshTokenDuration,
	)

	return AuthKey(keyHex), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(string(authKey), cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
}

// LoginLimiterHandle wraps the login rate limiter with shutdown capability.
type LoginLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LoginLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideLoginLimiter provides the per-username login rate limiter.
func ProvideLoginLimiter(i do.Injector) (*LoginLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &LoginLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.Auth.LoginRateLimit, cfg.Auth.LoginBurst),
	}, nil
}
