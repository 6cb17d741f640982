// Package di provides dependency injection configuration for the TaskTiles server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/tasktiles/tasktiles-server/internal/assistant"
	"github.com/tasktiles/tasktiles-server/internal/auth"
	"github.com/tasktiles/tasktiles-server/internal/config"
	"github.com/tasktiles/tasktiles-server/internal/di/providers"
	"github.com/tasktiles/tasktiles-server/internal/logger"
	"github.com/tasktiles/tasktiles-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideLoginLimiter)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBoardService)
	do.Provide(injector, providers.ProvideListService)
	do.Provide(injector, providers.ProvideCardService)
	do.Provide(injector, providers.ProvideInvitationService)

	// Assistant
	do.Provide(injector, providers.ProvideLLM)
	do.Provide(injector, providers.ProvideDispatcher)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[providers.AuthKey](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.LoginLimiterHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.AuthService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.BoardService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.ListService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.CardService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.InvitationService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[assistant.LLM](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*assistant.Dispatcher](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SessionCleanupJob](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
