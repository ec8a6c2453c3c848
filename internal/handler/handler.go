package handler

import (
	"github.com/dyohan9/bothub-engine/internal/service"
)

// Handlers HTTP 处理器集合
type Handlers struct {
	Auth       *AuthHandler
	Repository *RepositoryHandler
	Example    *ExampleHandler
	Version    *VersionHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(services),
		Repository: NewRepositoryHandler(services),
		Example:    NewExampleHandler(services),
		Version:    NewVersionHandler(services),
	}
}
