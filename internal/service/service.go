// Package service 提供服务集合的统一装配
package service

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dyohan9/bothub-engine/internal/config"
	"github.com/dyohan9/bothub-engine/internal/nlp"
	"github.com/dyohan9/bothub-engine/internal/notification"
	"github.com/dyohan9/bothub-engine/internal/repository"
	"github.com/dyohan9/bothub-engine/internal/service/auth"
	"github.com/dyohan9/bothub-engine/internal/service/example"
	"github.com/dyohan9/bothub-engine/internal/service/repo"
	"github.com/dyohan9/bothub-engine/internal/service/training"
)

// Services 服务集合
type Services struct {
	Auth     *auth.Service
	Repo     *repo.Service
	Example  *example.Service
	Training *training.Service

	Config *config.Config
	Mailer notification.Mailer
	NLP    nlp.Client
}

// NewServices 创建所有服务
func NewServices(repositories *repository.Repositories, cfg *config.Config, redisClient *redis.Client) *Services {
	mailer := notification.New(&cfg.SMTP)
	nlpClient := nlp.NewHTTPClient(cfg.NLP.BaseURL, time.Duration(cfg.NLP.Timeout)*time.Second)

	resets := auth.NewResetTokenStore(redisClient)
	repoSvc := repo.NewService(repositories, mailer)

	return &Services{
		Auth:     auth.NewService(repositories, resets),
		Repo:     repoSvc,
		Example:  example.NewService(repositories, repoSvc),
		Training: training.NewService(repositories, repoSvc, nlpClient),

		Config: cfg,
		Mailer: mailer,
		NLP:    nlpClient,
	}
}
