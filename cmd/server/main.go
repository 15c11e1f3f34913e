package main

import (
	"fmt"
	"log"

	"github.com/qs3c/repoeval_go_server/config"
	"github.com/qs3c/repoeval_go_server/internal/api"
	"github.com/qs3c/repoeval_go_server/internal/api/handler"
	"github.com/qs3c/repoeval_go_server/internal/database"
	"github.com/qs3c/repoeval_go_server/internal/pkg/github"
	"github.com/qs3c/repoeval_go_server/internal/pkg/lock"
	"github.com/qs3c/repoeval_go_server/internal/pkg/progress"
	"github.com/qs3c/repoeval_go_server/internal/repository"
	"github.com/qs3c/repoeval_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化进度 Hub
	hub := progress.NewHub()

	// 初始化 Repository
	repoRepo := repository.NewRepositoryRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)

	// AI 网关：配置了 API Key 走 OpenAI，否则用占位实现
	var gateway service.AiGateway
	if cfg.OpenAI.APIKey != "" {
		gateway = service.NewOpenAIGateway(&cfg.OpenAI)
		log.Printf("AI gateway: openai, model=%s", cfg.OpenAI.Model)
	} else {
		gateway = service.NewNoopGateway()
		log.Println("AI gateway: noop (openai.api_key not set)")
	}

	// 初始化 Service
	fetcher := github.NewFetcher(github.NewClient(&cfg.GitHub))
	dataService := service.NewRepoDataService(fetcher, &cfg.Analysis)
	evalService := service.NewEvaluationService(gateway, analysisRepo)
	analysisService := service.NewAnalysisService(
		repoRepo,
		analysisRepo,
		dataService,
		evalService,
		lock.NewManager(rdb),
		hub,
	)

	// 初始化 Handler
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	websocketHandler := handler.NewWebSocketHandler(hub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(analysisHandler, websocketHandler, cfg)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
