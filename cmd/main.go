package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/certprep/config"
	"github.com/lshigami/certprep/database"
	adminctrl "github.com/lshigami/certprep/internal/controller/admin"
	userctrl "github.com/lshigami/certprep/internal/controller/user"
	"github.com/lshigami/certprep/internal/logger"
	"github.com/lshigami/certprep/internal/model"
	"github.com/lshigami/certprep/internal/repository"
	"github.com/lshigami/certprep/internal/scheduler"
	"github.com/lshigami/certprep/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title CertPrep Adaptive Exam API
// @version 1.0
// @description Adaptive certification exam preparation: ELO-based skill tracking, practice sessions, timed simulations and spaced-repetition review.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Repositories layer
		fx.Provide(
			repository.NewCertificationRepository,
			repository.NewQuestionRepository,
			repository.NewUserSkillRepository,
			repository.NewSessionRepository,
			repository.NewResponseRepository,
			repository.NewReviewRepository,
		),

		// Services layer
		fx.Provide(
			service.NewGeminiQuestionService,
			service.NewAnswerEngine,
			service.NewQuestionSelectorService,
			service.NewSessionService,
			service.NewSimulationService,
			service.NewProgressService,
			service.NewReviewService,
			service.NewCertificationService,
			service.NewAdminService,
		),

		// Controllers and background jobs
		fx.Provide(
			userctrl.NewController,
			adminctrl.NewController,
			scheduler.New,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(SeedDefaultCertification),
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(StartScheduler),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	userCtrl *userctrl.Controller,
	adminCtrl *adminctrl.Controller,
) {
	userCtrl.RegisterRoutes(router)
	adminCtrl.RegisterRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("CertPrep API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func StartScheduler(lc fx.Lifecycle, sched *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return sched.Start()
		},
		OnStop: func(ctx context.Context) error {
			sched.Stop()
			return nil
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Certification{},
		&model.Domain{},
		&model.Question{},
		&model.UserSkill{},
		&model.UserDomainSkill{},
		&model.Session{},
		&model.Response{},
		&model.ReviewItem{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}

// SeedDefaultCertification makes sure a fresh install has something to
// practice against.
func SeedDefaultCertification(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Certification{}).Where("code = ?", "PL-300").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed := model.Certification{
		Code:            "PL-300",
		Title:           "Microsoft Power BI Data Analyst",
		Description:     "Prepare, model, visualize and analyze data with Power BI.",
		PassScore:       700,
		PassSkillRating: 1100,
		IsActive:        true,
		Domains: []model.Domain{
			{Name: "Prepare the data", Weight: 0.275, SortOrder: 1},
			{Name: "Model the data", Weight: 0.275, SortOrder: 2},
			{Name: "Visualize and analyze the data", Weight: 0.275, SortOrder: 3},
			{Name: "Deploy and maintain assets", Weight: 0.175, SortOrder: 4},
		},
	}
	if err := db.Create(&seed).Error; err != nil {
		return err
	}
	log.Info().Str("code", seed.Code).Msg("Seeded default certification")
	return nil
}
