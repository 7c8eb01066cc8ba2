package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"quizsolver/cmd/fx/browser_fx"
	"quizsolver/cmd/fx/config_fx"
	"quizsolver/cmd/fx/llm_fx"
	"quizsolver/cmd/fx/logger_fx"
	"quizsolver/cmd/fx/memcache_fx"
	"quizsolver/cmd/fx/solver_fx"
	"quizsolver/internal/api/controllers"
	"quizsolver/pkg/middleware"
	"quizsolver/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	app := fx.New(
		config_fx.Module,
		logger_fx.Module,
		memcache_fx.Module,
		llm_fx.Module,
		browser_fx.Module,
		solver_fx.Module,

		fx.Invoke(StartServer),
		fx.Provide(ProvideRouter),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, cfg utils.AppConfig) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := cfg.Host + ":" + cfg.Port
			go func() {
				log.Printf("Starting HTTP server at %s", addr)
				if err := engine.Run(addr); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(quizController *controllers.QuizController) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, quizController)

	return r
}

func RegisterRoutes(r *gin.Engine, quizController *controllers.QuizController) {
	r.POST("/quiz", quizController.SolveQuizHandler)
	r.GET("/quiz/status/:taskId", quizController.QuizStatusHandler)
	r.GET("/health", quizController.HealthHandler)
}
