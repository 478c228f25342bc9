package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "WinGoApi/cmd/db"
	"WinGoApi/internal/middleware"
	"WinGoApi/internal/service"
	"WinGoApi/pkg/logger"
	"WinGoApi/pkg/redis"
)

const apiPrefix = "api/"

func Start() {
	gin.DisableConsoleColor()

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.BlockBadActorsMiddleware())
	authorized := router.Group("/", middleware.AuthMiddleware())
	operator := router.Group("/", middleware.OperatorMiddleware())

	redisAddr, ok := os.LookupEnv("REDIS_ADDR")
	if !ok {
		redisAddr = "redis:6379"
	}
	redisService := redis.NewRedisService(redisAddr, os.Getenv("REDIS_PASSWORD"))
	service.InitExposureBook(redisService)

	// Start one supervised round loop per duration track
	for _, track := range service.WingoTracks {
		go service.SuperviseWingoTrack(track)
	}

	// router
	{
		router.POST(apiPrefix+"users/auth/signup", service.SignUp)
		router.POST(apiPrefix+"users/auth/login", service.AuthLogin)
	}

	// authorized
	{
		// users
		authorized.GET(apiPrefix+"users", service.GetUser)
		authorized.GET(apiPrefix+"users/referrals", service.GetUserReferrals)
		authorized.GET(apiPrefix+"users/commissions", service.GetUserCommissions)

		// wingo rounds
		authorized.GET(apiPrefix+"games/wingo/rounds/current", service.GetCurrentWingoRound)
		authorized.GET(apiPrefix+"games/wingo/rounds/history", service.GetWingoRoundHistory)
		authorized.GET(apiPrefix+"games/wingo/rounds/:id/result", service.GetDeclaredWingoResult)

		// wingo bets
		authorized.POST(apiPrefix+"games/wingo/place", service.PlaceWingoBet)
		authorized.GET(apiPrefix+"games/wingo/bets", service.GetUserWingoBets)

		// live round events
		authorized.GET(apiPrefix+"ws/wingo/live", service.WingoWS.LiveWingoWebsocketHandler)
	}

	// operator
	{
		operator.GET(apiPrefix+"games/wingo/rounds/:id/exposure", service.GetRoundExposure)
		operator.POST(apiPrefix+"games/wingo/rounds/:id/result", func(c *gin.Context) {
			service.DeclareWingoResult(c, redisService)
		})
		operator.POST(apiPrefix+"games/wingo/rounds/:id/void", service.VoidWingoRound)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: router.Handler(),
	}

	go func() {
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server Shutdown: %v", err)
	}

	logger.Info("Server exiting")
}
