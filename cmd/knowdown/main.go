package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hexxt-git/knowdown/internal/api"
	"github.com/hexxt-git/knowdown/internal/config"
	"github.com/hexxt-git/knowdown/internal/constants"
	"github.com/hexxt-git/knowdown/internal/engine"
	"github.com/hexxt-git/knowdown/internal/logging"
	"github.com/hexxt-git/knowdown/internal/service"
	"github.com/hexxt-git/knowdown/internal/storage"
)

func main() {
	// A local .env is optional; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	checkEnvVars([]string{constants.EnvSessionSecret, constants.EnvGoogleClientID, constants.EnvGoogleClientSecret})

	// Card catalog configuration file (required). Path may be provided via
	// KNOWDOWN_CONFIG or defaults to ./knowdown_config.json in the current
	// working directory.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./knowdown_config.json"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Fatal("Missing or invalid knowdown configuration", err, logging.Fields{
			"config_path": configPath,
			"hint":        "create a knowdown_config.json with a 'card_list' array of card objects (id,level,subject,thumbnail,question,answers,correct_answer,explanation) and optional keys: server.address, pack_cooldown_minutes, answer_display_seconds, idle_battle_minutes",
		})
	}

	// Allow the DB path to be configured via KNOWDOWN_DB. Default to a
	// `data/` directory for local development.
	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = "./data/knowdown.db"
	}
	db, err := storage.OpenAndMigrate(dbPath, cfg.Catalog)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}

	repo := storage.NewSQLiteRepository(db)
	reporter := service.NewResults(repo)
	battles := service.NewBattleManager(repo, reporter, engine.Config{
		AnswerDisplayDelay: cfg.AnswerDisplayDelay,
	}, cfg.IdleBattleTTL)

	// Background sweeper: forfeit battles abandoned mid-match and drop
	// finished sessions from the registry.
	stop := make(chan struct{})
	defer close(stop)
	battles.StartIdleSweeper(30*time.Second, stop)

	handler := api.NewHandler(repo, battles, cfg.PackCooldown)
	authHandler := api.NewAuthHandler(repo)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{constants.HeaderContentType, constants.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		// Public endpoints
		apiRoutes.GET(constants.RouteVersion, api.Version)
		apiRoutes.GET(constants.RouteCards, handler.ListCards)

		// Authenticated endpoints
		protected := apiRoutes.Group("")
		protected.Use(api.AuthRequired())

		protected.GET(constants.RoutePlayerStats, handler.GetPlayerStats)
		protected.POST(constants.RoutePlayerStats, handler.UpdatePlayerProfile)
		protected.GET(constants.RouteCardCollection, handler.GetCollection)
		protected.GET(constants.RouteLeaderboard, handler.ListLeaderboard)

		protected.GET(constants.RoutePackStatus, handler.GetPackStatus)
		protected.POST(constants.RoutePackOpen, handler.OpenPack)

		protected.GET(constants.RouteFriends, handler.ListFriends)
		protected.GET(constants.RouteFriendInvites, handler.ListFriendInvites)
		protected.POST(constants.RouteFriendInviteSend, handler.SendFriendInvite)
		protected.POST(constants.RouteFriendInviteReply, handler.RespondFriendInvite)

		protected.POST(constants.RouteBattles, handler.StartBattle)
		protected.GET(constants.RouteBattleByID, handler.GetBattle)
		protected.POST(constants.RouteBattlePlay, handler.PlayCard)
		protected.POST(constants.RouteBattleAnswer, handler.SubmitAnswer)
		protected.POST(constants.RouteBattleForfeit, handler.ForfeitBattle)
	}

	router.POST(constants.RouteAuthGoogleCallBack, authHandler.GoogleOAuthCallback)
	router.POST(constants.RouteAPIPrefix+constants.RouteAuthLogout, authHandler.Logout)

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}

func checkEnvVars(vars []string) {
	for _, v := range vars {
		if os.Getenv(v) == "" {
			logging.Fatal("Required environment variable not set", nil, logging.Fields{"var": v})
		}
	}
}
