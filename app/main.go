package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hlumme/bloglist/internal/activityservice"
	"github.com/hlumme/bloglist/internal/blogservice"
	"github.com/hlumme/bloglist/internal/common"
	"github.com/hlumme/bloglist/internal/userservice"
)

type application struct {
	config          *Config
	logger          *slog.Logger
	userService     *userservice.UserService
	blogService     *blogservice.BlogService
	activityService *activityservice.ActivityService
	broker          *common.MessageBroker
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupActivityExchange(broker)
	if err != nil {
		logger.Error("failed to setup the activity exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// each service gets its own cache so a blog mutation flush cannot evict
	// cached token lookups
	app := &application{
		config:          cfg,
		logger:          logger,
		userService:     userservice.NewUserService(db, broker, common.NewCache(5*time.Minute, 10*time.Minute)),
		blogService:     blogservice.NewBlogService(db, common.NewCache(5*time.Minute, 10*time.Minute), broker),
		activityService: activityservice.NewActivityService(broker, logger),
		broker:          broker,
	}

	app.activityService.Run()
	defer app.activityService.Close()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
