package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"

	"github.com/hawkrclub/hawkr/pkg"
	"github.com/hawkrclub/hawkr/services/chatbot/internal/chatbot"
	"github.com/hawkrclub/hawkr/services/chatbot/internal/mongo"
)

const (
	appNamespace = "CHATBOT"
	appName      = "chatbot"
	appVersion   = "0.1.0"
)

func main() {
	config, err := aqm.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("Cannot setup %s(%s): %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := aqm.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	repo := mongo.NewLinkRepo(config, logger)
	service := chatbot.NewService(repo, logger)
	bot := chatbot.NewBot(service, logger)

	sender, err := chatbot.NewHTTPBotSender(config, logger)
	if err != nil {
		log.Fatalf("Cannot create bot sender: %v", err)
	}

	natsURL, _ := config.GetString("nats.url")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	subscriber, err := pkg.NewNATSSubscriber(natsURL, logger)
	if err != nil {
		log.Fatalf("Cannot connect to NATS subscriber: %v", err)
	}
	defer subscriber.Close()

	outbound := chatbot.NewOutboundSubscriber(subscriber, service, sender, logger)
	handler := chatbot.NewHandler(service, bot, sender, config, logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true,
	})

	options := []aqm.Option{
		aqm.WithConfig(config),
		aqm.WithLogger(logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(repo, outbound),
		aqm.WithHealthChecks(appName),
	}

	ms := aqm.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
