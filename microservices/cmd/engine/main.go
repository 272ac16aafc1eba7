package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"go_arena/internal/bootstrap"
	"go_arena/internal/engine/montecarlo"
	"go_arena/internal/repository"
	engineUC "go_arena/internal/usecase/engine"
	"go_arena/microservices/rpc"
	"go_arena/microservices/usecase"
)

func main() {
	logger := NewLogger()
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Errorw("Failed to setup configuration", "error", err)
		return
	}

	lis, err := net.Listen("tcp", ":"+cfg.EngineRPCPort)
	if err != nil {
		logger.Fatalw("cant listen port", "port", cfg.EngineRPCPort, "error", err)
	}

	// with a bot url the service fronts that bot, otherwise it searches itself
	var store usecase.EngineStore
	if cfg.EngineBotUrl != "" {
		store, err = repository.NewHTTPEngine(cfg.EngineBotUrl, logger)
		if err != nil {
			logger.Fatalw("bad bot url", "error", err)
		}
		logger.Infow("proxying engine requests", "url", cfg.EngineBotUrl)
	} else {
		mc := montecarlo.New(montecarlo.Config{Workers: cfg.EngineWorkers}, logger)
		store = engineUC.NewEngineUseCase(*cfg, logger, mc)
	}

	server := grpc.NewServer()
	rpc.RegisterEngineServiceServer(server, usecase.NewEngineRPC(store, logger))

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("stopping engine service")
		server.GracefulStop()
	}()

	logger.Infof("starting engine service at :%s", cfg.EngineRPCPort)
	if err := server.Serve(lis); err != nil {
		logger.Errorw("engine service stopped", "error", err)
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	return logger.Sugar()
}
