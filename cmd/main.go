package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"go_arena/internal/adapters"
	"go_arena/internal/bootstrap"
	engineDelivery "go_arena/internal/delivery/engine"
	gameDelivery "go_arena/internal/delivery/game"
	"go_arena/internal/domain/game"
	"go_arena/internal/engine/montecarlo"
	ownMiddleware "go_arena/internal/middleware"
	"go_arena/internal/policy"
	"go_arena/internal/repository"
	engineUC "go_arena/internal/usecase/engine"
	gameUC "go_arena/internal/usecase/game"
)

type mainDeliveryHandler struct {
	engine *engineDelivery.EngineHandler
	game   *gameDelivery.GameHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Errorw("Failed to setup configuration", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	defer databaseAdapters.mongoAdapter.Close(context.Background())
	defer databaseAdapters.redisAdapter.Close(context.Background())

	generator, closeGenerator := initMoveGenerator(*cfg, logger)
	defer closeGenerator()

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, logger, generator, databaseAdapters)
	handlers.Router(r, cfg.IsLocalCors)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}
	go handleShutdown(server, cancel, logger)

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("Failed to start server", "error", err)
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/engine/genmove", h.engine.HandleGenerateMove)

	r.Route("/games", func(r chi.Router) {
		r.Post("/", h.game.HandlePlayGame)
		r.Get("/", h.game.HandleListGames)
		r.Get("/stats", h.game.HandleStats)
		r.Get("/stream", h.game.HandleStream)
		r.Post("/import", h.game.HandleImportSGF)
		r.Get("/{id}", h.game.HandleGetGame)
		r.Get("/{id}/sgf", h.game.HandleGetSGF)
		r.Get("/{id}/pdf", h.game.HandleGetPDF)
	})
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatalw("Не удалось инициализировать MongoDB", "error", err)
	}

	redisAdapter := adapters.NewAdapterRedis(cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatalw("Не удалось инициализировать Redis", "error", err)
	}

	log.Info("Адаптеры баз данных инициализированы")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

// initMoveGenerator serves /engine/genmove from the engine microservice when
// its address is configured and from an in-process search otherwise.
func initMoveGenerator(cfg bootstrap.Config, log *zap.SugaredLogger) (engineDelivery.MoveGenerator, func()) {
	if cfg.EngineRPCAddr != "" {
		client, err := repository.NewGRPCEngine(cfg.EngineRPCAddr, log)
		if err != nil {
			log.Fatalw("Failed to create engine client", "error", err)
		}
		return client, func() { _ = client.Close() }
	}
	mc := montecarlo.New(montecarlo.Config{Workers: cfg.EngineWorkers}, log)
	return engineUC.NewEngineUseCase(cfg, log, mc), func() {}
}

// registerEngines adds the out-of-process engines as player kinds. Every
// game gets its own engine so GTP sessions are never shared.
func registerEngines(players *gameUC.Players, cfg bootstrap.Config, log *zap.SugaredLogger) {
	players.Register("gtp", func(game.PlayerSpec) (policy.Engine, error) {
		eng, err := repository.NewGTPEngine(cfg.GtpCommand, log)
		if err != nil {
			return nil, err
		}
		return eng, nil
	})
	players.Register("http", func(game.PlayerSpec) (policy.Engine, error) {
		eng, err := repository.NewHTTPEngine(cfg.EngineBotUrl, log)
		if err != nil {
			return nil, err
		}
		return eng, nil
	})
	players.Register("grpc", func(game.PlayerSpec) (policy.Engine, error) {
		eng, err := repository.NewGRPCEngine(cfg.EngineRPCAddr, log)
		if err != nil {
			return nil, err
		}
		return eng, nil
	})
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	generator engineDelivery.MoveGenerator,
	databaseAdapters *dataBaseAdapters,
) *mainDeliveryHandler {
	gameRepo := repository.NewGameRepository(cfg, log, databaseAdapters.redisAdapter.GetClient(), databaseAdapters.mongoAdapter.Database)
	players := gameUC.NewPlayers(cfg, log)
	registerEngines(players, cfg, log)
	log.Infow("player kinds", "kinds", players.Kinds())

	return &mainDeliveryHandler{
		engine: engineDelivery.NewEngineHandler(cfg, log, generator),
		game:   gameDelivery.NewGameHandler(cfg, log, gameUC.NewGameUseCase(gameRepo, players, cfg, log)),
	}
}

func handleShutdown(server *http.Server, cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorw("server shutdown", "error", err)
	}
	cancelFunc()
}
