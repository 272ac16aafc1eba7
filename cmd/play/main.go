package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"go_arena/internal/bootstrap"
	"go_arena/internal/domain/board"
	"go_arena/internal/domain/game"
	"go_arena/internal/engine/montecarlo"
	"go_arena/internal/policy"
	"go_arena/internal/repository"
	gameUC "go_arena/internal/usecase/game"
	"go_arena/internal/usecase/selfplay"
)

func main() {
	logger := NewLogger()
	defer logger.Sync()

	app := &cli.App{
		Name:  "play",
		Usage: "play a game against an engine in the terminal",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "size", Value: 9, Usage: "board size"},
			&cli.Float64Flag{Name: "komi", Value: 7.5},
			&cli.StringFlag{Name: "color", Value: "black", Usage: "your color, black or white"},
			&cli.StringFlag{Name: "opponent", Value: gameUC.KindMonteCarlo, Usage: "opponent policy kind"},
			&cli.IntFlag{Name: "workers", Value: 2, Usage: "engine worker count"},
			&cli.StringFlag{Name: "tc", Value: "5", Usage: "engine time control"},
			&cli.StringFlag{Name: "gtp-command", Usage: "command line of the gtp engine"},
			&cli.StringFlag{Name: "sgf", Usage: "write the finished game to this file"},
			&cli.IntFlag{Name: "dead-playouts", Value: 500, Usage: "playouts used to judge dead stones at the end, 0 to skip"},
		},
		Action: func(c *cli.Context) error {
			return run(c, logger)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Fatalw("play failed", "error", err)
	}
}

// NewLogger only reports warnings so the board stays readable.
func NewLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func run(c *cli.Context, log *zap.SugaredLogger) error {
	cfg := bootstrap.Config{
		BoardSize:     c.Int("size"),
		Komi:          c.Float64("komi"),
		EngineWorkers: c.Int("workers"),
		TimeControl:   c.String("tc"),
		GtpCommand:    c.String("gtp-command"),
	}
	humanBlack := true
	switch strings.ToLower(c.String("color")) {
	case "black", "b":
	case "white", "w":
		humanBlack = false
	default:
		return cli.Exit("color must be black or white", 2)
	}

	players := gameUC.NewPlayers(cfg, log)
	if cfg.GtpCommand != "" {
		players.Register("gtp", func(game.PlayerSpec) (policy.Engine, error) {
			eng, err := repository.NewGTPEngine(cfg.GtpCommand, log)
			if err != nil {
				return nil, err
			}
			return eng, nil
		})
	}

	humanSpec := game.PlayerSpec{Kind: gameUC.KindHuman}
	botSpec := players.Normalize(game.PlayerSpec{Kind: c.String("opponent")})
	human, err := players.Build(humanSpec, policy.NewConsolePrompter(os.Stdin, os.Stdout))
	if err != nil {
		return err
	}
	bot, err := players.Build(botSpec, nil)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer func() {
		if closer, ok := bot.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}()

	black, white := human, bot
	blackName, whiteName := "you", gameUC.Describe(botSpec)
	if !humanBlack {
		black, white = bot, human
		blackName, whiteName = whiteName, blackName
	}

	driver := selfplay.NewDriver(selfplay.Config{
		BoardSize: cfg.BoardSize,
		Komi:      cfg.Komi,
		OnMove: func(r game.MoveRecord) {
			if (r.Color == board.Black) == humanBlack {
				return
			}
			fmt.Printf("%s plays %s\n", gameUC.Describe(botSpec), r.Action.GTP(cfg.BoardSize))
		},
	}, log)
	out, runErr := driver.Run(c.Context, black, white)

	if final := out.Final(); final != nil {
		fmt.Printf("\n%s\n", final)
	}
	if runErr != nil {
		fmt.Printf("game aborted: %v\n", runErr)
	} else {
		fmt.Printf("winner: %s (%s), score %+.1f\n", out.Result.WinnerName(), out.Result.Reason, out.Result.Score)
		if playouts := c.Int("dead-playouts"); playouts > 0 && out.Result.Reason == game.ReasonTwoPasses {
			mc := montecarlo.New(montecarlo.Config{Workers: cfg.EngineWorkers}, log)
			score, dead, err := mc.ScoreWithDeadRemoved(c.Context, out.Final(), playouts)
			if err != nil {
				log.Warnw("dead stone estimate failed", "error", err)
			} else {
				estimate := game.Result{Score: score, Winner: board.Winner(score)}
				fmt.Printf("without %d dead stones: %s, score %+.1f\n", len(dead), estimate.WinnerName(), score)
			}
		}
	}

	if path := c.String("sgf"); path != "" {
		record := gameUC.RecordFromOutcome(out, cfg.BoardSize, cfg.Komi, blackName, whiteName)
		if err := os.WriteFile(path, []byte(record.Sgf), 0644); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", path)
	}
	return nil
}
