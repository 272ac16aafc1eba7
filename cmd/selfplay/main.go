package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"go_arena/internal/bootstrap"
	"go_arena/internal/domain/game"
	"go_arena/internal/policy"
	"go_arena/internal/repository"
	gameUC "go_arena/internal/usecase/game"
	"go_arena/internal/usecase/selfplay"
)

func main() {
	logger := NewLogger()
	defer logger.Sync()

	app := &cli.App{
		Name:  "selfplay",
		Usage: "play a batch of games between two policies and report the score",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "games", Aliases: []string{"n"}, Value: 10, Usage: "number of games"},
			&cli.IntFlag{Name: "parallel", Value: runtime.NumCPU(), Usage: "games played at once"},
			&cli.IntFlag{Name: "size", Value: 9, Usage: "board size"},
			&cli.Float64Flag{Name: "komi", Value: 7.5},
			&cli.IntFlag{Name: "max-moves", Usage: "move cap, 0 for 3*size*size"},
			&cli.StringFlag{Name: "first", Value: gameUC.KindMonteCarlo, Usage: "first policy kind"},
			&cli.StringFlag{Name: "second", Value: gameUC.KindRandom, Usage: "second policy kind"},
			&cli.IntFlag{Name: "workers", Value: 1, Usage: "engine worker count"},
			&cli.StringFlag{Name: "tc", Value: "=500", Usage: "engine time control"},
			&cli.StringFlag{Name: "gtp-command", Usage: "command line of the gtp engine"},
			&cli.Int64Flag{Name: "seed", Value: 1},
			&cli.BoolFlag{Name: "alternate", Value: true, Usage: "swap colors every other game"},
			&cli.StringFlag{Name: "output", Value: "output", Usage: "directory for game records"},
			&cli.StringFlag{Name: "output-prefix", Usage: "file name prefix, records are not written without it"},
		},
		Action: func(c *cli.Context) error {
			return run(c, logger)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Fatalw("selfplay failed", "error", err)
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func run(c *cli.Context, log *zap.SugaredLogger) error {
	cfg := bootstrap.Config{
		BoardSize:     c.Int("size"),
		Komi:          c.Float64("komi"),
		MaxMoves:      c.Int("max-moves"),
		EngineWorkers: c.Int("workers"),
		TimeControl:   c.String("tc"),
		GtpCommand:    c.String("gtp-command"),
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

	seed := c.Int64("seed")
	first := players.Normalize(game.PlayerSpec{Kind: c.String("first")})
	second := players.Normalize(game.PlayerSpec{Kind: c.String("second")})
	factory := func(spec game.PlayerSpec, offset int64) selfplay.Factory {
		return func(i int) (policy.Policy, error) {
			s := spec
			s.Seed = seed + 2*int64(i) + offset
			return players.Build(s, nil)
		}
	}
	// surface configuration errors before any game starts
	for _, spec := range []game.PlayerSpec{first, second} {
		p, err := players.Build(spec, nil)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		closePolicy(p)
	}

	n := c.Int("games")
	if n < 0 {
		return cli.Exit(fmt.Sprintf("--games must not be negative, got %d", n), 2)
	}
	alternate := c.Bool("alternate")
	pool := selfplay.NewPool(selfplay.Config{
		BoardSize: cfg.BoardSize,
		Komi:      cfg.Komi,
		MaxMoves:  cfg.MaxMoves,
	}, c.Int("parallel"), log)
	summary, err := pool.RunMany(c.Context, n, factory(first, 0), factory(second, 1), alternate)
	if err != nil {
		return err
	}

	if prefix := c.String("output-prefix"); prefix != "" {
		names := [2]string{gameUC.Describe(first), gameUC.Describe(second)}
		if err := writeRecords(c.String("output"), prefix, summary, cfg, names, alternate); err != nil {
			return err
		}
	}

	fmt.Printf("%s vs %s, %d games on %dx%d\n", gameUC.Describe(first), gameUC.Describe(second), n, cfg.BoardSize, cfg.BoardSize)
	fmt.Printf("first %d, second %d, draws %d, aborted %d\n", summary.FirstWins, summary.SecondWins, summary.Draws, summary.Aborted)
	fmt.Printf("black %d, white %d\n", summary.BlackWins, summary.WhiteWins)
	return nil
}

// writeRecords stores each game as prefix_NNNNN.json and .sgf, numbering on
// from the highest record already in dir.
func writeRecords(dir, prefix string, summary *selfplay.Summary, cfg bootstrap.Config, names [2]string, alternate bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	maxSeq, err := findMaxSequenceNumber(dir, prefix)
	if err != nil {
		return err
	}
	for i, out := range summary.Outcomes {
		if out == nil {
			continue
		}
		black, white := names[0], names[1]
		if !selfplay.FirstPlaysBlack(i, alternate) {
			black, white = white, black
		}
		record := gameUC.RecordFromOutcome(out, cfg.BoardSize, cfg.Komi, black, white)

		base := filepath.Join(dir, fmt.Sprintf("%s_%05d", prefix, maxSeq+i+1))
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err := os.WriteFile(base+".json", data, 0644); err != nil {
			return err
		}
		if err := os.WriteFile(base+".sgf", []byte(record.Sgf), 0644); err != nil {
			return err
		}
	}
	return nil
}

func findMaxSequenceNumber(dir, prefix string) (int, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	pattern := regexp.MustCompile(fmt.Sprintf(`^%s_(\d{5})\.json$`, regexp.QuoteMeta(prefix)))
	maxSeq := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		matches := pattern.FindStringSubmatch(file.Name())
		if len(matches) != 2 {
			continue
		}
		if seq, err := strconv.Atoi(matches[1]); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq, nil
}

func closePolicy(p policy.Policy) {
	if c, ok := p.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}
