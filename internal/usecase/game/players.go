package game

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"go_arena/internal/bootstrap"
	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
	"go_arena/internal/engine/montecarlo"
	"go_arena/internal/policy"
)

const (
	KindRandom     = "random"
	KindMonteCarlo = "montecarlo"
	KindHuman      = "human"
)

// EngineBuilder creates the engine behind an external player.
type EngineBuilder func(spec game.PlayerSpec) (policy.Engine, error)

// Players turns player specs into policies. Engine kinds other than the
// built-in Monte-Carlo search are registered by the caller.
type Players struct {
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
	engines map[string]EngineBuilder
}

func NewPlayers(cfg bootstrap.Config, log *zap.SugaredLogger) *Players {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	p := &Players{cfg: cfg, log: log, engines: make(map[string]EngineBuilder)}
	p.Register(KindMonteCarlo, func(spec game.PlayerSpec) (policy.Engine, error) {
		return montecarlo.New(montecarlo.Config{Workers: spec.Workers, Seed: spec.Seed}, log), nil
	})
	return p
}

func (p *Players) Register(kind string, builder EngineBuilder) {
	p.engines[strings.ToLower(kind)] = builder
}

// Kinds lists every kind Build accepts.
func (p *Players) Kinds() []string {
	kinds := []string{KindRandom, KindHuman}
	for kind := range p.engines {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Build returns the policy for spec. Engine players get the configured
// worker count and time control unless spec sets its own. A human player
// needs a prompter.
func (p *Players) Build(spec game.PlayerSpec, prompter policy.Prompter) (policy.Policy, error) {
	kind := strings.ToLower(strings.TrimSpace(spec.Kind))
	switch kind {
	case KindRandom:
		return policy.NewRandom(spec.Seed), nil
	case KindHuman:
		if prompter == nil {
			return nil, fmt.Errorf("%w: a human player needs an interactive connection", errs.ErrUnknownPolicy)
		}
		return policy.NewInteractive(KindHuman, prompter, policy.DefaultRetries), nil
	}

	builder, ok := p.engines[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownPolicy, spec.Kind)
	}
	spec = p.Normalize(spec)
	eng, err := builder(spec)
	if err != nil {
		return nil, err
	}
	ext, err := policy.NewExternal(eng, spec.Workers, spec.TimeControl)
	if err != nil {
		if c, ok := eng.(interface{ Close() error }); ok {
			_ = c.Close()
		}
		return nil, err
	}
	p.log.Debugw("player built", "kind", kind, "workers", spec.Workers, "time_control", spec.TimeControl)
	return ext, nil
}

// Normalize fills in the configured engine settings.
func (p *Players) Normalize(spec game.PlayerSpec) game.PlayerSpec {
	spec.Kind = strings.ToLower(strings.TrimSpace(spec.Kind))
	if _, ok := p.engines[spec.Kind]; !ok {
		return spec
	}
	if spec.Workers == 0 {
		spec.Workers = p.cfg.EngineWorkers
	}
	if spec.TimeControl == "" {
		spec.TimeControl = p.cfg.TimeControl
	}
	return spec
}

// Describe is the player name stored with a game, e.g. "montecarlo =1000".
func Describe(spec game.PlayerSpec) string {
	if spec.TimeControl != "" {
		return spec.Kind + " " + spec.TimeControl
	}
	return spec.Kind
}
