package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/config"
	"github.com/abhisek/certify/internal/events"
	"github.com/abhisek/certify/internal/flash"
	"github.com/abhisek/certify/internal/logger"
	"github.com/abhisek/certify/internal/placement"
	"github.com/abhisek/certify/internal/referential"
	"github.com/abhisek/certify/internal/scoring"
	"github.com/abhisek/certify/internal/skillgraph"
	"github.com/abhisek/certify/internal/store"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg   config.Config
	log   *logger.Logger
	store *store.Store
	redis *redis.Client
}

// openApp reads configuration, builds the logger and opens the store.
// Callers must Close the returned app.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{
		Mode:     cfg.Log.Mode,
		Debug:    cfg.Log.Debug,
		HashSalt: cfg.Log.HashSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	cfg.DBPath = dbPath
	log.Debug("store opened", "path", dbPath)

	return &app{cfg: cfg, log: log, store: st}, nil
}

// loadConfig merges environment configuration with persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if m, _ := cmd.Flags().GetString("log-mode"); m != "" {
		cfg.Log.Mode = m
	}
	if d, _ := cmd.Flags().GetBool("debug"); d {
		cfg.Log.Debug = true
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	return cfg, cfg.Validate()
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("close redis", "error", err.Error())
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store", "error", err.Error())
	}
	a.log.Sync()
}

// graph loads the skill graph from the store.
func (a *app) graph(ctx context.Context) (*skillgraph.Graph, error) {
	g, err := a.store.Skills().LoadGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("load skill graph: %w", err)
	}
	if len(g.AllSkills()) == 0 {
		return nil, errors.New("skill graph is empty, run `certify seed` first")
	}
	return g, nil
}

func (a *app) placementService(g *skillgraph.Graph) *placement.Service {
	st := a.store
	repos := placement.Repos{
		Assessments:       st.Assessments(),
		Challenges:        st.Challenges(),
		KnowledgeElements: st.KnowledgeElements(),
		TargetProfiles:    st.TargetProfiles(),
		Tx:                st,
	}
	var opts []placement.Option
	if a.cfg.PlacementMaxLength > 0 {
		opts = append(opts, placement.WithMaxLength(a.cfg.PlacementMaxLength))
	}
	return placement.NewService(repos, g, a.log.With("component", "placement"), opts...)
}

// scale returns the flash scale of the configured referential, or the
// default scale when none is configured.
func (a *app) scale() (flash.Scale, error) {
	if a.cfg.ReferentialPath == "" {
		return flash.DefaultScale(), nil
	}
	doc, err := referential.Load(a.cfg.ReferentialPath)
	if err != nil {
		return flash.Scale{}, err
	}
	return doc.FlashScale()
}

func (a *app) scoringService(g *skillgraph.Graph) (*scoring.Service, error) {
	scale, err := a.scale()
	if err != nil {
		return nil, err
	}
	st := a.store
	deps := scoring.Deps{
		Assessments:              st.Assessments(),
		CertificationAssessments: st.CertificationAssessments(),
		Courses:                  st.Courses(),
		Challenges:               st.Challenges(),
		KnowledgeElements:        st.KnowledgeElements(),
		FlashConfig:              st.FlashConfig(),
		Tx:                       st,
	}
	scorer := scoring.NewScorer(scale, a.cfg.MaxReachableLevel)
	return scoring.NewService(deps, g, scorer, a.log.With("component", "scoring"), nil), nil
}

// dispatcher wires completion events to scoring. Duplicate signals are
// filtered through Redis when CERTIFY_REDIS_ADDR is set, in process otherwise.
func (a *app) dispatcher(ctx context.Context, h events.Handler) (*events.Dispatcher, error) {
	var guard events.Guard
	if addr := a.cfg.Redis.Addr; addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect redis %s: %w", addr, err)
		}
		a.redis = rdb
		guard = events.NewRedisGuard(rdb, a.cfg.Redis.Prefix, a.cfg.Redis.ClaimTTL)
	}
	d := events.NewDispatcher(h, guard, a.log.With("component", "dispatcher"))
	d.Subscribe(func(_ context.Context, evt events.CertificationScoringCompleted) {
		a.log.Info("certification scoring completed",
			"course_id", evt.CertificationCourseID,
			"user_id", evt.UserID,
			"reproducibility_rate", evt.ReproducibilityRate,
		)
	})
	return d, nil
}

// referentialSink seeds the store from a referential document.
type referentialSink struct{ st *store.Store }

func (s referentialSink) SaveCompetences(ctx context.Context, c []skillgraph.Competence) error {
	return s.st.Skills().SaveCompetences(ctx, c)
}

func (s referentialSink) SaveSkills(ctx context.Context, sk []skillgraph.Skill) error {
	return s.st.Skills().SaveSkills(ctx, sk)
}

func (s referentialSink) SaveChallenges(ctx context.Context, c []assessment.Challenge) error {
	return s.st.Challenges().Save(ctx, c)
}

func (s referentialSink) SaveTargetProfile(ctx context.Context, id int64, skillIDs []string) error {
	return s.st.TargetProfiles().Save(ctx, id, skillIDs)
}

func (s referentialSink) SaveFlashConfig(ctx context.Context, c assessment.FlashAlgorithmConfiguration) error {
	return s.st.FlashConfig().Save(ctx, c)
}
