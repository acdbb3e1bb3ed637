package runner

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"solveragent/results"
	"solveragent/testenv"
	"solveragent/util"
)

const defaultPortBase = 9876

// RunBatchExperiment runs every agent spec against every domain, each
// pair as a fully isolated run: its own agent, value function and
// environment. Nothing is shared between runs, so they proceed
// concurrently. When no external environment URL is configured, each
// run gets a local built-in server on its own port.
func RunBatchExperiment(ctx context.Context, cfg BatchConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	experimentID := util.RandomID()
	logger.Info("starting batch experiment", "experiment", experimentID)

	if cfg.ResultsDir == "" {
		cfg.ResultsDir = "results"
	}
	if cfg.EnvironmentPortBase == 0 {
		cfg.EnvironmentPortBase = defaultPortBase
	}
	recordBatchConfig(cfg, experimentID, logger)

	g, ctx := errgroup.WithContext(ctx)
	runIDs := make([]string, 0, len(cfg.Domains)*len(cfg.Agents))

	index := 0
	for _, domain := range cfg.Domains {
		for _, agent := range cfg.Agents {
			domain, agent := domain, agent
			port := cfg.EnvironmentPortBase + index
			index++

			url := cfg.EnvironmentURL
			var server *testenv.Server
			if url == "" {
				server = testenv.NewServer()
				url = fmt.Sprintf("http://localhost:%d", port)
			}
			runIDs = append(runIDs, fmt.Sprintf("%s-%s-%s", experimentID, agent.Name, domain))

			g.Go(func() error {
				if server != nil {
					go func() {
						if err := server.Start(port); err != nil {
							logger.Error("environment server failed", "port", port, "err", err)
						}
					}()
					defer func() {
						shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
						defer cancel()
						server.Shutdown(shCtx)
					}()
					// give the listener a moment before the first request
					time.Sleep(100 * time.Millisecond)
				}

				runCfg := RunConfig{
					ExperimentID:    experimentID,
					EnvironmentURL:  url,
					Domain:          domain,
					Agent:           agent,
					QFunction:       cfg.QFunction,
					EvalEnvironment: cfg.EvalEnvironment,
					ResultsDir:      cfg.ResultsDir,
					RedisAddr:       cfg.RedisAddr,
				}
				logger.Info("running batch entry", "agent", agent.Name, "domain", domain)
				return RunAgentExperiment(ctx, runCfg, logger)
			})
		}
	}

	err := g.Wait()

	if plotErr := plotBatch(ctx, cfg, runIDs, logger); plotErr != nil {
		logger.Error("plotting batch results", "err", plotErr)
	}
	return err
}

func recordBatchConfig(cfg BatchConfig, experimentID string, logger *slog.Logger) {
	bs, err := yaml.Marshal(cfg)
	if err != nil {
		logger.Error("recording batch config", "err", err)
		return
	}
	savePath := path.Join(cfg.ResultsDir, experimentID+"-config.yaml")
	if err := util.WriteToFile(savePath, string(bs)); err != nil {
		logger.Error("recording batch config", "err", err)
	}
}

// plotBatch draws the success-rate curves of all runs into one figure.
func plotBatch(ctx context.Context, cfg BatchConfig, runIDs []string, logger *slog.Logger) error {
	var store results.Store
	if cfg.RedisAddr != "" {
		store = results.NewRedisStore(cfg.RedisAddr)
	} else {
		fs, err := results.NewFileStore(cfg.ResultsDir, logger)
		if err != nil {
			return err
		}
		store = fs
	}

	runs := make(map[string][]results.Record)
	for _, runID := range runIDs {
		records, err := store.Load(ctx, runID)
		if err != nil || len(records) == 0 {
			continue
		}
		runs[runID] = records
	}
	if len(runs) == 0 {
		return nil
	}
	return results.PlotSuccessRate(runs, path.Join(cfg.ResultsDir, "success_rate.png"))
}
