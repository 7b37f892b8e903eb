package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/entolab/isympred/internal/engine"
	"github.com/entolab/isympred/internal/hostctx"
	"github.com/entolab/isympred/internal/hoststore"
	"github.com/entolab/isympred/internal/model"
	"github.com/entolab/isympred/internal/refstore"
	"github.com/entolab/isympred/internal/store"
	"github.com/entolab/isympred/internal/tableio"
)

// predictEnv bundles the loaded reference records, host taxonomy resolver,
// and run log shared by the predict, batch, and serve commands.
type predictEnv struct {
	refs    refstore.Store
	records []*model.ReferenceRecord
	hosts   *hoststore.SQLiteResolver
	runlog  store.Store
}

// initPredictEnv opens the reference store, loads all records, and opens the
// host taxonomy store and run log.
func initPredictEnv(ctx context.Context) (*predictEnv, error) {
	if err := cfg.Validate("predict"); err != nil {
		return nil, err
	}

	refs, err := openRefstore(ctx)
	if err != nil {
		return nil, err
	}
	if err := refs.Migrate(ctx); err != nil {
		refs.Close() //nolint:errcheck
		return nil, err
	}

	records, err := refs.Load(ctx)
	if err != nil {
		refs.Close() //nolint:errcheck
		return nil, err
	}
	zap.L().Info("reference records loaded", zap.Int("records", len(records)))

	hosts, err := hoststore.NewSQLite(cfg.Hosts.Path)
	if err != nil {
		refs.Close() //nolint:errcheck
		return nil, err
	}
	if err := hosts.Migrate(ctx); err != nil {
		hosts.Close() //nolint:errcheck
		refs.Close()  //nolint:errcheck
		return nil, err
	}

	runlog, err := store.NewSQLite(cfg.Runs.Path)
	if err != nil {
		hosts.Close() //nolint:errcheck
		refs.Close()  //nolint:errcheck
		return nil, err
	}
	if err := runlog.Migrate(ctx); err != nil {
		runlog.Close() //nolint:errcheck
		hosts.Close()  //nolint:errcheck
		refs.Close()   //nolint:errcheck
		return nil, err
	}

	return &predictEnv{refs: refs, records: records, hosts: hosts, runlog: runlog}, nil
}

func (e *predictEnv) Close() {
	e.runlog.Close() //nolint:errcheck
	e.hosts.Close()  //nolint:errcheck
	e.refs.Close()   //nolint:errcheck
}

// newEngine builds a scoring engine for one host. An empty host disables
// host weighting.
func (e *predictEnv) newEngine(ctx context.Context, host string) (*engine.Engine, error) {
	profile, err := hostctx.ResolveProfile(ctx, e.hosts, host)
	if err != nil {
		return nil, err
	}
	weigher := hostctx.NewWeigher(profile)
	if cfg.Predict.DeriveRecordFamily {
		weigher = weigher.WithFamilyDerivation(ctx, e.hosts)
	}
	return engine.New(e.records, weigher), nil
}

// predictFile runs one abundance table end to end: read, score, write both
// output tables, and record the run. Returns the result and the functions
// table path.
func (e *predictEnv) predictFile(ctx context.Context, input, host, outBase string) (*engine.Result, string, error) {
	run, err := e.runlog.CreateRun(ctx, input, host)
	if err != nil {
		return nil, "", err
	}

	result, funcPath, err := func() (*engine.Result, string, error) {
		rows, err := tableio.ReadAbundance(input)
		if err != nil {
			return nil, "", err
		}

		eng, err := e.newEngine(ctx, host)
		if err != nil {
			return nil, "", err
		}

		result, err := eng.Predict(rows)
		if err != nil {
			return nil, "", err
		}

		if outBase == "" {
			outBase = filepath.Join(cfg.Predict.OutDir, filepath.Base(input))
		}
		funcPath := tableio.FunctionsPath(outBase)
		if err := tableio.WriteFunctions(funcPath, result.Summaries); err != nil {
			return nil, "", err
		}
		if err := tableio.WriteCandidates(tableio.CandidatesPath(outBase), result.Candidates); err != nil {
			return nil, "", err
		}
		return result, funcPath, nil
	}()

	if err != nil {
		if fErr := e.runlog.FailRun(ctx, run.ID, err); fErr != nil {
			zap.L().Warn("run log update failed", zap.String("run", run.ID), zap.Error(fErr))
		}
		return nil, "", eris.Wrapf(err, "predict %s", input)
	}

	if cErr := e.runlog.CompleteRun(ctx, run.ID, &result.Stats); cErr != nil {
		zap.L().Warn("run log update failed", zap.String("run", run.ID), zap.Error(cErr))
	}
	return result, funcPath, nil
}

func openRefstore(ctx context.Context) (refstore.Store, error) {
	backend := strings.ToLower(cfg.Refstore.Backend)
	dsn := cfg.Refstore.Path
	if backend == "postgres" {
		dsn = cfg.Refstore.DatabaseURL
	}
	return refstore.Open(ctx, backend, dsn)
}
