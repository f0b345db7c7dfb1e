// Package batch drives the sequential geocode-classify-checkpoint loop over a
// POI set. Processing is strictly one POI at a time: the rate limit on the
// Nominatim client assumes no overlapping requests.
package batch

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/brandonbuckley/uber-top100-POIs/internal/checkpoint"
	"github.com/brandonbuckley/uber-top100-POIs/internal/classify"
	"github.com/brandonbuckley/uber-top100-POIs/internal/model"
	"github.com/brandonbuckley/uber-top100-POIs/internal/store"
	"github.com/brandonbuckley/uber-top100-POIs/pkg/nominatim"
)

// DefaultCheckpointEvery is how many POIs are processed between checkpoint
// writes.
const DefaultCheckpointEvery = 10

// Engine runs the classification batch.
type Engine struct {
	geocoder        nominatim.Client
	classifier      *classify.Classifier
	ckpt            *checkpoint.File
	runs            store.Store // optional; nil disables run bookkeeping
	checkpointEvery int
	progress        bool
}

// Config holds the engine dependencies.
type Config struct {
	Geocoder        nominatim.Client
	Classifier      *classify.Classifier
	Checkpoint      *checkpoint.File
	Runs            store.Store
	CheckpointEvery int
	Progress        bool
}

// NewEngine creates a batch engine.
func NewEngine(cfg Config) *Engine {
	every := cfg.CheckpointEvery
	if every <= 0 {
		every = DefaultCheckpointEvery
	}
	return &Engine{
		geocoder:        cfg.Geocoder,
		classifier:      cfg.Classifier,
		ckpt:            cfg.Checkpoint,
		runs:            cfg.Runs,
		checkpointEvery: every,
		progress:        cfg.Progress,
	}
}

// Run processes the POI set and returns the full ordered record sequence,
// including records recovered from a previous checkpoint. Per-POI geocode
// failures never abort the batch; cancellation flushes the checkpoint and
// returns the context error alongside the records accumulated so far.
func (e *Engine) Run(ctx context.Context, input string, pois []model.POI) ([]model.Record, error) {
	log := zap.L().With(zap.String("component", "batch.engine"))

	records, err := e.ckpt.Load()
	if err != nil {
		return nil, err
	}

	it := checkpoint.Resume(pois, records)
	if it.Skipped() > 0 {
		log.Info("resuming from checkpoint",
			zap.Int("already_processed", it.Skipped()),
			zap.Int("remaining", it.Remaining()),
		)
	}

	var counts model.TierCounts
	for _, rec := range records {
		counts.Add(rec)
	}

	run := e.startRun(ctx, input, len(pois))

	var bar *progressbar.ProgressBar
	if e.progress && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(it.Remaining(),
			progressbar.OptionSetDescription("Classifying POIs"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	sinceCheckpoint := 0
	for {
		poi, ok := it.Next()
		if !ok {
			break
		}

		if ctx.Err() != nil {
			return e.interrupt(ctx, run, records, counts)
		}

		rec := e.processOne(ctx, poi)
		if ctx.Err() != nil {
			// The geocode call was cut short by cancellation; don't
			// record a spurious failure for this POI.
			return e.interrupt(ctx, run, records, counts)
		}

		records = append(records, rec)
		counts.Add(rec)
		sinceCheckpoint++

		if bar != nil {
			_ = bar.Add(1)
		}

		log.Debug("classified POI",
			zap.Int64("poi_id", poi.ID),
			zap.String("name", poi.Name),
			zap.String("tier", string(rec.Tier)),
			zap.String("evidence", rec.Evidence),
		)

		if sinceCheckpoint >= e.checkpointEvery {
			if err := e.ckpt.Write(records); err != nil {
				return records, err
			}
			e.updateRun(ctx, run, len(records), counts)
			sinceCheckpoint = 0
			log.Info("checkpoint saved",
				zap.Int("processed", len(records)),
				zap.Int("total", len(pois)),
			)
		}
	}

	// Finalize.
	if err := e.ckpt.Write(records); err != nil {
		return records, err
	}
	e.updateRun(ctx, run, len(records), counts)
	e.finishRun(ctx, run, model.RunStatusCompleted)

	log.Info("batch complete",
		zap.Int("processed", len(records)),
		zap.Int("identified", counts.Identified()),
		zap.Int("unresolved", counts.Unresolved),
	)
	return records, nil
}

// processOne geocodes and classifies a single POI. Geocode failure downgrades
// to a tier-none record rather than an error.
func (e *Engine) processOne(ctx context.Context, poi model.POI) model.Record {
	rec := model.Record{POI: poi}

	geo, err := e.geocoder.Reverse(ctx, poi.Latitude, poi.Longitude)
	if err != nil {
		zap.L().Warn("geocode failed",
			zap.Int64("poi_id", poi.ID),
			zap.String("name", poi.Name),
			zap.Error(err),
		)
		rec.Tier = model.TierNone
		rec.Evidence = "geocode failed: " + err.Error()
		rec.Err = err.Error()
		return rec
	}

	outcome := e.classifier.Classify(classify.Input{
		Name:     poi.Name,
		Category: poi.Category,
		Geo:      geo,
	})

	rec.Tier = outcome.Tier
	rec.Evidence = outcome.Evidence
	rec.FacilityName = outcome.FacilityName
	if geo != nil && geo.Matched {
		rec.PlaceType = geo.PlaceType
		rec.Address = geo.Address.Format()
	}
	return rec
}

func (e *Engine) interrupt(ctx context.Context, run *model.Run, records []model.Record, counts model.TierCounts) ([]model.Record, error) {
	// Flush with a background context: the run context is already dead.
	if err := e.ckpt.Write(records); err != nil {
		zap.L().Error("failed to flush checkpoint on interrupt", zap.Error(err))
	}
	e.updateRun(context.WithoutCancel(ctx), run, len(records), counts)
	e.finishRun(context.WithoutCancel(ctx), run, model.RunStatusInterrupted)
	zap.L().Warn("batch interrupted",
		zap.Int("processed", len(records)),
		zap.String("checkpoint", e.ckpt.Path()),
	)
	return records, ctx.Err()
}

func (e *Engine) startRun(ctx context.Context, input string, total int) *model.Run {
	if e.runs == nil {
		return nil
	}
	run, err := e.runs.CreateRun(ctx, input, total)
	if err != nil {
		zap.L().Warn("failed to record run start", zap.Error(err))
		return nil
	}
	return run
}

func (e *Engine) updateRun(ctx context.Context, run *model.Run, processed int, counts model.TierCounts) {
	if e.runs == nil || run == nil {
		return
	}
	if err := e.runs.UpdateProgress(ctx, run.ID, processed, counts); err != nil {
		zap.L().Warn("failed to record run progress", zap.Error(err))
	}
}

func (e *Engine) finishRun(ctx context.Context, run *model.Run, status model.RunStatus) {
	if e.runs == nil || run == nil {
		return
	}
	if err := e.runs.FinishRun(ctx, run.ID, status); err != nil {
		zap.L().Warn("failed to record run finish", zap.Error(err))
	}
}
