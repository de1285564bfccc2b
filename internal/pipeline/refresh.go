package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coalwatch/coalwatch/internal/domain"
)

// FacilitySource supplies the raw unit records for the refresh run.
type FacilitySource interface {
	Facilities(ctx context.Context) ([]domain.SourceRecord, error)
}

// RunSummary describes one completed refresh run for the history archive.
type RunSummary struct {
	RanAt           time.Time
	FacilityCount   int
	UnitCount       int
	ActiveUnitCount int
	CurrentPowerMW  float64
	SnapshotURL     string
}

// RunRecorder archives refresh runs. May be nil; recording failures never
// fail the run.
type RunRecorder interface {
	RecordRun(ctx context.Context, summary RunSummary) error
}

// Refresher runs the full refresh pipeline: fetch records, reconcile,
// publish. Runs are serial by construction; if an environment manages to
// overlap two runs anyway, the last snapshot writer wins.
type Refresher struct {
	source     FacilitySource
	reconciler *Reconciler
	publisher  *Publisher
	history    RunRecorder
	times      domain.Timebase
}

func NewRefresher(source FacilitySource, reconciler *Reconciler, publisher *Publisher, history RunRecorder, times domain.Timebase) *Refresher {
	return &Refresher{
		source:     source,
		reconciler: reconciler,
		publisher:  publisher,
		history:    history,
		times:      times,
	}
}

// Result is what a successful refresh produced.
type Result struct {
	Data *domain.FacilityData
	URL  string
}

// Run executes one refresh. A facility-list fetch failure or a publish
// failure is returned as an error: with no facilities there is no meaningful
// snapshot, and the previous one stays live for consumers.
func (r *Refresher) Run(ctx context.Context) (*Result, error) {
	log.Debug().Msg("fetching facility list")
	records, err := r.source.Facilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("facility list: %w", err)
	}
	log.Debug().Int("records", len(records)).Msg("fetched facility records")

	now := r.times.Now()
	data := r.reconciler.Reconcile(ctx, records, now)

	url, err := r.publisher.Publish(ctx, data)
	if err != nil {
		return nil, err
	}
	log.Info().Str("url", url).Int("facilities", len(data.Facilities)).
		Msg("snapshot published")

	if r.history != nil {
		if err := r.history.RecordRun(ctx, summarize(data, url)); err != nil {
			log.Warn().Err(err).Msg("run history record failed")
		}
	}
	return &Result{Data: data, URL: url}, nil
}

func summarize(data *domain.FacilityData, url string) RunSummary {
	s := RunSummary{
		RanAt:         data.LastUpdated,
		FacilityCount: len(data.Facilities),
		SnapshotURL:   url,
	}
	for _, f := range data.Facilities {
		s.UnitCount += len(f.Units)
		for _, u := range f.Units {
			if u.Active {
				s.ActiveUnitCount++
				if u.CurrentPower != nil {
					s.CurrentPowerMW += *u.CurrentPower
				}
			}
		}
	}
	return s
}
