package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_reputation/internal/adapters/observability"
	"hotel_reputation/internal/domain"
	"hotel_reputation/internal/ledger"
	"hotel_reputation/internal/scoring"
)

// LedgerPath resolves a source's ledger file against the data directory.
func LedgerPath(dataDir string, src domain.Source) string {
	name := src.Ledger
	if name == "" {
		name = src.Name + "_scores.csv"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dataDir, name)
}

// SourceReport is the outcome of one source run.
type SourceReport struct {
	RunID      string
	Source     string
	Date       domain.DateColumn
	Status     domain.RunStatus
	Inspection ledger.Inspection
	Scores     map[domain.HotelKey]*float64
	Misses     []domain.Miss
}

// CollectService runs the per-source pipeline:
// fetch -> extract -> resolve -> load -> reconcile -> save -> validate.
type CollectService struct {
	fetcher domain.PageFetcher
	history domain.RunHistory // optional
	hotels  []domain.HotelKey
	dataDir string
}

func NewCollectService(f domain.PageFetcher, h domain.RunHistory, hotels []domain.HotelKey, dataDir string) *CollectService {
	return &CollectService{fetcher: f, history: h, hotels: hotels, dataDir: dataDir}
}

// CollectSource is single-threaded within a source. A fetch failure or an empty
// extraction leaves the hotel absent; only ledger errors fail the run.
func (s *CollectService) CollectSource(ctx context.Context, src domain.Source, date domain.DateColumn) (SourceReport, error) {
	rep := SourceReport{
		RunID:  uuid.NewString(),
		Source: src.Name,
		Date:   date,
		Scores: make(map[domain.HotelKey]*float64, len(s.hotels)),
	}
	started := time.Now()
	lg := log.With().Str("source", src.Name).Str("date", string(date)).Str("run_id", rep.RunID).Logger()

	ex := scoring.New(src.Selectors)
	miss := func(h domain.HotelKey, reason string) {
		rep.Misses = append(rep.Misses, domain.Miss{Source: src.Name, Hotel: h, Date: date, Reason: reason})
		observability.ObserveResolution(src.Name, reason)
	}

	for _, h := range s.hotels {
		rep.Scores[h] = nil
		reqs := BuildRequests(src.Request, src.Targets[h])
		if len(reqs) == 0 {
			miss(h, domain.MissNoTarget)
			continue
		}
		payload, err := s.fetcher.FetchFirst(ctx, reqs)
		if err != nil {
			if ctx.Err() != nil {
				return rep, ctx.Err()
			}
			lg.Warn().Err(err).Str("hotel", string(h)).Msg("fetch failed")
			miss(h, domain.MissFetch)
			continue
		}

		cands := ex.Extract(payload, src.Scale)
		countByStrategy(src.Name, cands)
		best, ok := scoring.Best(cands)
		if !ok {
			lg.Info().Str("hotel", string(h)).Msg("no score candidate")
			miss(h, domain.MissNoMatch)
			continue
		}
		v := best.Value
		rep.Scores[h] = &v
		lg.Debug().Str("hotel", string(h)).Float64("score", v).
			Str("strategy", string(best.Strategy)).Str("detail", best.Detail).Int("rank", best.Rank).
			Msg("score resolved")
	}

	path := LedgerPath(s.dataDir, src)
	l, err := ledger.Load(path, s.hotels)
	if err != nil {
		rep.Status = domain.RunFailed
		s.finish(ctx, &rep, started)
		return rep, fmt.Errorf("load ledger for %s: %w", src.Name, err)
	}

	res, err := NewReconciler(src.Scale).ApplyRun(l, date, rep.Scores)
	if err != nil {
		rep.Status = domain.RunFailed
		s.finish(ctx, &rep, started)
		return rep, fmt.Errorf("apply run for %s: %w", src.Name, err)
	}
	for _, h := range res.Dropped {
		rep.Scores[h] = nil
		miss(h, domain.MissRange)
	}
	for range res.Written {
		observability.ObserveResolution(src.Name, "scored")
	}
	observability.ObserveLedgerWrite(src.Name, "run")

	rep.Inspection, rep.Status, err = ledger.Check(path, date)
	if err != nil {
		lg.Error().Err(err).Msg("saved ledger failed validation")
	}
	s.finish(ctx, &rep, started)

	lg.Info().Str("status", string(rep.Status)).
		Int("scored", rep.Inspection.Scored).Int("total", rep.Inspection.Total).
		Int("misses", len(rep.Misses)).Msg("source run finished")
	return rep, nil
}

// finish records the run in history. History is best effort; it never fails a run.
func (s *CollectService) finish(ctx context.Context, rep *SourceReport, started time.Time) {
	observability.ObserveRun(rep.Source, string(rep.Status))
	if s.history == nil {
		return
	}
	rec := domain.RunRecord{
		ID:         rep.RunID,
		Source:     rep.Source,
		Date:       rep.Date,
		Status:     rep.Status,
		Scored:     rep.Inspection.Scored,
		Total:      rep.Inspection.Total,
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
	}
	var errs []error
	if err := s.history.RecordRun(ctx, rec); err != nil {
		errs = append(errs, err)
	}
	for _, m := range rep.Misses {
		if err := s.history.LogMiss(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Warn().Err(err).Str("source", rep.Source).Msg("run history not recorded")
	}
}

func countByStrategy(source string, cands []domain.Candidate) {
	n := map[domain.Strategy]int{}
	for _, c := range cands {
		n[c.Strategy]++
	}
	for st, k := range n {
		observability.ObserveCandidates(source, string(st), k)
	}
}
