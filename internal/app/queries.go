package app

import (
	"context"
	"fmt"
	"time"

	"hotel_reputation/internal/domain"
	"hotel_reputation/internal/ledger"
)

// UnknownSourceError is returned for a source name that is not in the catalog.
type UnknownSourceError struct{ Name string }

func (e *UnknownSourceError) Error() string { return fmt.Sprintf("unknown source %q", e.Name) }

func (e *UnknownSourceError) Is(target error) bool { return target == domain.ErrNotFound }

// QueryService serves read views over the ledgers, cached per source.
type QueryService struct {
	catalog  domain.Catalog
	dataDir  string
	history  domain.RunHistory // optional
	cache    domain.Cache      // optional
	cacheTTL time.Duration
}

func NewQueryService(cat domain.Catalog, dataDir string, h domain.RunHistory, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{catalog: cat, dataDir: dataDir, history: h, cache: c, cacheTTL: ttl}
}

func ledgerKey(source string) string { return "ledger:" + source }

func (s *QueryService) Sources() []domain.Source { return s.catalog.Sources }

func (s *QueryService) source(name string) (domain.Source, error) {
	src, ok := s.catalog.Source(name)
	if !ok {
		return domain.Source{}, &UnknownSourceError{Name: name}
	}
	return src, nil
}

func (s *QueryService) GetLedger(ctx context.Context, source string) (domain.LedgerView, error) {
	src, err := s.source(source)
	if err != nil {
		return domain.LedgerView{}, err
	}
	key := ledgerKey(src.Name)
	var v domain.LedgerView
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &v); ok {
			return v, nil
		}
	}
	l, err := ledger.Load(LedgerPath(s.dataDir, src), s.catalog.Hotels)
	if err != nil {
		return domain.LedgerView{}, err
	}
	v = l.View(src.Name)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
	}
	return v, nil
}

// GetCell reports one cell and whether it is missing. Unknown hotels and dates are
// reported as missing cells, not errors, so a caller can decide to fill them.
func (s *QueryService) GetCell(ctx context.Context, source string, hotel domain.HotelKey, date domain.DateColumn) (domain.CellView, error) {
	v, err := s.GetLedger(ctx, source)
	if err != nil {
		return domain.CellView{}, err
	}
	hotel = domain.NormalizeHotelKey(string(hotel))
	out := domain.CellView{Source: v.Source, Hotel: hotel, Date: date, Missing: true}
	for _, r := range v.Rows {
		if r.Hotel != hotel {
			continue
		}
		if score, ok := r.Scores[date]; ok {
			out.Value = &score
			out.Missing = false
		}
		break
	}
	return out, nil
}

// RunStatus re-reads the ledger file directly; it is never cached.
func (s *QueryService) RunStatus(ctx context.Context, source string, date domain.DateColumn) (domain.RunStatusView, error) {
	src, err := s.source(source)
	if err != nil {
		return domain.RunStatusView{}, err
	}
	// an unreadable ledger is reported as a failed run, not a request error
	ins, st, _ := ledger.Check(LedgerPath(s.dataDir, src), date)
	return domain.RunStatusView{
		Source: src.Name, Date: date, Status: st,
		Exists: ins.Exists, HasDate: ins.HasDate, Scored: ins.Scored, Total: ins.Total,
	}, nil
}

func (s *QueryService) ListRuns(ctx context.Context, source string, limit int) ([]domain.RunRecord, error) {
	src, err := s.source(source)
	if err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.RunRecord{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.history.ListRuns(ctx, src.Name, limit)
}

func (s *QueryService) ListMisses(ctx context.Context, source string, date domain.DateColumn) ([]domain.Miss, error) {
	src, err := s.source(source)
	if err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.Miss{}, nil
	}
	return s.history.ListMisses(ctx, src.Name, date)
}

// Invalidate drops the cached view of a source after its ledger changed.
func (s *QueryService) Invalidate(ctx context.Context, source string) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, ledgerKey(source))
	}
}
