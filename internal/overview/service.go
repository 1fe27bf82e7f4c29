package overview

import (
	"context"
	"sort"
	"time"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/marketdata"
	"github.com/stonksapi/backend/internal/marketdata/yahoo"
	"github.com/stonksapi/backend/pkg/logger"
)

// ModelLister enumerates the symbols that have trained models on disk.
type ModelLister interface {
	Symbols() ([]string, error)
}

// SeriesSource yields cached price series for the overview quotes.
type SeriesSource interface {
	Get(ctx context.Context, symbol, period string, interval market.Interval) (marketdata.Series, error)
}

// NameSource resolves a symbol's display name.
type NameSource interface {
	FetchTickerInfo(ctx context.Context, symbol string) (*yahoo.TickerInfo, error)
}

// Entry is one symbol's overview row: the latest close and its change
// over the last five trading days.
type Entry struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name,omitempty"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	AsOf          time.Time `json:"as_of"`
}

// Service assembles the tracked-symbols overview. Only symbols with a
// trained model are tracked.
type Service struct {
	models ModelLister
	source SeriesSource
	names  NameSource
	logger *logger.Logger
}

// NewService creates an overview service. names may be nil to skip
// display-name lookups.
func NewService(models ModelLister, source SeriesSource, names NameSource, log *logger.Logger) *Service {
	return &Service{
		models: models,
		source: source,
		names:  names,
		logger: log.WithField("component", "overview"),
	}
}

// Overview returns one entry per tracked symbol, sorted by symbol.
// A symbol whose quote cannot be fetched is skipped with a warning
// rather than failing the whole listing.
func (s *Service) Overview(ctx context.Context) ([]Entry, error) {
	symbols, err := s.models.Symbols()
	if err != nil {
		return nil, err
	}
	sort.Strings(symbols)

	entries := make([]Entry, 0, len(symbols))
	for _, symbol := range symbols {
		entry, err := s.entryFor(ctx, symbol)
		if err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Warn("Skipping symbol in overview")
			continue
		}
		entries = append(entries, *entry)
	}

	return entries, nil
}

func (s *Service) entryFor(ctx context.Context, symbol string) (*Entry, error) {
	series, err := s.source.Get(ctx, symbol, "5d", market.Interval1d)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, marketdata.ErrNoData
	}

	last := series[len(series)-1]
	first := series[0]

	entry := &Entry{
		Symbol: symbol,
		Price:  last.Close,
		Change: last.Close - first.Close,
		AsOf:   last.Timestamp,
	}
	if first.Close != 0 {
		entry.ChangePercent = (last.Close - first.Close) / first.Close * 100
	}

	if s.names != nil {
		info, err := s.names.FetchTickerInfo(ctx, symbol)
		if err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Debug("Ticker name lookup failed")
		} else {
			entry.Name = info.Name
		}
	}

	return entry, nil
}
