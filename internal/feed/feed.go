package feed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"paperbroker/internal/config"
	"paperbroker/pkg/common"
	"paperbroker/pkg/datasource/duckdb"
	"paperbroker/pkg/datasource/historical"
	"paperbroker/pkg/datasource/synthetic"
)

var ErrEndOfData = errors.New("end of data")

// Feed pulls bars one at a time regardless of the configured source kind.
type Feed struct {
	next    func() (common.Bar, error)
	cleanup func()
}

func (f *Feed) Next() (common.Bar, error) {
	return f.next()
}

func (f *Feed) Close() {
	if f.cleanup != nil {
		f.cleanup()
	}
}

func New(ctx context.Context, cfg *config.Config) (*Feed, error) {
	switch cfg.Data.Kind {
	case "historical":
		return newHistoricalFeed(cfg)
	case "duckdb":
		return newDuckdbFeed(ctx, cfg)
	case "synthetic":
		return newSyntheticFeed(cfg), nil
	default:
		return nil, fmt.Errorf("unknown data kind %q", cfg.Data.Kind)
	}
}

func newHistoricalFeed(cfg *config.Config) (*Feed, error) {
	source := historical.NewSource[historical.BinaryBar](cfg.Data.Path)
	if err := source.Open(); err != nil {
		return nil, err
	}

	reader := historical.NewBarReader(source, cfg.Data.Symbol, cfg.BarPeriod(), cfg.Data.From, cfg.Data.To)

	return &Feed{
		next: func() (common.Bar, error) {
			bar, err := reader.GetNext()
			if errors.Is(err, historical.ErrEof) {
				return bar, ErrEndOfData
			}
			return bar, err
		},
		cleanup: source.Close,
	}, nil
}

// newDuckdbFeed loads the full range up front. Bar data for a backtest window
// fits in memory and the pull interface stays uniform across source kinds.
func newDuckdbFeed(ctx context.Context, cfg *config.Config) (*Feed, error) {
	reader := duckdb.NewReader(cfg.Data.Path)
	if err := reader.Connect(); err != nil {
		return nil, err
	}
	defer reader.Close()

	var bars []common.Bar
	err := reader.LoadBars(ctx, cfg.Data.Symbol, cfg.BarPeriod(), cfg.Data.From, cfg.Data.To,
		func(bar common.Bar) error {
			bars = append(bars, bar)
			return nil
		})
	if err != nil {
		return nil, err
	}

	idx := 0
	return &Feed{
		next: func() (common.Bar, error) {
			if idx >= len(bars) {
				return common.Bar{}, ErrEndOfData
			}
			bar := bars[idx]
			idx++
			return bar, nil
		},
	}, nil
}

func newSyntheticFeed(cfg *config.Config) *Feed {
	rng := rand.New(rand.NewSource(cfg.Data.Seed)) // #nosec G404

	startTime := cfg.Data.From
	if startTime.IsZero() {
		startTime = time.Now()
	}

	generator := synthetic.NewEquityBarGenerator(
		cfg.Data.Symbol, rng, startTime, cfg.Data.Bars,
		cfg.Data.StartPrice, cfg.Data.Mu, cfg.Data.Sigma)

	return &Feed{
		next: func() (common.Bar, error) {
			bar, err := generator.GetNext()
			if errors.Is(err, synthetic.ErrEof) {
				return bar, ErrEndOfData
			}
			return bar, err
		},
	}
}
