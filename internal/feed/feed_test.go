package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperbroker/internal/config"
)

func syntheticConfig(bars int64) *config.Config {
	return &config.Config{
		Account: config.Account{StartCash: 100000},
		Data: config.Data{
			Kind:       "synthetic",
			Symbol:     "ACME",
			Seed:       7,
			Bars:       bars,
			StartPrice: 100,
			Mu:         0.05,
			Sigma:      0.2,
			From:       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestNew_Synthetic(t *testing.T) {
	f, err := New(context.Background(), syntheticConfig(5))
	require.NoError(t, err)
	defer f.Close()

	count := 0
	for {
		bar, err := f.Next()
		if err != nil {
			require.ErrorIs(t, err, ErrEndOfData)
			break
		}
		assert.Equal(t, "ACME", bar.Symbol)
		count++
	}
	assert.Equal(t, 5, count)
}

func TestNew_UnknownKind(t *testing.T) {
	cfg := syntheticConfig(5)
	cfg.Data.Kind = "csv"

	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown data kind")
}
