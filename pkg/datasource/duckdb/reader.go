package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"paperbroker/pkg/common"
	"paperbroker/pkg/utility"
	"paperbroker/pkg/utility/fixed"
)

const readerComponentName = "datasource.duckdb.reader"

// Reader streams bars out of a duckdb database. Bars for a symbol live in a
// table named <symbol>_bars with columns ts, open, high, low, close, volume.
type Reader struct {
	dataSourceName string
	db             *sql.DB
}

func NewReader(dataSourceName string) *Reader {
	return &Reader{
		dataSourceName: dataSourceName,
	}
}

func (r *Reader) Connect() error {
	db, err := sql.Open("duckdb", r.dataSourceName)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	r.db = db
	return nil
}

func (r *Reader) Close() {
	_ = r.db.Close()
}

func (r *Reader) LoadBars(ctx context.Context, symbol string, period time.Duration, from, to time.Time, handler func(bar common.Bar) error) error {

	query := fmt.Sprintf(`SELECT ts, open, high, low, close, volume FROM %s_bars WHERE ts BETWEEN ? AND ? ORDER BY ts`, symbol)

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return fmt.Errorf("error preparing query: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			panic(err)
		}
	}(rows)

	for rows.Next() {
		var timeStamp time.Time
		var open, high, low, closePx, volume float64

		if err := rows.Scan(&timeStamp, &open, &high, &low, &closePx, &volume); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}

		bar := common.Bar{
			Source:      readerComponentName,
			Symbol:      symbol,
			ExecutionId: utility.GetExecutionID(),
			TraceID:     utility.CreateTraceID(),
			TimeStamp:   timeStamp,
			Period:      period,
			Open:        fixed.FromFloat64(open),
			High:        fixed.FromFloat64(high),
			Low:         fixed.FromFloat64(low),
			Close:       fixed.FromFloat64(closePx),
			Volume:      fixed.FromFloat64(volume),
		}

		if err := handler(bar); err != nil {
			return fmt.Errorf("error processing bar: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error scanning rows: %w", err)
	}

	return nil
}
