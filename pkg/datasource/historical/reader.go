package historical

import (
	"fmt"
	"time"

	"paperbroker/pkg/common"
	"paperbroker/pkg/utility"
	"paperbroker/pkg/utility/fixed"
)

const (
	invalidIndex           = -1
	barReaderComponentName = "datasource.historical.reader"
)

// BinaryBar is the on-disk record layout. All fields are 8 bytes wide so the
// struct carries no padding and can be memory-mapped directly.
type BinaryBar struct {
	TimeStamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

func (binaryBar BinaryBar) ToModelBar(bar *common.Bar) {
	bar.TimeStamp = time.Unix(0, binaryBar.TimeStamp)
	bar.Open = fixed.FromFloat64(binaryBar.Open)
	bar.High = fixed.FromFloat64(binaryBar.High)
	bar.Low = fixed.FromFloat64(binaryBar.Low)
	bar.Close = fixed.FromFloat64(binaryBar.Close)
	bar.Volume = fixed.FromFloat64(binaryBar.Volume)
}

type BarReader struct {
	source *Source[BinaryBar]

	symbol string
	period time.Duration
	from   int64
	to     int64
	idx    int64
}

func NewBarReader(source *Source[BinaryBar], symbol string, period time.Duration, from, to time.Time) *BarReader {
	return &BarReader{
		source: source,
		symbol: symbol,
		period: period,
		from:   from.UnixNano(),
		to:     to.UnixNano(),
		idx:    invalidIndex,
	}
}

func (r *BarReader) GetNext() (common.Bar, error) {

	var bar common.Bar
	var binBar BinaryBar

	if r.idx == invalidIndex {
		if err := r.lookupStartIndex(); err != nil {
			return bar, err
		}
	}

	if err := r.source.Read(r.idx, &binBar); err != nil {
		return bar, fmt.Errorf("error reading entry at index %d: %w", r.idx, err)
	}
	r.idx++

	if binBar.TimeStamp < r.from {
		return bar, fmt.Errorf("timestamp is not from the proposed range")
	}

	if binBar.TimeStamp > r.to {
		return bar, ErrEof
	}

	binBar.ToModelBar(&bar)

	bar.Source = barReaderComponentName
	bar.Symbol = r.symbol
	bar.Period = r.period
	bar.ExecutionId = utility.GetExecutionID()
	bar.TraceID = utility.CreateTraceID()

	return bar, nil
}

func (r *BarReader) lookupStartIndex() error {
	entryCount, err := r.source.EntryCount()
	if err != nil {
		return fmt.Errorf("error getting entry count: %w", err)
	}

	if entryCount == 0 {
		return fmt.Errorf("entry count is zero")
	}

	var entry BinaryBar

	low := int64(0)
	high := entryCount - 1

	for low <= high {
		mid := (low + high) / 2

		if err := r.source.Read(mid, &entry); err != nil {
			return fmt.Errorf("error reading entry at index %d: %w", mid, err)
		}

		if entry.TimeStamp < r.from {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	if low >= entryCount {
		return fmt.Errorf("no entry found with timestamp >= from")
	}

	r.idx = low
	return nil
}
