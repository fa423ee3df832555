package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// FromCSV reads a bar series from CSV data with a header row of
// timestamp,open,high,low,close,volume. Timestamps are RFC 3339 or
// YYYY-MM-DD dates.
func FromCSV(r io.Reader) (*Feed, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var bars []Bar
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		bar, err := parseBar(record, cols)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	return NewFeed(bars)
}

type barColumns struct {
	timestamp, open, high, low, close, volume int
}

func columnIndex(header []string) (barColumns, error) {
	cols := barColumns{timestamp: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp", "date":
			cols.timestamp = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.close = i
		case "volume":
			cols.volume = i
		}
	}
	if cols.timestamp < 0 || cols.open < 0 || cols.high < 0 || cols.low < 0 || cols.close < 0 || cols.volume < 0 {
		return cols, fmt.Errorf("csv header must contain timestamp, open, high, low, close and volume columns")
	}
	return cols, nil
}

func parseBar(record []string, cols barColumns) (Bar, error) {
	ts, err := parseTimestamp(record[cols.timestamp])
	if err != nil {
		return Bar{}, err
	}

	open, err := strconv.ParseFloat(record[cols.open], 64)
	if err != nil {
		return Bar{}, fmt.Errorf("bad open %q", record[cols.open])
	}
	high, err := strconv.ParseFloat(record[cols.high], 64)
	if err != nil {
		return Bar{}, fmt.Errorf("bad high %q", record[cols.high])
	}
	low, err := strconv.ParseFloat(record[cols.low], 64)
	if err != nil {
		return Bar{}, fmt.Errorf("bad low %q", record[cols.low])
	}
	closePrice, err := strconv.ParseFloat(record[cols.close], 64)
	if err != nil {
		return Bar{}, fmt.Errorf("bad close %q", record[cols.close])
	}
	volume, err := strconv.ParseInt(record[cols.volume], 10, 64)
	if err != nil {
		return Bar{}, fmt.Errorf("bad volume %q", record[cols.volume])
	}

	return Bar{
		Timestamp: ts,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", value)
}
