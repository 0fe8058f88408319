// Package csvstore reads market and user data files and writes bar files.
package csvstore

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/usdbars/internal/domain"
)

const (
	marketColumns = 3 // symbol,timestamp,price
	userColumns   = 4 // user_id,currency,timestamp,delta
)

// ReadQuotes loads market_data.csv into per-symbol quote series in file order.
func ReadQuotes(path string) (map[string][]domain.Quote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open market data")
	}
	defer f.Close()

	return DecodeQuotes(f, path)
}

// DecodeQuotes parses market data rows from r. name is used in error messages.
func DecodeQuotes(r io.Reader, name string) (map[string][]domain.Quote, error) {
	series := make(map[string][]domain.Quote)

	err := readRows(r, name, marketColumns, func(line int, record []string) error {
		ts, err := parseTimestamp(record[1])
		if err != nil {
			return malformed(name, line, "timestamp", record[1], err)
		}
		price, err := decimal.NewFromString(record[2])
		if err != nil {
			return malformed(name, line, "price", record[2], err)
		}

		symbol := record[0]
		series[symbol] = append(series[symbol], domain.NewQuote(ts, price))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return series, nil
}

// ReadEvents loads user_data.csv preserving file order.
func ReadEvents(path string) ([]domain.LedgerEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open user data")
	}
	defer f.Close()

	return DecodeEvents(f, path)
}

// DecodeEvents parses ledger rows from r. name is used in error messages.
func DecodeEvents(r io.Reader, name string) ([]domain.LedgerEvent, error) {
	var events []domain.LedgerEvent

	err := readRows(r, name, userColumns, func(line int, record []string) error {
		ts, err := parseTimestamp(record[2])
		if err != nil {
			return malformed(name, line, "timestamp", record[2], err)
		}
		delta, err := decimal.NewFromString(record[3])
		if err != nil {
			return malformed(name, line, "delta", record[3], err)
		}

		events = append(events, domain.LedgerEvent{
			UserID:    record[0],
			Currency:  record[1],
			Timestamp: ts,
			Delta:     delta,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

// readRows skips the header and hands every trimmed record to fn with its 1-based line number.
func readRows(r io.Reader, name string, columns int, fn func(line int, record []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrapf(domain.ErrMalformedInput, "%s: header: %v", name, err)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(domain.ErrMalformedInput, "%s: %v", name, err)
		}
		line, _ := reader.FieldPos(0)
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) != columns {
			return errors.Wrapf(domain.ErrMalformedInput, "%s:%d: expected %d columns, got %d",
				name, line, columns, len(record))
		}

		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if err := fn(line, record); err != nil {
			return err
		}
	}
}

func parseTimestamp(raw string) (time.Time, error) {
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}

func malformed(name string, line int, field, value string, cause error) error {
	return errors.Wrapf(domain.ErrMalformedInput, "%s:%d: invalid %s %q: %v", name, line, field, value, cause)
}
