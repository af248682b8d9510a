// replay/replay.go
//
// Package replay feeds recorded mark-price updates through the account
// engine. Steps come from plain CSV files (symbol,price[,delay]) or from a
// zip archive of such files, which is how exported tick sets ship.
package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xyproto/unzip"
)

type Step struct {
	Symbol string
	Price  float64
	Delay  time.Duration
}

// Marker is the slice of the engine replay needs.
type Marker interface {
	UpdatePrices(symbol string, price float64) error
}

// ParseCSV reads steps from one CSV stream. A header row is skipped when
// the price column does not parse. Delay is optional per row.
func ParseCSV(r io.Reader) ([]Step, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var steps []Step
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read steps: %w", err)
		}
		line++

		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: want symbol,price[,delay], got %d fields", line, len(rec))
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: bad price %q", line, rec[1])
		}

		step := Step{Symbol: strings.TrimSpace(rec[0]), Price: price}
		if len(rec) >= 3 && strings.TrimSpace(rec[2]) != "" {
			d, err := time.ParseDuration(strings.TrimSpace(rec[2]))
			if err != nil {
				return nil, fmt.Errorf("line %d: bad delay %q", line, rec[2])
			}
			step.Delay = d
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// LoadFile parses a single CSV file of steps.
func LoadFile(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open steps file: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// LoadArchive extracts a zip of step CSVs to a temp dir and concatenates
// them in file-name order.
func LoadArchive(zipPath string) ([]Step, error) {
	dir, err := os.MkdirTemp("", "paperdesk-replay-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := unzip.Extract(zipPath, dir); err != nil {
		return nil, fmt.Errorf("extract %s: %w", zipPath, err)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no csv files in %s", zipPath)
	}
	sort.Strings(files)

	var steps []Step
	for _, f := range files {
		s, err := LoadFile(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(f), err)
		}
		steps = append(steps, s...)
	}
	return steps, nil
}

// Run applies every step in order. With wait set, the per-step delays are
// honored in real time; otherwise steps apply back to back.
func Run(m Marker, steps []Step, wait bool) error {
	for _, s := range steps {
		if wait && s.Delay > 0 {
			time.Sleep(s.Delay)
		}
		if err := m.UpdatePrices(s.Symbol, s.Price); err != nil {
			return fmt.Errorf("mark %s at %v: %w", s.Symbol, s.Price, err)
		}
	}
	return nil
}
