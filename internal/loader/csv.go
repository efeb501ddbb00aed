package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ajwhitfield/fpl-optimizer/internal/models"
)

// Options control how a forecast file is interpreted.
type Options struct {
	// PriceDivisor rescales the price column. FPL API exports quote prices
	// in tenths of a unit (105 means 10.5), so those files load with 10.
	PriceDivisor float64
}

// Read parses a player pool from CSV. The header row must name at least
// id, name, club, position, price and expected_score, in any order.
func Read(r io.Reader, opts Options) ([]models.Player, error) {
	divisor := opts.PriceDivisor
	if divisor == 0 {
		divisor = 1
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"id", "name", "club", "position", "price", "expected_score"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var players []models.Player
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		line++

		id, err := strconv.ParseUint(record[cols["id"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad id %q", line, record[cols["id"]])
		}
		position, err := models.ParsePosition(record[cols["position"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		price, err := strconv.ParseFloat(record[cols["price"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad price %q", line, record[cols["price"]])
		}
		score, err := strconv.ParseFloat(record[cols["expected_score"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad expected_score %q", line, record[cols["expected_score"]])
		}

		players = append(players, models.Player{
			ID:            uint(id),
			Name:          record[cols["name"]],
			Club:          record[cols["club"]],
			Position:      position,
			Price:         price / divisor,
			ExpectedScore: score,
		})
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("no players in file")
	}
	return players, nil
}

// ReadFile parses a player pool from a CSV file on disk.
func ReadFile(path string, opts Options) ([]models.Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, opts)
}
