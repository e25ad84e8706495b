// Package temporal aggregates the per-direction cooling over the days of a
// season and turns it into rasters per time of day.
package temporal

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/models"
)

// ErrNoWeather is returned when a weather file holds no usable record.
var ErrNoWeather = errors.New("weather file has no record")

// Series is a weather time series, hourly or daily.
type Series struct {
	Records []models.WeatherRecord
	Daily   bool
	// Invalid counts the data rows dropped for an unreadable time.
	Invalid int
	index   map[string]int
}

// LoadWeather reads a weather CSV file.
func LoadWeather(path string, wc config.WeatherConfig) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open weather file %s: %w", path, err)
	}
	defer f.Close()
	s, err := ReadWeather(f, wc)
	if err != nil {
		return nil, fmt.Errorf("failed to read weather file %s: %w", path, err)
	}
	return s, nil
}

// ReadWeather parses a weather CSV: a fixed number of free-text lines, a
// header row naming the columns, then one row per time step. A blank line
// after the data ends the table, which skips trailing notes. Rows whose time
// does not parse are skipped and counted in Invalid.
func ReadWeather(r io.Reader, wc config.WeatherConfig) (*Series, error) {
	sc := bufio.NewScanner(r)
	for i := 0; i < wc.HeaderLines; i++ {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, fmt.Errorf("failed to skip header line %d: %w", i+1, err)
			}
			return nil, fmt.Errorf("failed to skip header line %d: %w", i+1, io.ErrUnexpectedEOF)
		}
	}

	var header []string
	for header == nil && sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		row, err := splitRow(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("failed to read column names: %w", err)
		}
		header = row
	}
	if header == nil {
		return nil, fmt.Errorf("failed to read column names: %w", io.ErrUnexpectedEOF)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	timeCol, ok := cols[wc.TimeColumn]
	if !ok {
		return nil, fmt.Errorf("time column %q not found", wc.TimeColumn)
	}
	field := func(row []string, name string) float64 {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return math.NaN()
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil || (wc.MissingValue != 0 && v == wc.MissingValue) {
			return math.NaN()
		}
		return v
	}

	s := &Series{index: make(map[string]int)}
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			if len(s.Records) > 0 {
				break
			}
			continue
		}
		row, err := splitRow(line)
		if err != nil || timeCol >= len(row) {
			s.Invalid++
			continue
		}
		ts, err := time.Parse(wc.TimeLayout, strings.TrimSpace(row[timeCol]))
		if err != nil {
			s.Invalid++
			continue
		}
		s.Records = append(s.Records, models.WeatherRecord{
			Time:             ts,
			WindDirection:    field(row, wc.WindDirection),
			WindSpeed:        field(row, wc.WindSpeed),
			AirTemperature:   field(row, wc.AirTemperature),
			RelativeHumidity: field(row, wc.RelativeHumidity),
			Pressure:         field(row, wc.Pressure),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read weather row: %w", err)
	}
	if len(s.Records) == 0 {
		return nil, ErrNoWeather
	}

	s.Daily = isDaily(s.Records)
	for i, rec := range s.Records {
		s.index[s.key(rec.Time)] = i
	}
	return s, nil
}

// Year returns the year of the first record.
func (s *Series) Year() int {
	return s.Records[0].Time.Year()
}

// Lookup returns the record at hour on the day of date. Daily series return
// the record of the day whatever the hour.
func (s *Series) Lookup(date time.Time, hour int) (models.WeatherRecord, bool) {
	t := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC)
	i, ok := s.index[s.key(t)]
	if !ok {
		return models.WeatherRecord{}, false
	}
	return s.Records[i], true
}

// isDaily reports whether the records are one per day: all at midnight and
// at least a day apart.
func isDaily(records []models.WeatherRecord) bool {
	if len(records) < 2 {
		return false
	}
	for i, rec := range records {
		if h, m, _ := rec.Time.Clock(); h != 0 || m != 0 {
			return false
		}
		if i > 0 && rec.Time.Sub(records[i-1].Time) < 24*time.Hour {
			return false
		}
	}
	return true
}

func splitRow(line string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.Read()
}

func (s *Series) key(t time.Time) string {
	if s.Daily {
		return t.Format("20060102")
	}
	return t.Format("2006010215")
}
