package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coolparks.yaml")
	content := `
grid:
  n_directions: 4
  min_cell_size: 10
season:
  start: "15/06"
  end: "15/08"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "9090")
	t.Setenv("COOLPARKS_WORKERS", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.Directions != 4 {
		t.Errorf("directions = %d, want 4", cfg.Grid.Directions)
	}
	if cfg.Grid.MinCellSize != 10 {
		t.Errorf("min cell size = %v, want 10", cfg.Grid.MinCellSize)
	}
	// untouched keys keep their defaults
	if cfg.Grid.CrossWindPark != 6 {
		t.Errorf("crosswind park = %d, want default 6", cfg.Grid.CrossWindPark)
	}
	if cfg.Server.Port != ":9090" {
		t.Errorf("port = %q, want :9090", cfg.Server.Port)
	}
	if cfg.Workers != 2 {
		t.Errorf("workers = %d, want 2", cfg.Workers)
	}
}

func TestLoadRejectsBadWorkers(t *testing.T) {
	t.Setenv("COOLPARKS_WORKERS", "zero")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid COOLPARKS_WORKERS")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no directions", func(c *Config) { c.Grid.Directions = 0 }},
		{"missing calibration", func(c *Config) { c.TimesOfDay = []int{12, 6} }},
		{"empty wind range", func(c *Config) {
			c.Calibration = map[int]CalibrationConfig{
				12: {WindSpeedMin: 2, WindSpeedMax: 2, DPVMin: 0, DPVMax: 1, MaxCoolingDistance: 10},
				23: c.Calibration[23],
			}
		}},
		{"reversed season", func(c *Config) { c.Season = SeasonConfig{Start: "01/09", End: "01/06"} }},
		{"bad season", func(c *Config) { c.Season.Start = "June" }},
		{"zero reference", func(c *Config) { c.ReferenceCooling = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSeasonWindow(t *testing.T) {
	start, end, err := Default().SeasonWindow(2021)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2021, time.September, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}

func TestDirections(t *testing.T) {
	dirs := Default().Directions()
	want := []float64{0, 45, 90, 135, 180, 225, 270, 315}
	if len(dirs) != len(want) {
		t.Fatalf("got %d directions", len(dirs))
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("dirs[%d] = %v, want %v", i, dirs[i], want[i])
		}
	}
	if d := Default().MaxCoolingDistance(); d != 250 {
		t.Errorf("max cooling distance = %v, want 250", d)
	}
}
