package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用配置. Built once by Load and never mutated afterwards.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Grid       GridConfig       `yaml:"grid"`
	Geometry   GeometryConfig   `yaml:"geometry"`
	Validation ValidationConfig `yaml:"validation"`
	Building   BuildingDefaults `yaml:"building_defaults"`
	Season     SeasonConfig     `yaml:"season"`
	Weather    WeatherConfig    `yaml:"weather"`
	Raster     RasterConfig     `yaml:"raster"`

	// TimesOfDay are the two representative hours (day, night).
	TimesOfDay  []int                     `yaml:"times_of_day"`
	Calibration map[int]CalibrationConfig `yaml:"calibration"`

	// ReferenceCooling normalises the building deltaT into an amplification factor.
	ReferenceCooling float64 `yaml:"reference_cooling"`
	Isovalues        int     `yaml:"isovalues"`
	Coefficients     string  `yaml:"coefficients"`
	Workers          int     `yaml:"workers"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port      string `yaml:"port"`
	DBPath    string `yaml:"db_path"`
	JWTSecret string `yaml:"jwt_secret"`
	OutputDir string `yaml:"output_dir"`
	RateLimit int    `yaml:"rate_limit"` // run creations per minute and client
}

// GridConfig drives the corridor decomposition.
type GridConfig struct {
	Directions        int     `yaml:"n_directions"`
	CrossWindPark     int     `yaml:"n_crosswind_park"`
	CrossWindOutside  int     `yaml:"n_crosswind_outside"`
	AlongWindPark     int     `yaml:"n_alongwind_park"`
	MinCellSize       float64 `yaml:"min_cell_size"`
	CrosswindLineDist float64 `yaml:"crosswind_line_dist"`
	UpstreamMin       int     `yaml:"upstream_min"`
}

// GeometryConfig holds geometric tolerances.
type GeometryConfig struct {
	MergeTolerance float64 `yaml:"merge_tolerance"`
	BlockBuffer    float64 `yaml:"block_buffer"`
}

// ValidationConfig holds the input data-quality thresholds.
type ValidationConfig struct {
	SuperimpositionThreshold float64 `yaml:"superimposition_threshold"`
	GroundToParkRatio        float64 `yaml:"ground_to_park_ratio"`
}

// BuildingDefaults fill building attributes absent from the input layer.
type BuildingDefaults struct {
	Height    float64 `yaml:"height"`
	Age       float64 `yaml:"age"`
	Renovated bool    `yaml:"renovated"`
	WWR       float64 `yaml:"wwr"`
	Shutter   float64 `yaml:"shutter"`
}

// SeasonConfig is the calendar window, as day/month strings.
type SeasonConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// WeatherConfig describes the weather file layout.
type WeatherConfig struct {
	HeaderLines      int     `yaml:"header_lines"`
	TimeColumn       string  `yaml:"time_column"`
	TimeLayout       string  `yaml:"time_layout"`
	WindDirection    string  `yaml:"wind_direction"`
	WindSpeed        string  `yaml:"wind_speed"`
	AirTemperature   string  `yaml:"air_temperature"`
	RelativeHumidity string  `yaml:"relative_humidity"`
	Pressure         string  `yaml:"pressure"`
	// MissingValue marks an absent measurement; 0 disables it.
	MissingValue     float64 `yaml:"missing_value"`
}

// RasterConfig drives the point to raster interpolation.
type RasterConfig struct {
	CellSize     float64 `yaml:"cell_size"`
	Power        float64 `yaml:"power"`
	Neighbours   int     `yaml:"neighbours"`
	SearchRadius float64 `yaml:"search_radius"`
}

// CalibrationConfig are the training ranges of one time of day.
type CalibrationConfig struct {
	WindSpeedMin       float64 `yaml:"wind_speed_min"`
	WindSpeedMax       float64 `yaml:"wind_speed_max"`
	DPVMin             float64 `yaml:"dpv_min"`
	DPVMax             float64 `yaml:"dpv_max"`
	MaxCoolingDistance float64 `yaml:"max_cooling_distance"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      ":8080",
			DBPath:    "./data/coolparks.db",
			OutputDir: "./data/runs",
			RateLimit: 10,
		},
		Grid: GridConfig{
			Directions:        8,
			CrossWindPark:     6,
			CrossWindOutside:  12,
			AlongWindPark:     15,
			MinCellSize:       20,
			CrosswindLineDist: 8,
			UpstreamMin:       1,
		},
		Geometry: GeometryConfig{
			MergeTolerance: 0.05,
			BlockBuffer:    50,
		},
		Validation: ValidationConfig{
			SuperimpositionThreshold: 0,
			GroundToParkRatio:        0.95,
		},
		Building: BuildingDefaults{
			Height: 3,
			Age:    1970,
			WWR:    0.25,
		},
		Season: SeasonConfig{Start: "01/06", End: "01/09"},
		Weather: WeatherConfig{
			HeaderLines:      11,
			TimeColumn:       "time",
			TimeLayout:       "20060102:1504",
			WindDirection:    "WD10m",
			WindSpeed:        "WS10m",
			AirTemperature:   "T2m",
			RelativeHumidity: "RH",
			Pressure:         "SP",
			MissingValue:     -9999,
		},
		Raster: RasterConfig{
			CellSize:     10,
			Power:        2,
			Neighbours:   8,
			SearchRadius: 60,
		},
		TimesOfDay: []int{12, 23},
		Calibration: map[int]CalibrationConfig{
			12: {WindSpeedMin: 0.5, WindSpeedMax: 8, DPVMin: 2, DPVMax: 40, MaxCoolingDistance: 150},
			23: {WindSpeedMin: 0.5, WindSpeedMax: 6, DPVMin: 0, DPVMax: 20, MaxCoolingDistance: 250},
		},
		ReferenceCooling: -2,
		Isovalues:        8,
		Workers:          4,
	}
}

// Load 加载配置: defaults, then the optional YAML file, then .env and the
// environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Default()
	if path == "" {
		path = os.Getenv("COOLPARKS_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.Server.DBPath = dbPath
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Server.JWTSecret = secret
	}
	if out := os.Getenv("COOLPARKS_OUTPUT_DIR"); out != "" {
		cfg.Server.OutputDir = out
	}
	if workers := os.Getenv("COOLPARKS_WORKERS"); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid COOLPARKS_WORKERS: %s", workers)
		}
		cfg.Workers = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Grid.Directions <= 0 {
		errs = append(errs, errors.New("grid.n_directions must be positive"))
	}
	if c.Grid.CrossWindPark <= 0 || c.Grid.AlongWindPark <= 0 {
		errs = append(errs, errors.New("grid cell counts must be positive"))
	}
	if c.Grid.CrossWindOutside < 0 {
		errs = append(errs, errors.New("grid.n_crosswind_outside must not be negative"))
	}
	if c.Grid.MinCellSize <= 0 || c.Grid.CrosswindLineDist <= 0 {
		errs = append(errs, errors.New("grid sizes must be positive"))
	}
	if len(c.TimesOfDay) == 0 {
		errs = append(errs, errors.New("times_of_day must not be empty"))
	}
	for _, h := range c.TimesOfDay {
		if h < 0 || h > 23 {
			errs = append(errs, fmt.Errorf("invalid time of day: %d", h))
			continue
		}
		cal, ok := c.Calibration[h]
		if !ok {
			errs = append(errs, fmt.Errorf("no calibration for time of day %d", h))
			continue
		}
		if cal.WindSpeedMax <= cal.WindSpeedMin || cal.DPVMax <= cal.DPVMin {
			errs = append(errs, fmt.Errorf("empty calibration range for time of day %d", h))
		}
		if cal.MaxCoolingDistance <= 0 {
			errs = append(errs, fmt.Errorf("max_cooling_distance must be positive for time of day %d", h))
		}
	}
	if _, _, err := c.SeasonWindow(2000); err != nil {
		errs = append(errs, err)
	}
	if c.Raster.CellSize <= 0 || c.Raster.Neighbours <= 0 {
		errs = append(errs, errors.New("raster cell size and neighbours must be positive"))
	}
	if c.ReferenceCooling == 0 {
		errs = append(errs, errors.New("reference_cooling must not be zero"))
	}
	if c.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	return errors.Join(errs...)
}

// SeasonWindow returns the first and last day of the season for a year,
// both included at every time of day.
func (c *Config) SeasonWindow(year int) (time.Time, time.Time, error) {
	start, err := parseDayMonth(c.Season.Start, year)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid season start: %w", err)
	}
	end, err := parseDayMonth(c.Season.End, year)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid season end: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("season end %s before start %s", c.Season.End, c.Season.Start)
	}
	return start, end, nil
}

// Directions returns the N wind bearings in degrees.
func (c *Config) Directions() []float64 {
	n := c.Grid.Directions
	dirs := make([]float64, n)
	for i := range dirs {
		dirs[i] = float64(i) * 360 / float64(n)
	}
	return dirs
}

// MaxCoolingDistance returns the largest cooling distance over the times of day.
func (c *Config) MaxCoolingDistance() float64 {
	var d float64
	for _, h := range c.TimesOfDay {
		if cal := c.Calibration[h]; cal.MaxCoolingDistance > d {
			d = cal.MaxCoolingDistance
		}
	}
	return d
}

func parseDayMonth(s string, year int) (time.Time, error) {
	t, err := time.Parse("02/01", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
