package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jengzang/coolparks-go/internal/analysis"
	"github.com/jengzang/coolparks-go/internal/api"
	"github.com/jengzang/coolparks-go/internal/coefficients"
	"github.com/jengzang/coolparks-go/internal/config"
	"github.com/jengzang/coolparks-go/internal/models"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "coolparks",
		Short:         "Estimate the cooling a park brings to its neighbourhood",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")

	rootCmd.AddCommand(prepareCmd(&configPath))
	rootCmd.AddCommand(processCmd(&configPath))
	rootCmd.AddCommand(runCmd(&configPath))
	rootCmd.AddCommand(serveCmd(&configPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func layerFlags(cmd *cobra.Command, p *models.RunParams) {
	cmd.Flags().StringVar(&p.Buildings, "buildings", "", "building footprints GeoJSON")
	cmd.Flags().StringVar(&p.Park, "park", "", "park boundary GeoJSON")
	cmd.Flags().StringVar(&p.Ground, "ground", "", "park ground cover GeoJSON")
	cmd.Flags().StringVar(&p.Canopy, "canopy", "", "park canopy cover GeoJSON")
	cmd.Flags().IntVar(&p.SRID, "srid", 0, "EPSG code of the layers, read from the park layer when 0")
	_ = cmd.MarkFlagRequired("park")
}

func prepareCmd(configPath *string) *cobra.Command {
	var params models.RunParams
	var out string

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Build the wind corridors and indicators of a scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd.Context(), *configPath, models.RunKindPrepare, params, out)
		},
	}
	layerFlags(cmd, &params)
	cmd.Flags().StringVar(&out, "out", "out", "output directory")
	return cmd
}

func processCmd(configPath *string) *cobra.Command {
	var params models.RunParams
	var out string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Apply a weather file to a prepared scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd.Context(), *configPath, models.RunKindProcess, params, out)
		},
	}
	cmd.Flags().StringVar(&params.Scenario, "scenario", "", "scenario file or prepare output directory")
	cmd.Flags().StringVar(&params.Weather, "weather", "", "weather CSV file")
	cmd.Flags().StringVar(&out, "out", "out", "output directory")
	_ = cmd.MarkFlagRequired("scenario")
	_ = cmd.MarkFlagRequired("weather")
	return cmd
}

func runCmd(configPath *string) *cobra.Command {
	var params models.RunParams
	var out string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Prepare a scenario and process a weather file in one go",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd.Context(), *configPath, models.RunKindFull, params, out)
		},
	}
	layerFlags(cmd, &params)
	cmd.Flags().StringVar(&params.Weather, "weather", "", "weather CSV file")
	cmd.Flags().StringVar(&out, "out", "out", "output directory")
	_ = cmd.MarkFlagRequired("weather")
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			return api.Serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen address, e.g. :8080")
	return cmd
}

func execute(ctx context.Context, configPath, kind string, params models.RunParams, out string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	table, err := coefficients.Load(cfg.Coefficients)
	if err != nil {
		return err
	}

	p := analysis.NewPipeline(cfg, table, nil)
	st, err := p.Execute(ctx, kind, params, out, func(pr analysis.Progress) {
		fmt.Fprintf(os.Stderr, "\r%-8s %3d%% %-40s", pr.Phase, pr.Percent, pr.Message)
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	for _, h := range st.Hours {
		if h.DeltaT == nil {
			continue
		}
		dir := "-"
		if h.PrevailingDirection != nil {
			dir = fmt.Sprintf("%.0f", *h.PrevailingDirection)
		}
		fmt.Printf("%2dh  %3d days  wind %4s  dT min %6.2f  median %6.2f  cooled %.0f\n",
			h.Hour, h.Days-h.Skipped, dir, h.DeltaT.Min, h.DeltaT.Median, h.CooledArea)
	}
	for _, d := range st.Diagnostics {
		fmt.Printf("%-7s %-20s %s\n", d.Severity, d.Code, d.Message)
	}
	fmt.Printf("%d files written to %s\n", len(st.Files), out)
	return nil
}
