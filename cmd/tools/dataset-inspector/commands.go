package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"samarkand-dashboard/internal/app"
	"samarkand-dashboard/internal/chat"
	"samarkand-dashboard/internal/common/config"
	"samarkand-dashboard/internal/common/logger"
	"samarkand-dashboard/internal/dataset"
)

type options struct {
	configPath string
	dataDir    string
	format     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "dataset-inspector",
		Short:         "Inspect the dashboard datasets from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: configs/config.yaml lookup)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "override datasets.data_dir")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json or yaml")

	root.AddCommand(
		newSummaryCmd(opts),
		newFiltersCmd(opts),
		newContextCmd(opts),
	)
	return root
}

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <dataset>",
		Short: "Show record count, averages and region breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeStore()

			table, kind, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			report := summaryReport{
				Dataset: kind.String(),
				Columns: table.Columns,
				Summary: dataset.Summarize(table),
				Regions: dataset.GroupByRegion(table),
			}
			if opts.format == "text" {
				return writeSummaryText(cmd.OutOrStdout(), kind, report)
			}
			return write(cmd.OutOrStdout(), opts.format, report)
		},
	}
}

func newFiltersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "filters <dataset>",
		Short: "List the distinct regions and districts of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeStore()

			table, _, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			choices := dataset.FilterOptions(table)
			if opts.format == "text" {
				out := cmd.OutOrStdout()
				heading := color.New(color.FgCyan, color.Bold).SprintFunc()
				fmt.Fprintf(out, "%s %s\n", heading("Regions:"), strings.Join(choices.Regions, ", "))
				fmt.Fprintf(out, "%s %s\n", heading("Districts:"), strings.Join(choices.Districts, ", "))
				return nil
			}
			return write(cmd.OutOrStdout(), opts.format, choices)
		},
	}
}

func newContextCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "context",
		Short: "Print the data context sent to the chat model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeStore()

			text, err := chat.NewBuilder(store).Build(cmd.Context())
			if err != nil {
				return fmt.Errorf("%w: %v", chat.ErrContextUnavailable, err)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
}

type summaryReport struct {
	Dataset string                  `json:"dataset" yaml:"dataset"`
	Columns []string                `json:"columns" yaml:"columns"`
	Summary dataset.Summary         `json:"summary" yaml:"summary"`
	Regions []dataset.RegionAverage `json:"regions" yaml:"regions"`
}

func openStore(ctx context.Context, opts *options) (*dataset.Store, func(), error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFromFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	if opts.dataDir != "" {
		cfg.Datasets.DataDir = opts.dataDir
	}

	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.OpenStore(ctx, cfg, logger.NewStructured("error", "console", "stderr"), app.RetryPolicy{Attempts: 1})
	if err != nil {
		return nil, nil, err
	}
	return a.Store, a.Close, nil
}

func write(out io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func writeSummaryText(out io.Writer, kind dataset.Kind, r summaryReport) error {
	title := color.New(color.FgGreen, color.Bold).SprintFunc()
	label := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintln(out, title(kind.DisplayName()+" dataset"))
	fmt.Fprintf(out, "%s %d\n", label("Records:"), r.Summary.TotalCount)
	fmt.Fprintf(out, "%s %s\n", label("Columns:"), strings.Join(r.Columns, ", "))
	fmt.Fprintf(out, "%s %s\n", label("Avg satisfaction:"), formatMean(r.Summary.AvgSatisfaction))
	fmt.Fprintf(out, "%s %s\n", label("Infrastructure score:"), formatMean(r.Summary.InfrastructureScore))
	fmt.Fprintf(out, "%s %s\n", label("Resources score:"), formatMean(r.Summary.ResourcesScore))

	if len(r.Regions) == 0 {
		return nil
	}
	fmt.Fprintln(out, title("By region"))
	for _, reg := range r.Regions {
		fmt.Fprintf(out, "  %-20s infrastructure %-8s resources %s\n",
			reg.Region, formatMean(reg.InfrastructureScore), formatMean(reg.ResourcesScore))
	}
	return nil
}

func formatMean(v *float64) string {
	if v == nil {
		return color.New(color.FgYellow).Sprint("n/a")
	}
	return fmt.Sprintf("%.2f", *v)
}
