package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"f1insights/internal/analytics"
	"f1insights/internal/exporter"
	"f1insights/internal/textview"
)

func newMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "List the analytics actions by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return textview.RenderMenu(cmd.OutOrStdout(), analytics.Menu())
		},
	}
}

func newDatasetsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "Load the data directory and summarize each table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			summaries, err := s.service.Datasets(cmd.Context())
			if err != nil {
				return err
			}
			return textview.RenderDatasets(cmd.OutOrStdout(), summaries)
		},
	}
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	var (
		asJSON  bool
		charts  bool
		maxRows int
	)

	cmd := &cobra.Command{
		Use:   "run <action>",
		Short: "Run one analytics action and print its view",
		Example: `  f1report run head-to-head --driver 1 --driver-b 4
  f1report run driver-consistency --grid 3 --laps 58 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkAction(args[0]); err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			view, err := s.runAction(cmd.Context(), cmd, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(view, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode view: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}

			o := textview.DefaultOptions()
			o.MaxRows = maxRows
			o.Charts = charts
			return textview.Render(cmd.OutOrStdout(), view, o)
		},
	}

	addParamFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")
	cmd.Flags().BoolVar(&charts, "charts", false, "print chart series as tables")
	cmd.Flags().IntVar(&maxRows, "max-rows", 25, "rows printed per table, 0 for all")
	return cmd
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:     "export <action>",
		Short:   "Run an action and write its tables to a spreadsheet or CSV file",
		Example: `  f1report export team-performance --constructor 6 --out ferrari.xlsx`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkAction(args[0]); err != nil {
				return err
			}
			if out == "" {
				out = exporter.FormatXLSX.FileName(args[0])
			}
			if _, err := exporter.FormatFromPath(out); err != nil {
				return fmt.Errorf("--out must end in .xlsx or .csv: %w", err)
			}

			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			view, err := s.runAction(cmd.Context(), cmd, args[0])
			if err != nil {
				return err
			}

			if err := exporter.New(s.logger).ExportFile(out, view); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return err
		},
	}

	addParamFlags(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, .xlsx or .csv (default <action>.xlsx)")
	return cmd
}

func checkAction(id string) error {
	if _, ok := analytics.Lookup(id); ok {
		return nil
	}
	ids := make([]string, 0, len(analytics.Actions()))
	for _, a := range analytics.Actions() {
		ids = append(ids, a.ID)
	}
	return fmt.Errorf("unknown action %q, expected one of: %s", id, strings.Join(ids, ", "))
}
