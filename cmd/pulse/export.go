package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agencypulse/agencypulse/internal/monitor"
	"github.com/agencypulse/agencypulse/internal/source"
)

func newExportCmd() *cobra.Command {
	var (
		dataset string
		to      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Publish a dataset snapshot to blob storage",
		Long: `Loads the current records from the configured source (usually the
database) and writes them as one JSON snapshot to a local path, s3:// or gs://
location. Snapshots can then be scored with --dataset. A load in which any
collection failed is never published.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := source.ParseLocation(to)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, dataset)
			if err != nil {
				return err
			}
			rt, err := monitor.Build(cmd.Context(), cfg, monitor.BuildOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()

			storage, err := source.OpenStorage(cmd.Context(), loc)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), cmd.OutOrStdout(), rt.Service, storage, loc.Key, to)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "Read from this dataset instead of the database")
	cmd.Flags().StringVar(&to, "to", "", "Destination path or s3:// / gs:// URL (required)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runExport(ctx context.Context, out io.Writer, svc *monitor.Service, storage source.StorageClient, key, dest string) error {
	ds, err := svc.Dataset(ctx)
	if err != nil {
		return err
	}
	if missing := ds.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, c := range missing {
			names[i] = string(c)
		}
		return fmt.Errorf("refusing to export incomplete dataset: %s failed to load", strings.Join(names, ", "))
	}
	if err := source.Publish(ctx, storage, key, ds); err != nil {
		return err
	}
	fmt.Fprintf(out, "exported %d clients to %s\n", len(ds.Clients), dest)
	return nil
}
