package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agencypulse/agencypulse/internal/monitor"
	"github.com/agencypulse/agencypulse/pkg/alerts"
	"github.com/agencypulse/agencypulse/pkg/surface"
)

type sweepOpts struct {
	market    string
	dataset   string
	outputFmt string
	asOf      string
}

func newSweepCmd() *cobra.Command {
	var opts sweepOpts

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the operational alert sweep",
		Long: `Evaluates the alert rules (overdue deliverables and invoices, expiring
contracts, upcoming recurring invoices, work not started, stuck content and
blocked tasks) and prints prioritised findings with suggested actions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts.dataset)
			if err != nil {
				return err
			}
			rt, err := monitor.Build(cmd.Context(), cfg, monitor.BuildOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()
			return runSweep(cmd.Context(), cmd.OutOrStdout(), rt.Service, opts)
		},
	}

	cmd.Flags().StringVar(&opts.market, "market", "all", "Market to sweep: SG, ID, US or all")
	cmd.Flags().StringVar(&opts.dataset, "dataset", "", "Dataset path or s3:// / gs:// URL (default: config or database)")
	cmd.Flags().StringVar(&opts.outputFmt, "output", "text", "Output format: text, json or markdown")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "Sweep as of this date (YYYY-MM-DD or RFC 3339)")

	return cmd
}

func runSweep(ctx context.Context, out io.Writer, svc *monitor.Service, opts sweepOpts) error {
	renderer, err := surface.ForFormat(opts.outputFmt)
	if err != nil {
		return err
	}
	market, err := alerts.ParseMarketFilter(opts.market)
	if err != nil {
		return err
	}
	clock, err := parseAsOf(opts.asOf)
	if err != nil {
		return err
	}

	report, err := svc.WithClock(clock).Sweep(ctx, market)
	if err != nil {
		return err
	}

	view := surface.SweepReport{RunID: report.RunID, Market: market, Result: report.Result}
	for _, sg := range report.Suggestions {
		view.Suggestions = append(view.Suggestions, surface.Suggestion{
			Priority: sg.Priority,
			Title:    sg.Title,
			Action:   firstNonEmpty(sg.Action, sg.Description),
		})
	}
	return renderer.RenderSweep(out, view)
}
