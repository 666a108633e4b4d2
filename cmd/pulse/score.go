package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/agencypulse/agencypulse/internal/monitor"
	"github.com/agencypulse/agencypulse/pkg/alerts"
	"github.com/agencypulse/agencypulse/pkg/surface"
)

type scoreOpts struct {
	clientID  string
	all       bool
	market    string
	dataset   string
	outputFmt string
	asOf      string
	quiet     bool
}

func newScoreCmd() *cobra.Command {
	var opts scoreOpts

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute client health scores",
		Long: `Computes the health score of one client (--client) or every active client
(--all), updates the score cache and prints the result with its explanation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.clientID == "" && !opts.all {
				return fmt.Errorf("either --client or --all is required")
			}
			cfg, err := loadConfig(cmd, opts.dataset)
			if err != nil {
				return err
			}
			rt, err := monitor.Build(cmd.Context(), cfg, monitor.BuildOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()
			return runScore(cmd.Context(), cmd.OutOrStdout(), rt.Service, opts)
		},
	}

	cmd.Flags().StringVar(&opts.clientID, "client", "", "Client ID to score")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Score every active client")
	cmd.Flags().StringVar(&opts.market, "market", "", "Restrict --all to one market: SG, ID or US")
	cmd.Flags().StringVar(&opts.dataset, "dataset", "", "Dataset path or s3:// / gs:// URL (default: config or database)")
	cmd.Flags().StringVar(&opts.outputFmt, "output", "text", "Output format: text, json or markdown")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "Score as of this date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "Hide the progress bar")
	cmd.MarkFlagsMutuallyExclusive("client", "all")

	return cmd
}

func runScore(ctx context.Context, out io.Writer, svc *monitor.Service, opts scoreOpts) error {
	renderer, err := surface.ForFormat(opts.outputFmt)
	if err != nil {
		return err
	}
	clock, err := parseAsOf(opts.asOf)
	if err != nil {
		return err
	}
	svc.WithClock(clock)

	if opts.clientID != "" {
		o, err := svc.ScoreClient(ctx, opts.clientID)
		if err != nil {
			return err
		}
		return renderer.RenderScores(out, []surface.ScoreReport{toScoreReport(*o)})
	}

	market, err := alerts.ParseMarketFilter(opts.market)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	batch, err := svc.ScoreAll(ctx, monitor.BatchOptions{
		Market: market,
		OnStart: func(total int) {
			if opts.quiet {
				return
			}
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("scoring clients"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		},
		OnDone: func(clientID string, err error) {
			if bar != nil {
				_ = bar.Add(1)
			}
		},
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	reports := make([]surface.ScoreReport, 0, len(batch.Computed))
	for _, o := range batch.Computed {
		reports = append(reports, toScoreReport(o))
	}
	if err := renderer.RenderScores(out, reports); err != nil {
		return err
	}

	for _, ce := range batch.Errors {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", ce.ClientID, ce.Error)
	}
	if len(batch.Errors) > 0 {
		return fmt.Errorf("%d client(s) failed to score", len(batch.Errors))
	}
	return nil
}

func toScoreReport(o monitor.Outcome) surface.ScoreReport {
	return surface.ScoreReport{
		Client:        o.Client,
		Result:        o.Result,
		Trend:         o.Trend,
		PreviousScore: o.PreviousScore,
		Narrative:     o.Narrative,
	}
}
