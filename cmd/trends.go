package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/landsight/landsight-cli/internal/pipeline"
	"github.com/landsight/landsight-cli/internal/scorer"
)

var (
	trendsProjectType string
	trendsBBox        string
	trendsLat         float64
	trendsLon         float64
	trendsRadius      float64
	trendsYears       int
	trendsMaxCloud    float64
	trendsTimeout     time.Duration
	trendsOutput      string
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Compare yearly imagery to detect development growth",
	RunE: func(cmd *cobra.Command, args []string) error {
		pt, err := scorer.ParseProjectType(trendsProjectType)
		if err != nil {
			return err
		}

		req := pipeline.Request{
			ProjectType:   pt,
			Lat:           trendsLat,
			Lon:           trendsLon,
			RadiusMeters:  trendsRadius,
			MaxCloudCover: trendsMaxCloud,
			Limit:         cfg.Analysis.SearchLimit,
		}
		// A negative flag value means unset; an explicit 0 is a real threshold.
		if req.MaxCloudCover < 0 {
			req.MaxCloudCover = cfg.Analysis.MaxCloudCover
		}
		if trendsBBox != "" {
			box, err := parseBBox(trendsBBox)
			if err != nil {
				return err
			}
			req.BBox = &box
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, trendsTimeout)
		defer cancel()

		result, err := newAnalyzer().AnalyzeGrowthTrends(ctx, req, trendsYears)
		if err != nil {
			return eris.Wrap(err, "analyze growth trends")
		}

		zap.L().Info("trend analysis complete",
			zap.String("analysis_id", result.AnalysisID.String()),
			zap.Int("periods_analyzed", result.PeriodsAnalyzed),
			zap.Int("periods_missing", result.PeriodsMissing),
			zap.String("growth", result.Growth),
		)

		return writeResult(result, trendsOutput, "json")
	},
}

func init() {
	trendsCmd.Flags().StringVar(&trendsProjectType, "project-type", "", "residential|commercial|industrial|mixed|agricultural (required)")
	trendsCmd.Flags().StringVar(&trendsBBox, "bbox", "", "bounding box as west,south,east,north degrees")
	trendsCmd.Flags().Float64Var(&trendsLat, "lat", 0, "site center latitude (with --lon and --radius)")
	trendsCmd.Flags().Float64Var(&trendsLon, "lon", 0, "site center longitude")
	trendsCmd.Flags().Float64Var(&trendsRadius, "radius", 0, "site radius in meters")
	trendsCmd.Flags().IntVar(&trendsYears, "years", 3, "number of yearly periods to compare")
	trendsCmd.Flags().Float64Var(&trendsMaxCloud, "max-cloud", -1, "max cloud cover percent, 0 accepts nothing cloudier than 0% (default from config)")
	trendsCmd.Flags().DurationVar(&trendsTimeout, "timeout", 15*time.Minute, "hard ceiling for the whole trend analysis")
	trendsCmd.Flags().StringVar(&trendsOutput, "output", "", "write the result to a file instead of stdout")
	_ = trendsCmd.MarkFlagRequired("project-type")
	rootCmd.AddCommand(trendsCmd)
}
