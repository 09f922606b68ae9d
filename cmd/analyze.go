package main

import (
	"context"
	"encoding/json"
	"fmt"
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
	analyzeProjectType string
	analyzeBBox        string
	analyzeLat         float64
	analyzeLon         float64
	analyzeRadius      float64
	analyzeBuffer      bool
	analyzeStart       string
	analyzeEnd         string
	analyzeMaxCloud    float64
	analyzeLimit       int
	analyzeViz         bool
	analyzeDetailed    bool
	analyzeEstimated   bool
	analyzeTimeout     time.Duration
	analyzeOutput      string
	analyzeFormat      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a site's development suitability from recent imagery",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildRequest()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, analyzeTimeout)
		defer cancel()

		result, err := newAnalyzer().AnalyzeSite(ctx, req)
		if err != nil {
			return eris.Wrap(err, "analyze site")
		}

		zap.L().Info("analysis complete",
			zap.String("analysis_id", result.AnalysisID.String()),
			zap.Float64("score", result.Score),
			zap.Float64("confidence", result.Confidence),
			zap.String("mode", string(result.Mode)),
		)

		return writeResult(result, analyzeOutput, analyzeFormat)
	},
}

// buildRequest translates the analyze flags into a pipeline request.
func buildRequest() (pipeline.Request, error) {
	pt, err := scorer.ParseProjectType(analyzeProjectType)
	if err != nil {
		return pipeline.Request{}, err
	}

	req := pipeline.Request{
		ProjectType:    pt,
		Lat:            analyzeLat,
		Lon:            analyzeLon,
		RadiusMeters:   analyzeRadius,
		Buffer:         analyzeBuffer,
		MaxCloudCover:  analyzeMaxCloud,
		Limit:          analyzeLimit,
		IncludeViz:     analyzeViz,
		Detailed:       analyzeDetailed,
		AllowEstimated: analyzeEstimated,
	}
	// A negative flag value means unset; an explicit 0 is a real threshold.
	if req.MaxCloudCover < 0 {
		req.MaxCloudCover = cfg.Analysis.MaxCloudCover
	}
	if req.Limit == 0 {
		req.Limit = cfg.Analysis.SearchLimit
	}

	if analyzeBBox != "" {
		box, err := parseBBox(analyzeBBox)
		if err != nil {
			return pipeline.Request{}, err
		}
		req.BBox = &box
	}
	if req.Start, err = parseDate(analyzeStart); err != nil {
		return pipeline.Request{}, err
	}
	if req.End, err = parseDate(analyzeEnd); err != nil {
		return pipeline.Request{}, err
	}

	return req, nil
}

// writeResult renders a result as JSON or a short table, to stdout or a file.
func writeResult(v any, path, format string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create output file %s", path)
		}
		defer f.Close() //nolint:errcheck
		out = f
	}

	if format == "table" {
		if r, ok := v.(*pipeline.Result); ok {
			printResultTable(out, r)
			return nil
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResultTable(out *os.File, r *pipeline.Result) {
	fmt.Fprintf(out, "Score:       %.1f / 100\n", r.Score)
	fmt.Fprintf(out, "Confidence:  %.0f%%  (cloud cover %.1f%%, %s)\n", r.Confidence, r.CloudCover, r.Mode)
	fmt.Fprintf(out, "Acquired:    %s  (%s, %.0fm resolution)\n",
		r.AcquisitionDate.Format("2006-01-02"), r.Metadata.Source, r.Metadata.Resolution)
	fmt.Fprintf(out, "Vegetation:  %+.3f  %s\n", r.Indices.Vegetation.Value, r.Indices.Vegetation.Interpretation)
	fmt.Fprintf(out, "Built-up:    %+.3f  %s\n", r.Indices.BuiltUp.Value, r.Indices.BuiltUp.Interpretation)
	fmt.Fprintf(out, "Water:       %+.3f  %s\n", r.Indices.Water.Value, r.Indices.Water.Interpretation)
	fmt.Fprintf(out, "Moisture:    %+.3f  %s\n", r.Indices.Moisture.Value, r.Indices.Moisture.Interpretation)
	for _, rec := range r.Recommendations {
		fmt.Fprintf(out, "  - %s\n", rec)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(out, "  ! %s\n", w)
	}
	if r.Viz != nil {
		fmt.Fprintf(out, "Preview:     %s\n", r.Viz.PreviewURL)
	}
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeProjectType, "project-type", "", "residential|commercial|industrial|mixed|agricultural (required)")
	analyzeCmd.Flags().StringVar(&analyzeBBox, "bbox", "", "bounding box as west,south,east,north degrees")
	analyzeCmd.Flags().Float64Var(&analyzeLat, "lat", 0, "site center latitude (with --lon and --radius)")
	analyzeCmd.Flags().Float64Var(&analyzeLon, "lon", 0, "site center longitude")
	analyzeCmd.Flags().Float64Var(&analyzeRadius, "radius", 0, "site radius in meters")
	analyzeCmd.Flags().BoolVar(&analyzeBuffer, "buffer", false, "widen the derived bbox by 20%")
	analyzeCmd.Flags().StringVar(&analyzeStart, "start", "", "earliest acquisition date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "latest acquisition date (YYYY-MM-DD)")
	analyzeCmd.Flags().Float64Var(&analyzeMaxCloud, "max-cloud", -1, "max cloud cover percent, 0 accepts nothing cloudier than 0% (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 0, "max catalog items to consider (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeViz, "viz", false, "include visualization tile/preview URLs")
	analyzeCmd.Flags().BoolVar(&analyzeDetailed, "detailed", false, "include per-band averages in the result")
	analyzeCmd.Flags().BoolVar(&analyzeEstimated, "estimated-ok", false, "allow deterministic estimated indices when required bands are unavailable")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 5*time.Minute, "hard ceiling for the whole analysis")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "", "write the result to a file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "output format: json|table")
	_ = analyzeCmd.MarkFlagRequired("project-type")
	rootCmd.AddCommand(analyzeCmd)
}
