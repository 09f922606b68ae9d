package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/landsight/landsight-cli/internal/catalog"
)

var (
	searchBBox     string
	searchStart    string
	searchEnd      string
	searchMaxCloud float64
	searchLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List catalog imagery matching the criteria",
	RunE: func(cmd *cobra.Command, args []string) error {
		box, err := parseBBox(searchBBox)
		if err != nil {
			return err
		}
		if err := box.Validate(); err != nil {
			return err
		}

		criteria := catalog.SearchCriteria{
			BBox:          box,
			MaxCloudCover: searchMaxCloud,
			Limit:         searchLimit,
		}
		// A negative flag value means unset; an explicit 0 is a real threshold.
		if criteria.MaxCloudCover < 0 {
			criteria.MaxCloudCover = cfg.Analysis.MaxCloudCover
		}
		if criteria.Start, err = parseDate(searchStart); err != nil {
			return err
		}
		if criteria.End, err = parseDate(searchEnd); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		items, err := newCatalogClient().Search(ctx, criteria)
		if err != nil {
			return eris.Wrap(err, "catalog search")
		}
		if len(items) == 0 {
			fmt.Println("no qualifying imagery found")
			return nil
		}

		for _, it := range items {
			roles := make([]string, 0, len(it.Assets))
			for role := range it.Assets {
				roles = append(roles, string(role))
			}
			sort.Strings(roles)

			cloud := "n/a"
			if it.CloudCover != nil {
				cloud = fmt.Sprintf("%.1f%%", *it.CloudCover)
			}
			fmt.Printf("%-40s  %s  cloud %-6s  bands: %s\n",
				it.ID, it.Acquired.Format("2006-01-02"), cloud, strings.Join(roles, ","))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchBBox, "bbox", "", "bounding box as west,south,east,north degrees (required)")
	searchCmd.Flags().StringVar(&searchStart, "start", "", "earliest acquisition date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchEnd, "end", "", "latest acquisition date (YYYY-MM-DD)")
	searchCmd.Flags().Float64Var(&searchMaxCloud, "max-cloud", -1, "max cloud cover percent, 0 accepts nothing cloudier than 0% (default from config)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "max items to list")
	_ = searchCmd.MarkFlagRequired("bbox")
	rootCmd.AddCommand(searchCmd)
}
