package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"listing-map/models"
	"listing-map/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(items []*models.ListingItem) *models.InsightReport {
	report := &models.InsightReport{
		ItemsByNhood:  make(map[string]int),
		ItemsByStatus: make(map[string]int),
	}

	report.TotalItems = len(items)
	for _, it := range items {
		if it.Plottable() {
			report.PlottedItems++
		} else {
			report.UnplottedItems = append(report.UnplottedItems, it)
		}
		if it.NhoodCity != "" {
			report.ItemsByNhood[it.NhoodCity]++
		}
		color := it.StatusColor
		if color == "" {
			color = DefaultMarkerColor
		}
		report.ItemsByStatus[color]++

		report.ImageCount += len(it.ImageURLs)
		if it.ThumbnailURL == "" {
			report.ItemsWithoutPhoto++
		}
	}

	s.logger.Debug("[insights] %d items, %d plotted", report.TotalItems, report.PlottedItems)
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📍 LISTING MAP SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Items loaded        : \033[1m%d\033[0m\n", r.TotalItems)
	fmt.Fprintf(w, "  On the map          : \033[1m%d\033[0m\n", r.PlottedItems)
	fmt.Fprintf(w, "  Images              : \033[1m%d\033[0m\n", r.ImageCount)
	fmt.Fprintf(w, "  Without a photo     : \033[1m%d\033[0m\n", r.ItemsWithoutPhoto)
	fmt.Fprintln(w)

	if len(r.UnplottedItems) > 0 {
		fmt.Fprintf(w, "\033[1;33m  Not on the map\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		for _, it := range r.UnplottedItems {
			addr := it.Address
			if addr == "" {
				addr = "(no address)"
			}
			fmt.Fprintf(w, "  %-28s %s\n", truncate(it.Name, 26), truncate(addr, 24))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Listings by Nhood/City\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	printCounts(w, r.ItemsByNhood, "No neighborhood data")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Listings by Status Color\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	printCounts(w, r.ItemsByStatus, "No items")

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// printCounts lists counts descending, ties broken by name.
func printCounts(w io.Writer, counts map[string]int, empty string) {
	if len(counts) == 0 {
		fmt.Fprintf(w, "  %s\n", empty)
		return
	}
	type kv struct {
		key   string
		count int
	}
	var rows []kv
	for k, c := range counts {
		rows = append(rows, kv{k, c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})
	for _, r := range rows {
		bar := strings.Repeat("█", r.count)
		fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(r.key, 28), bar, r.count)
	}
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
