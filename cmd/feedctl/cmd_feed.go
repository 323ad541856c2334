package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taabalselect/storefront/internal/domain"
	"github.com/taabalselect/storefront/internal/infrastructure/sheets"
	"github.com/taabalselect/storefront/internal/usecase"
)

const fetchTimeout = 30 * time.Second

var (
	asJSON  bool
	showAll bool
)

// previewLimit is the number of products inspect prints without --all
const previewLimit = 20

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show visibility flags and products of a feed",
	RunE:  runInspect,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List feed categories with product counts",
	RunE:  runCategories,
}

func init() {
	inspectCmd.Flags().BoolVar(&asJSON, "json", false, "print the interpreted catalog as JSON")
	inspectCmd.Flags().BoolVar(&showAll, "all", false, fmt.Sprintf("print every product instead of the first %d", previewLimit))
}

// loadCatalog fetches the feed named by --source and interprets it
func loadCatalog(cmd *cobra.Command) (*usecase.CatalogService, domain.Snapshot, error) {
	location := source
	if location == "" {
		location = os.Getenv("STOREFRONT_FEED_URL")
	}
	if location == "" {
		return nil, domain.Snapshot{}, fmt.Errorf("no feed source: pass --source or set STOREFRONT_FEED_URL")
	}

	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	feed := sheets.NewSource(location, fetchTimeout, 0, log)
	if client, ok := feed.(*sheets.Client); ok && verbose {
		client.SetDebug(true)
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), fetchTimeout)
	defer cancel()

	catalog := usecase.NewCatalogService(feed, usecase.CatalogServiceConfig{}, log)
	snap, err := catalog.Load(ctx)
	if err != nil {
		return nil, domain.Snapshot{}, err
	}
	return catalog, snap, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	_, snap, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap.Catalog)
	}

	printVisibility(out, snap.Visibility)
	fmt.Fprintf(out, "\nProducts: %d\n", len(snap.Products))

	products := snap.Products
	if !showAll && len(products) > previewLimit {
		products = products[:previewLimit]
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tIMAGE")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", p.ID, p.Name, p.Category, p.Price, p.Image)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if hidden := len(snap.Products) - len(products); hidden > 0 {
		fmt.Fprintf(out, "... %d more (use --all)\n", hidden)
	}
	return nil
}

func printVisibility(out io.Writer, vis domain.VisibilityFlags) {
	flags := []struct {
		name string
		on   bool
	}{
		{"image", vis.ShowImage},
		{"name", vis.ShowName},
		{"description", vis.ShowDescription},
		{"brand", vis.ShowBrand},
		{"category", vis.ShowCategory},
		{"price", vis.ShowPrice},
	}

	parts := make([]string, len(flags))
	for i, f := range flags {
		state := "shown"
		if !f.on {
			state = "hidden"
		}
		parts[i] = f.name + "=" + state
	}
	fmt.Fprintf(out, "Visibility: %s\n", strings.Join(parts, " "))
}

func runCategories(cmd *cobra.Command, args []string) error {
	catalog, _, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	categories, err := catalog.Categories(commandContext(cmd))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tPRODUCTS")
	for _, c := range categories {
		fmt.Fprintf(w, "%s\t%d\n", c.Name, c.Count)
	}
	return w.Flush()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
