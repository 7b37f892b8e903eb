package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/entolab/isympred/internal/hoststore"
	"github.com/entolab/isympred/internal/taxdump"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Manage the insect host taxonomy store",
	Long:  "Commands for building and querying the local taxonomy database used for host-specificity weighting.",
}

// -- hosts fetch --

var (
	hostsFetchURL  string
	hostsFetchRoot string
)

var hostsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the NCBI taxonomy dump and load the insect subtree",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		url := hostsFetchURL
		if url == "" {
			url = cfg.Taxdump.URL
		}
		root := hostsFetchRoot
		if root == "" {
			root = cfg.Taxdump.Root
		}

		store, err := hoststore.NewSQLite(cfg.Hosts.Path)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		n, err := taxdump.Fetch(ctx, store, taxdump.FetchOptions{URL: url, Root: root})
		if err != nil {
			return err
		}

		zap.L().Info("host taxonomy ready",
			zap.String("path", cfg.Hosts.Path),
			zap.String("root", root),
			zap.Int("nodes", n),
		)
		return nil
	},
}

// -- hosts lookup --

var hostsLookupCmd = &cobra.Command{
	Use:   "lookup <species name>",
	Short: "Resolve an insect species to its order, family, and genus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := hoststore.NewSQLite(cfg.Hosts.Path)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck
		if err := store.Migrate(ctx); err != nil {
			return err
		}

		lineage, err := store.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		formatLineage(os.Stdout, lineage)
		return nil
	},
}

func init() {
	hostsFetchCmd.Flags().StringVar(&hostsFetchURL, "url", "", "taxonomy dump URL (default from config)")
	hostsFetchCmd.Flags().StringVar(&hostsFetchRoot, "root", "", "clade to load (default Insecta)")

	hostsCmd.AddCommand(hostsFetchCmd)
	hostsCmd.AddCommand(hostsLookupCmd)
	rootCmd.AddCommand(hostsCmd)
}

// formatLineage writes a resolved lineage to w.
func formatLineage(out io.Writer, l *hoststore.Lineage) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Species:\t%s\n", l.Species)
	_, _ = fmt.Fprintf(w, "Genus:\t%s\n", l.Genus)
	_, _ = fmt.Fprintf(w, "Family:\t%s\n", l.Family)
	_, _ = fmt.Fprintf(w, "Order:\t%s\n", l.Order)
	_ = w.Flush()
}
