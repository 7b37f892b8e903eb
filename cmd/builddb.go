package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/entolab/isympred/internal/builddb"
)

var (
	builddbMapping  string
	builddbSheet    string
	builddbSkipRows int
	builddbCharset  string
)

var builddbCmd = &cobra.Command{
	Use:   "builddb <source.xlsx|source.tsv>",
	Short: "Build the reference database from a curated literature table",
	Long:  "Parses a curated symbiont literature table, derives QIIME-style taxonomy labels and evidence levels, and replaces the reference store contents.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("builddb"); err != nil {
			return err
		}

		mapping := builddb.DefaultMapping()
		mappingPath := builddbMapping
		if mappingPath == "" {
			mappingPath = cfg.BuildDB.MappingPath
		}
		if mappingPath != "" {
			m, err := builddb.LoadMapping(mappingPath)
			if err != nil {
				return err
			}
			mapping = m
		}

		sheet := builddbSheet
		if sheet == "" {
			sheet = cfg.BuildDB.Sheet
		}
		skipRows := builddbSkipRows
		if skipRows == 0 {
			skipRows = cfg.BuildDB.SkipRows
		}
		charset := builddbCharset
		if charset == "" {
			charset = cfg.BuildDB.Charset
		}

		records, err := builddb.Build(args[0], builddb.Options{
			Mapping:   mapping,
			SheetName: sheet,
			SkipRows:  skipRows,
			Charset:   charset,
		})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return eris.Errorf("builddb: no usable records in %s", args[0])
		}

		refs, err := openRefstore(ctx)
		if err != nil {
			return err
		}
		defer refs.Close() //nolint:errcheck

		if err := refs.Migrate(ctx); err != nil {
			return err
		}
		n, err := refs.Replace(ctx, records)
		if err != nil {
			return err
		}

		zap.L().Info("reference database built",
			zap.String("source", args[0]),
			zap.String("backend", cfg.Refstore.Backend),
			zap.Int("records", n),
		)
		return nil
	},
}

func init() {
	builddbCmd.Flags().StringVar(&builddbMapping, "mapping", "", "YAML column mapping overlay")
	builddbCmd.Flags().StringVar(&builddbSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	builddbCmd.Flags().IntVar(&builddbSkipRows, "skip-rows", 0, "header rows to skip before the column row")
	builddbCmd.Flags().StringVar(&builddbCharset, "charset", "", "text source character set (default utf-8)")
	rootCmd.AddCommand(builddbCmd)
}
