package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	esengine "github.com/utafrali/catalogsearch/internal/engine/elasticsearch"
	"github.com/utafrali/catalogsearch/internal/synonym"
)

func newIndexCommand(opts *options) *cobra.Command {
	var cfg esengine.Config
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the Elasticsearch index from the catalog file",
		Long: `index drops the catalog index, recreates it with the synonym-aware mapping
and bulk indexes every valid product from the catalog file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := opts.logger(cmd)

			expander, err := synonym.LoadFile(opts.synonymsFile)
			if err != nil {
				return err
			}
			cat, err := opts.loadCatalog(ctx, log)
			if err != nil {
				return err
			}

			eng, err := esengine.New(ctx, cfg, expander, log)
			if err != nil {
				return fmt.Errorf("connect to elasticsearch: %w", err)
			}
			if err := eng.Reindex(ctx, cat.Products()); err != nil {
				return err
			}

			log.Info("catalog indexed", slog.String("index", eng.IndexName()), slog.Int("products", cat.Len()))
			return printJSON(cmd, map[string]any{
				"index":   eng.IndexName(),
				"indexed": cat.Len(),
			})
		},
	}
	cmd.Flags().StringVar(&cfg.URL, "es-url", "http://localhost:9200", "Elasticsearch URL")
	cmd.Flags().StringVar(&cfg.IndexName, "index", esengine.DefaultIndexName, "index name")
	return cmd
}
