package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/utafrali/catalogsearch/internal/catalog"
	"github.com/utafrali/catalogsearch/internal/engine/memory"
	"github.com/utafrali/catalogsearch/internal/service"
	"github.com/utafrali/catalogsearch/internal/synonym"
	"github.com/utafrali/catalogsearch/pkg/logger"
)

// options are shared by every subcommand.
type options struct {
	catalogFile  string
	synonymsFile string
	location     string
	logLevel     string
}

// NewRootCommand builds the catalogctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Query and index a product catalog from the command line",
		Long: `catalogctl runs the catalog search engine against a catalog file without
starting the HTTP service. It can also push the catalog into Elasticsearch.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.catalogFile, "catalog", "f", "data/products.json", "catalog JSON file")
	root.PersistentFlags().StringVar(&opts.synonymsFile, "synonyms", "", "synonym table YAML file (default: built-in table)")
	root.PersistentFlags().StringVarP(&opts.location, "location", "l", "", "location for availability and delivery details")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		newSuggestCommand(opts),
		newSearchCommand(opts),
		newRelatedCommand(opts),
		newProductCommand(opts),
		newPopularCommand(opts),
		newCompletionsCommand(opts),
		newExpandCommand(opts),
		newIndexCommand(opts),
	)
	return root
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	return logger.NewWithWriter("catalogctl", o.logLevel, cmd.ErrOrStderr())
}

// loadCatalog reads the catalog file. Unlike the service, a missing or
// unreadable file is an error here.
func (o *options) loadCatalog(ctx context.Context, log *slog.Logger) (*catalog.Catalog, error) {
	raws, err := catalog.NewFileLoader(o.catalogFile).Load(ctx)
	if err != nil {
		return nil, err
	}
	cat, _ := catalog.Build(raws, log)
	return cat, nil
}

// service builds a catalog service over the in-memory engine.
func (o *options) service(cmd *cobra.Command) (*service.CatalogService, error) {
	log := o.logger(cmd)
	expander, err := synonym.LoadFile(o.synonymsFile)
	if err != nil {
		return nil, err
	}
	cat, err := o.loadCatalog(cmd.Context(), log)
	if err != nil {
		return nil, err
	}
	eng := memory.New(cat, expander)
	return service.NewCatalogService(eng, expander, service.Config{DefaultLocation: o.location}, log), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
