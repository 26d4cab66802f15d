package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/utafrali/catalogsearch/internal/domain"
	"github.com/utafrali/catalogsearch/internal/synonym"
)

func newSuggestCommand(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "suggest <query>",
		Short: "Suggest products for a partially typed query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Suggest(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of suggestions")
	return cmd
}

func newSearchCommand(opts *options) *cobra.Command {
	var (
		req                  domain.SearchRequest
		minPrice, maxPrice   float64
		minRating, minDiscnt float64
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog with filters, sorting and paging",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			req.Query = strings.Join(args, " ")
			req.Location = opts.location

			flags := cmd.Flags()
			if flags.Changed("min-price") {
				req.Filters.MinPrice = &minPrice
			}
			if flags.Changed("max-price") {
				req.Filters.MaxPrice = &maxPrice
			}
			if flags.Changed("min-rating") {
				req.Filters.MinRating = &minRating
			}
			if flags.Changed("min-discount") {
				req.Filters.MinDiscount = &minDiscnt
			}

			resp, err := svc.Search(cmd.Context(), &req)
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&req.Page, "page", "p", 1, "page number")
	f.IntVarP(&req.Limit, "limit", "n", 0, "results per page")
	f.StringVar(&req.SortBy, "sort", domain.SortRelevance, "sort key: relevance, price, rating, popularity, discount, newest")
	f.StringVar(&req.SortOrder, "order", domain.SortDesc, "sort order: asc or desc")
	f.StringSliceVar(&req.Filters.Brands, "brands", nil, "brands to include")
	f.StringSliceVar(&req.Filters.Categories, "categories", nil, "category fragments to include")
	f.StringSliceVar(&req.Filters.Offers, "offers", nil, "required offers: bestseller, new_arrival")
	f.StringVar(&req.Filters.Availability, "availability", "", "availability: in_stock, fast_delivery, cod")
	f.Float64Var(&minPrice, "min-price", 0, "minimum current price")
	f.Float64Var(&maxPrice, "max-price", 0, "maximum current price")
	f.Float64Var(&minRating, "min-rating", 0, "minimum rating")
	f.Float64Var(&minDiscnt, "min-discount", 0, "minimum discount percentage")
	return cmd
}

func newRelatedCommand(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "related <product-id>",
		Short: "List products related to a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Related(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of related products")
	return cmd
}

func newProductCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "product <product-id>",
		Short: "Show one product formatted for a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Product(cmd.Context(), args[0], opts.location)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
}

func newPopularCommand(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "popular",
		Short: "List the most popular products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Popular(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of products")
	return cmd
}

func newCompletionsCommand(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "completions <prefix>",
		Short: "Complete a partially typed query from brands, categories and keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Completions(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of completions")
	return cmd
}

func newExpandCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <query>",
		Short: "Show the terms a query is matched against",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expander, err := synonym.LoadFile(opts.synonymsFile)
			if err != nil {
				return err
			}
			terms := expander.Terms(strings.Join(args, " "))
			if terms == nil {
				terms = []string{}
			}
			return printJSON(cmd, terms)
		},
	}
}
