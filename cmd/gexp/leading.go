package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/stevenktruong/graph-expansion/gexp"
	"github.com/stevenktruong/graph-expansion/libgexp"
	"github.com/stevenktruong/graph-expansion/libgexp/catalog"
)

var leadingCmd = &cobra.Command{
	Use:   "leading",
	Short: "Compute the leading terms of a seed graph",
	Long: `Expands a seed graph depth-first until every term is deterministic and
prints those at the target order.  Terms can also be collected into a badger
or redis catalog shared across runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := LoadConfig(path)
		if err != nil {
			return err
		}
		cfg.ApplyFlags(cmd.Flags())
		return RunLeading(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func init() {
	flags := leadingCmd.Flags()
	flags.String("seed", "g-loop-2", "name of the seed graph (see 'gexp seeds')")
	flags.Int("order", -1, "target order (-1: the seed's usual order)")
	flags.Int("max-terms", 0, "stop after this many leading terms")
	flags.Int("max-expansions", 0, "fail after this many rewrite steps")
	flags.Duration("timeout", 0, "give up after this long")
	flags.Int("workers", 1, "number of search goroutines")
	flags.Bool("drop-dupes", false, "report each canonical term once")
	flags.String("catalog", "", "badger catalog directory to add leading terms to")
	flags.String("redis", "", "redis address of a catalog to add leading terms to")
	flags.Bool("tex", false, "print terms as LaTeX")
	flags.Bool("tally", false, "group equal terms and print their counts")
	flags.Bool("markdown", false, "render a markdown report")
	flags.String("metrics-addr", "", "serve prometheus metrics on this address")
	rootCmd.AddCommand(leadingCmd)
}

// RunLeading runs the search cfg describes and writes its report to out.
// A search cut short by its budget or timeout still reports what it found.
func RunLeading(ctx context.Context, cfg Config, out io.Writer) error {
	seed, err := libgexp.LookupSeed(cfg.Seed)
	if err != nil {
		return err
	}
	order := cfg.Order
	if order < 0 {
		order = seed.Order
	}

	reg := prometheus.NewRegistry()
	metrics := libgexp.NewSearchMetrics(reg)
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg)
		defer srv.Close()
	}

	catCtx := gexp.NewCatalogContext()
	defer func() {
		catCtx.Close()
		<-catCtx.Done()
	}()

	opts := libgexp.SearchOpts{
		MaxTerms:      cfg.MaxTerms,
		MaxExpansions: cfg.MaxExpansions,
		DropDupes:     cfg.DropDupes,
		Workers:       cfg.Workers,
		Metrics:       metrics,
	}
	sink, err := openSink(catCtx, cfg, seed.Name, order)
	if err != nil {
		return err
	}
	if sink != nil {
		opts.Sink = sink
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	printHeading(out, fmt.Sprintf("%s at order %d", seed.Name, order))

	var res *libgexp.SearchResult
	if cfg.Workers > 1 {
		res, err = libgexp.ComputeLeadingTermsParallel(ctx, seed.Build(), order, opts)
	} else {
		res, err = libgexp.ComputeLeadingTerms(ctx, seed.Build(), order, opts)
	}
	if res == nil {
		return err
	}

	if werr := writeResult(out, cfg, seed.Name, order, res); werr != nil {
		return werr
	}
	if sink != nil {
		fmt.Fprintf(out, "catalog: %d terms\n", sink.NumTerms())
	}
	if err != nil {
		return errors.Wrap(err, "search stopped early")
	}
	return nil
}

func openSink(ctx gexp.CatalogContext, cfg Config, seed string, order int) (gexp.Catalog, error) {
	opts := cfg.Catalog
	opts.Seed = seed
	opts.Order = int32(order)

	switch {
	case opts.DbPathName != "":
		return catalog.OpenCatalog(ctx, opts)
	case cfg.Redis.Addr != "":
		var options []catalog.Option
		if cfg.Redis.Prefix != "" {
			options = append(options, catalog.WithPrefix(cfg.Redis.Prefix))
		}
		cat, err := catalog.NewRedisCatalog(ctx, cfg.Redis.Addr, opts, options...)
		if err != nil {
			return nil, err
		}
		return cat, nil
	}
	return nil, nil
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			klog.Warningf("metrics server: %v", err)
		}
	}()
	klog.V(1).Infof("serving metrics on %s/metrics", addr)
	return srv
}

func printHeading(out io.Writer, text string) {
	o := termenv.NewOutput(out)
	fmt.Fprintln(out, o.String(text).Bold().Foreground(o.Color("#a78bfa")))
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func writeResult(out io.Writer, cfg Config, seed string, order int, res *libgexp.SearchResult) error {
	switch {
	case cfg.Markdown:
		md, err := leadingReport(seed, order, res)
		if err != nil {
			return err
		}
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err != nil {
			return err
		}
		rendered, err := r.Render(md)
		if err != nil {
			return err
		}
		io.WriteString(out, rendered)

	case cfg.Tally:
		tally := libgexp.NewTally()
		if err := tally.AddAll(res.LeadingTerms); err != nil {
			return err
		}
		for _, entry := range tally.Entries() {
			fmt.Fprintf(out, "%6d  %s\n", entry.Count, termString(entry.Term, cfg.Tex))
		}

	default:
		terms := make([]gexp.TermState, len(res.LeadingTerms))
		for i, X := range res.LeadingTerms {
			terms[i] = X
		}
		gexp.StreamTerms(terms...).Print(nopWriteCloser{out}, gexp.PrintOpts{
			Label:     seed,
			Tex:       cfg.Tex,
			ShowOrder: true,
		}).PullAll()
	}

	fmt.Fprintf(out, "%d leading terms, %d expansions", len(res.LeadingTerms), res.Expansions)
	if res.Duplicates > 0 {
		fmt.Fprintf(out, ", %d duplicates dropped", res.Duplicates)
	}
	if res.Truncated {
		fmt.Fprint(out, " (truncated)")
	}
	fmt.Fprintln(out)
	return nil
}

func termString(X *libgexp.Graph, tex bool) string {
	var b strings.Builder
	X.WriteAsString(&b, gexp.PrintOpts{Tex: tex})
	return b.String()
}

// leadingReport renders res as a markdown table of distinct terms.
func leadingReport(seed string, order int, res *libgexp.SearchResult) (string, error) {
	tally := libgexp.NewTally()
	if err := tally.AddAll(res.LeadingTerms); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Leading terms of `%s` at order %d\n\n", seed, order)
	if tally.Len() == 0 {
		b.WriteString("No deterministic terms at this order.\n\n")
	} else {
		b.WriteString("| # | count | term |\n|---|---|---|\n")
		for i, entry := range tally.Entries() {
			fmt.Fprintf(&b, "| %d | %d | `%s` |\n", i+1, entry.Count, entry.Term.Tex())
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%d distinct terms (%d total) after %d expansions.\n", tally.Len(), tally.Total(), res.Expansions)
	return b.String(), nil
}
