package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"proteinstruct/internal/fasta"
	"proteinstruct/internal/protein"
	"proteinstruct/internal/uniprot"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed, color.Bold)
	labelColor = color.New(color.FgCyan)
)

func newSpeciesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "species",
		Short: "List the supported species and their reference proteomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, sp := range uniprot.AllSpecies() {
				fmt.Fprintf(out, "%-10s %s\n", sp.Name, sp.ProteomeID)
			}
			return nil
		},
	}
}

type fetchOptions struct {
	species  string
	maxSeq   int
	outJSON  string
	outFasta string
	list     bool
	show     string
	dryRun   bool
}

func newFetchCmd(a *app) *cobra.Command {
	opts := &fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download reviewed sequences for a species and summarise them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("max") {
				opts.maxSeq = a.cfg.DefaultMaxSeq
			}
			return runFetch(cmd.Context(), a, opts, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.species, "species", "s", "Human", "species: "+strings.Join(uniprot.SpeciesNames(), ", "))
	f.IntVarP(&opts.maxSeq, "max", "n", 100, "maximum number of proteins to keep")
	f.StringVarP(&opts.outJSON, "out", "o", "", "write the protein records as JSON to this path")
	f.StringVar(&opts.outFasta, "fasta", "", "write the protein records as FASTA to this path")
	f.BoolVarP(&opts.list, "list", "l", false, "print one line per protein")
	f.StringVar(&opts.show, "show", "", "print metadata, composition and sequence for this accession")
	f.BoolVar(&opts.dryRun, "dry-run", false, "fetch and summarise without writing outputs")
	return cmd
}

func runFetch(ctx context.Context, a *app, opts *fetchOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := a.logger
	client := uniprot.NewClient(a.cfg.UniProtBaseURL, a.cfg.FetchTimeout())
	client.MinLength = a.cfg.MinLength
	client.Logger = logger
	fetcher, err := uniprot.NewFetcher(client, a.cfg.CacheSize)
	if err != nil {
		return err
	}
	fetcher.Timeout = a.cfg.FetchTimeout()

	logger.Info("fetching proteome", "species", opts.species, "max", opts.maxSeq)
	proteins, err := fetcher.Fetch(ctx, opts.species, opts.maxSeq)
	if err != nil {
		logger.Error("fetch failed", "species", opts.species, "err", err)
		errColor.Fprintf(out, "Error fetching data: %v\n", err)
		return err
	}
	if len(proteins) == 0 {
		warnColor.Fprintln(out, "No data returned. Check internet connection or UniProt availability.")
		return nil
	}

	printSummary(out, opts.species, proteins)
	if opts.list {
		for _, p := range proteins {
			fmt.Fprintln(out, p.Label())
		}
	}
	if opts.show != "" {
		p, ok := protein.Find(proteins, opts.show)
		if !ok {
			return fmt.Errorf("accession %q not in the fetched set", opts.show)
		}
		printProtein(out, p, a.cfg.WrapWidth)
	}

	if opts.dryRun {
		logger.Info("dry-run: skipping output files", "json", opts.outJSON, "fasta", opts.outFasta)
		return nil
	}
	if opts.outJSON != "" {
		if err := writeJSON(opts.outJSON, proteins); err != nil {
			logger.Error("failed to write output JSON", "path", opts.outJSON, "err", err)
			return err
		}
		logger.Info("wrote output JSON", "path", opts.outJSON, "proteins", len(proteins))
	}
	if opts.outFasta != "" {
		if err := writeFasta(opts.outFasta, proteins, a.cfg.WrapWidth); err != nil {
			logger.Error("failed to write output FASTA", "path", opts.outFasta, "err", err)
			return err
		}
		logger.Info("wrote output FASTA", "path", opts.outFasta, "proteins", len(proteins))
	}
	return nil
}

func printSummary(out io.Writer, species string, proteins []protein.Record) {
	p := message.NewPrinter(language.English)
	s := protein.Summarize(proteins)
	okColor.Fprintf(out, "Loaded %s proteins for %s.\n", p.Sprintf("%d", s.Total), species)
	labelColor.Fprint(out, "Total Proteins:  ")
	fmt.Fprintln(out, p.Sprintf("%d", s.Total))
	labelColor.Fprint(out, "Average Length:  ")
	fmt.Fprintln(out, p.Sprintf("%.1f aa", s.AverageLength))
	labelColor.Fprint(out, "Longest Protein: ")
	fmt.Fprintln(out, p.Sprintf("%d aa", s.MaxLength))
}

func printProtein(out io.Writer, p protein.Record, width int) {
	okColor.Fprintf(out, "\n%s (%s)\n", p.DisplayName, p.Accession)
	fmt.Fprintf(out, "Organism: %s\nGene: %s\nLength: %d amino acids\n\n", p.Organism, p.GeneName, p.Length)
	comp := p.Composition()
	for i, label := range comp.Labels() {
		bar := strings.Repeat("#", int(comp[i]+0.5))
		fmt.Fprintf(out, "%s %5.1f%% %s\n", label, comp[i], bar)
	}
	fmt.Fprintf(out, "\n%s\n", fasta.Wrap(p.Sequence, width))
}

func writeJSON(path string, proteins []protein.Record) error {
	data, err := json.MarshalIndent(proteins, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeFasta(path string, proteins []protein.Record, width int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	raws := make([]fasta.Record, len(proteins))
	for i, p := range proteins {
		raws[i] = fasta.Record{Header: p.Header, Sequence: p.Sequence}
	}
	if err := fasta.Write(f, raws, width); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

