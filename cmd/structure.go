package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"proteinstruct/internal/swissmodel"
)

func newStructureCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "structure ACCESSION",
		Short: "Download the SWISS-MODEL repository model for a UniProt accession",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStructure(cmd.Context(), a, args[0], outPath, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the PDB model to this path")
	return cmd
}

// runStructure reports a missing model as a warning, not as a failure.
func runStructure(ctx context.Context, a *app, accession, outPath string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client := swissmodel.NewClient(a.cfg.SwissModelBaseURL, a.cfg.StructureTimeout())
	a.logger.Info("loading 3D model", "accession", accession)
	s, err := client.LoadStructure(ctx, accession)
	if errors.Is(err, swissmodel.ErrNoStructure) {
		a.logger.Warn("no model in repository", "accession", accession)
		warnColor.Fprintln(out, "No 3D structure available for this protein.")
		return nil
	}
	if err != nil {
		a.logger.Error("structure download failed", "accession", accession, "err", err)
		errColor.Fprintf(out, "Error loading structure: %v\n", err)
		return err
	}

	okColor.Fprintf(out, "Model for %s\n", s.Accession)
	fmt.Fprintf(out, "Atoms: %d\nResidues: %d\nChains: %s\n", s.Atoms, s.Residues, strings.Join(s.Chains, ", "))
	if outPath == "" {
		return nil
	}
	if err := os.WriteFile(outPath, []byte(s.PDB), 0o644); err != nil {
		a.logger.Error("failed to write model", "path", outPath, "err", err)
		return err
	}
	a.logger.Info("wrote model", "path", outPath, "bytes", len(s.PDB))
	return nil
}
