package main

import (
	"fmt"

	"github.com/fiapx/fiapx-dataset-service/internal/batch"
	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/fiapx/fiapx-dataset-service/internal/sequence"
	"github.com/spf13/cobra"
)

func newInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the class vocabulary, split sizes and batches per epoch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := a.manifestStore()
			if err := store.Load(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "manifest: %s (%d records, %d within [%d,%d] frames)\n",
				store.Path(), len(store.Records()), len(store.Filtered()), a.cfg.MinSeqLength, a.cfg.MaxSeqLength)
			for i, c := range store.Vocabulary().Classes() {
				fmt.Fprintf(out, "  class %d: %s\n", i, c)
			}

			occluder := sequence.NewOccluder(a.cfg.OcclusionClass)
			if occluder.Class() != "" {
				fmt.Fprintf(out, "occlusion: %d frames blanked for class %q\n", sequence.OcclusionWindow, occluder.Class())
			}

			cache := a.cacheStore()
			for _, split := range entity.Splits {
				gen, err := batch.NewFromStore(cache, split, a.cfg.BatchSize, a.rng())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d samples, %d batches of %d per epoch\n",
					split, len(store.Split(split)), gen.Len(), a.cfg.BatchSize)
			}
			return nil
		},
	}
}
