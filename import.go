/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"

	"github.com/Seednode/storyteller/catalog"
	"github.com/spf13/cobra"
)

func newImportCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "import <image-dir> <manifest>",
		Short: "Build a card manifest from a directory of images named <key>.<ext>.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageDir, manifest := args[0], args[1]

			if err := catalog.Import(imageDir, manifest); err != nil {
				return err
			}

			cards, err := catalog.Load(manifest, imageDir)
			if err != nil {
				return err
			}

			logf(cfg, "CARDS: Imported %s into %s", imageDir, manifest)

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cards into %s\n", cards.Len(), manifest)

			return err
		},
	}
}
