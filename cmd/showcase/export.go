package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/eringen/showcase"
	"github.com/eringen/showcase/sitedata"
)

// snapshot is the export format: the whole site content plus slides.
type snapshot struct {
	Content sitedata.Document `json:"content"`
	Slides  []sitedata.Slide  `json:"slides"`
	Images  []sitedata.Image  `json:"images"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored content, slides and image list to stdout as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := showcase.LoadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		backend, err := sitedata.Open(ctx, cfg.BackendOptions())
		if err != nil {
			return err
		}
		defer backend.Close()

		snap, err := takeSnapshot(ctx, backend)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

func takeSnapshot(ctx context.Context, b sitedata.Backend) (snapshot, error) {
	doc, err := sitedata.NewContentStore(b).Get(ctx)
	if err != nil {
		return snapshot{}, err
	}
	slides, err := sitedata.NewSlideStore(b).List(ctx)
	if err != nil {
		return snapshot{}, err
	}
	images, err := sitedata.NewImageStore(b).List(ctx)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{Content: doc, Slides: slides, Images: images}, nil
}
