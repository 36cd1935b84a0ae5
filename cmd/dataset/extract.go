package main

import (
	"errors"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
	"github.com/fiapx/fiapx-dataset-service/internal/infra/ffmpeg"
	"github.com/fiapx/fiapx-dataset-service/internal/infra/imageio"
	"github.com/fiapx/fiapx-dataset-service/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExtractCommand(a *app) *cobra.Command {
	var videoRoot string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Decode every video into frame images and record them in the manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if videoRoot == "" {
				videoRoot = a.cfg.VideoRoot
			}

			extractor := usecase.NewFrameExtractor(
				ffmpeg.NewDecoder(a.cfg.FFmpegBin, a.cfg.FFprobeBin, a.log),
				imageio.NewJPEGWriter(a.cfg.JPEGQuality),
				a.log,
				usecase.ExtractorConfig{
					FrameRoot: a.cfg.FrameRoot,
					FrameExt:  a.cfg.FrameExt,
					VideoExt:  a.cfg.VideoExt,
					Progress:  progressWriter(),
				},
			)

			records, err := extractor.ScanAndExtract(a.ctx, videoRoot)
			if err != nil {
				return err
			}

			store := a.manifestStore()
			switch err := store.Load(); {
			case errors.Is(err, entity.ErrManifestMissing):
				a.log.Info("starting a new manifest", zap.String("path", store.Path()))
			case err != nil:
				return err
			}
			if err := store.AppendAndPersist(records); err != nil {
				return err
			}
			a.log.Info("extraction finished", zap.Int("videos", len(records)))
			return nil
		},
	}
	cmd.Flags().StringVar(&videoRoot, "videos", "", "video root containing train/ and test/ (default VIDEO_ROOT)")
	return cmd
}
