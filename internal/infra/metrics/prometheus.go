package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosExtractedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dataset_videos_extracted_total",
		Help: "Total number of videos decoded into frame images, by split",
	}, []string{"split"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dataset_frames_extracted_total",
		Help: "Total number of frame images written across all videos",
	})

	SamplesCachedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dataset_samples_cached_total",
		Help: "Total number of samples processed by cache builds, by split and outcome",
	}, []string{"split", "outcome"})

	BatchesServedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dataset_batches_served_total",
		Help: "Total number of batches handed to the training loop, by split",
	}, []string{"split"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dataset_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: []float64{0.1, 1, 5, 10, 30, 60, 300, 900, 3600},
	}, []string{"stage"})
)
