package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/fiapx/fiapx-dataset-service/internal/sequence"
)

type Config struct {
	VideoRoot    string `env:"VIDEO_ROOT"    envDefault:"data/videos"`
	VideoExt     string `env:"VIDEO_EXT"     envDefault:".avi"`
	FrameRoot    string `env:"FRAME_ROOT"    envDefault:"data/sequences"`
	FrameExt     string `env:"FRAME_EXT"     envDefault:"jpg"`
	JPEGQuality  int    `env:"FRAME_JPEG_QUALITY" envDefault:"95"`
	CacheRoot    string `env:"CACHE_ROOT"    envDefault:"data/sequences/npz"`
	ManifestPath string `env:"MANIFEST_PATH" envDefault:"data/data_file.csv"`

	MinSeqLength   int    `env:"MIN_SEQ_LENGTH"  envDefault:"40"`
	MaxSeqLength   int    `env:"MAX_SEQ_LENGTH"  envDefault:"300"`
	ImageHeight    int    `env:"IMG_HEIGHT"      envDefault:"80"`
	ImageWidth     int    `env:"IMG_WIDTH"       envDefault:"80"`
	OcclusionClass string `env:"OCCLUSION_CLASS" envDefault:"class2"`
	BatchSize      int    `env:"BATCH_SIZE"      envDefault:"1"`
	ShuffleSeed    uint64 `env:"SHUFFLE_SEED"    envDefault:"0"`

	FFmpegBin  string `env:"FFMPEG_BIN"  envDefault:"ffmpeg"`
	FFprobeBin string `env:"FFPROBE_BIN" envDefault:"ffprobe"`

	MinIOEndpoint  string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL"    envDefault:"false"`
	MinIOBucket    string `env:"MINIO_BUCKET"     envDefault:"sequence-cache"`

	DatabaseURL string `env:"DATABASE_URL"`

	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"fiapx.dataset"`

	MetricsPort    int     `env:"METRICS_PORT"       envDefault:"0"`
	JaegerEndpoint string  `env:"JAEGER_ENDPOINT"`
	TraceSample    float64 `env:"TRACE_SAMPLE_RATIO" envDefault:"1"`
	LogLevel       string  `env:"LOG_LEVEL"          envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.MinSeqLength < 1 {
		errs = append(errs, fmt.Errorf("MIN_SEQ_LENGTH must be >= 1, got %d", c.MinSeqLength))
	}
	if c.MaxSeqLength < c.MinSeqLength {
		errs = append(errs, fmt.Errorf("MAX_SEQ_LENGTH %d is below MIN_SEQ_LENGTH %d", c.MaxSeqLength, c.MinSeqLength))
	}
	if c.ImageHeight < 1 || c.ImageWidth < 1 {
		errs = append(errs, fmt.Errorf("image dimensions must be positive, got %dx%d", c.ImageHeight, c.ImageWidth))
	}
	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("BATCH_SIZE must be >= 1, got %d", c.BatchSize))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("FRAME_JPEG_QUALITY must be in [1,100], got %d", c.JPEGQuality))
	}
	if c.TraceSample < 0 || c.TraceSample > 1 {
		errs = append(errs, fmt.Errorf("TRACE_SAMPLE_RATIO must be in [0,1], got %v", c.TraceSample))
	}
	// the occlusion window start is drawn from [0, len-window)
	if c.OcclusionClass != "" && c.MinSeqLength <= sequence.OcclusionWindow {
		errs = append(errs, fmt.Errorf("MIN_SEQ_LENGTH must exceed %d when OCCLUSION_CLASS is set", sequence.OcclusionWindow))
	}
	return errors.Join(errs...)
}
