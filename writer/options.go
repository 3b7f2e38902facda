package writer

import (
	"fmt"
	"log/slog"

	"github.com/rasterly/gridstore/category"
	"github.com/rasterly/gridstore/format"
	"github.com/rasterly/gridstore/internal/options"
)

type config struct {
	standardize   bool
	compression   format.CompressionType
	maxCategories int
	logger        *slog.Logger
}

// Option configures a Write call.
type Option = options.Option[*config]

func newConfig(opts ...Option) (*config, error) {
	cfg := &config{
		standardize:   true,
		compression:   format.CompressionLZ4,
		maxCategories: category.DefaultMaxCategories,
		logger:        slog.New(slog.DiscardHandler),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithStandardize controls whether ordinal features are rescaled to mean 0
// and variance 1. Enabled by default; disabling writes blocks verbatim and
// records an explicit absent marker instead of statistics.
func WithStandardize(enabled bool) Option {
	return options.NoError(func(cfg *config) {
		cfg.standardize = enabled
	})
}

// WithCompression selects the chunk codec for both destination arrays.
// The default is LZ4.
func WithCompression(comp format.CompressionType) Option {
	return options.New(func(cfg *config) error {
		switch comp {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			cfg.compression = comp
			return nil
		default:
			return fmt.Errorf("invalid chunk compression: %v", comp)
		}
	})
}

// WithMaxCategories bounds the distinct values per categorical feature.
func WithMaxCategories(n int) Option {
	return options.New(func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("max categories must be positive, got %d", n)
		}
		cfg.maxCategories = n

		return nil
	})
}

// WithLogger sets the structured logger for write progress. The default
// discards all output.
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(cfg *config) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		cfg.logger = logger

		return nil
	})
}
