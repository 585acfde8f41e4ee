package asdcp

import (
	"github.com/cinecert/asdcplib-sub002/compress"
	"github.com/cinecert/asdcplib-sub002/essence"
	"github.com/cinecert/asdcplib-sub002/internal/options"
)

// Config holds the facade-level options layered on top of the
// essence-level WriterConfig/ReaderConfig: which label set to open
// with, and (for TimedText/DCData) which compression codec ancillary
// resources are stored under.
type Config struct {
	LabelSet      essence.LabelSet
	Compression   compress.CompressionType
	WriterOptions []essence.WriterOption
	ReaderOptions []essence.ReaderOption
}

// Option configures a Config; apply with internal/options, the same
// functional-option machinery essence.WriterOption/ReaderOption use.
type Option = options.Option[*Config]

func defaultConfig() *Config {
	return &Config{LabelSet: essence.LabelSetSMPTE, Compression: compress.CompressionNone}
}

// WithLabelSet selects the Interop or SMPTE UL variant a facade opens
// a session with.
func WithLabelSet(set essence.LabelSet) Option {
	return options.NoError(func(c *Config) { c.LabelSet = set })
}

// WithCompression selects the ancillary-resource compression algorithm
// a TimedText or DCData writer stores new resources under.
func WithCompression(t compress.CompressionType) Option {
	return options.NoError(func(c *Config) { c.Compression = t })
}

// WithWriterOptions passes through essence-level writer options
// (header_reserve, edit_rate, pedantic) to the underlying essence.Writer.
func WithWriterOptions(opts ...essence.WriterOption) Option {
	return options.NoError(func(c *Config) { c.WriterOptions = append(c.WriterOptions, opts...) })
}

// WithReaderOptions passes through essence-level reader options
// (pedantic, stereo) to the underlying essence.Reader.
func WithReaderOptions(opts ...essence.ReaderOption) Option {
	return options.NoError(func(c *Config) { c.ReaderOptions = append(c.ReaderOptions, opts...) })
}
