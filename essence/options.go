package essence

import (
	"github.com/cinecert/asdcplib-sub002/id"
	"github.com/cinecert/asdcplib-sub002/internal/options"
)

// defaultHeaderReserve is spec.md §6's default header_reserve: bytes of
// filler reserved after header metadata so Finalize can rewrite the
// metadata in place once the true container duration is known.
const defaultHeaderReserve = 16384

// WriterConfig holds the options of spec.md §6 that apply to OpenWrite.
type WriterConfig struct {
	HeaderReserve uint32
	EditRate      id.Rational
	Pedantic      bool
}

// WriterOption configures a WriterConfig; apply with internal/options.
type WriterOption = options.Option[*WriterConfig]

func defaultWriterConfig() *WriterConfig {
	return &WriterConfig{HeaderReserve: defaultHeaderReserve}
}

// WithHeaderReserve overrides the default header_reserve byte count.
func WithHeaderReserve(n uint32) WriterOption {
	return options.NoError(func(c *WriterConfig) { c.HeaderReserve = n })
}

// WithEditRate sets the edit rate recorded for the session; required
// for timed-text essence per spec.md §6.
func WithEditRate(r id.Rational) WriterOption {
	return options.NoError(func(c *WriterConfig) { c.EditRate = r })
}

// WithWriterPedantic enables per-frame descriptor validation against
// the descriptor the sequence was opened with.
func WithWriterPedantic(p bool) WriterOption {
	return options.NoError(func(c *WriterConfig) { c.Pedantic = p })
}

// ReaderConfig holds the options of spec.md §6 that apply to OpenRead.
type ReaderConfig struct {
	Pedantic bool
	Stereo   bool
}

// ReaderOption configures a ReaderConfig; apply with internal/options.
type ReaderOption = options.Option[*ReaderConfig]

func defaultReaderConfig() *ReaderConfig {
	return &ReaderConfig{}
}

// WithReaderPedantic enables per-frame validation: a picture reader
// checks each frame's codestream parameters against those of the first
// frame it read.
func WithReaderPedantic(p bool) ReaderOption {
	return options.NoError(func(c *ReaderConfig) { c.Pedantic = p })
}

// WithStereo tells a JP2K reader to treat successive frames as
// interleaved left/right pairs.
func WithStereo(s bool) ReaderOption {
	return options.NoError(func(c *ReaderConfig) { c.Stereo = s })
}
