// Package compress provides compression and decompression codecs for
// ancillary resource payloads carried alongside essence in an MXF file:
// TimedText XML subtitle documents, embedded subtitle fonts and PNG
// images, and raw DCData byte-array items. It is never used on the
// essence codestream itself (JPEG-2000, JPEG-XS, PCM), which is written
// to the body exactly as produced upstream.
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Supported Algorithms
//
// **NoOp** (CompressionNone) passes data through unchanged; use when a
// resource is already compressed (e.g. a PNG) or incompressible.
//
// **Zstandard** (CompressionZstd) gives the best ratio for TimedText XML,
// at the cost of more CPU per resource.
//
// **S2** (CompressionS2) balances ratio and speed for larger embedded
// font resources.
//
// **LZ4** (CompressionLZ4) favors fast decompression, useful when a
// player decompresses the same resource many times during playback.
//
// # Memory Management
//
// Compression buffers are sized based on input and returned to pools
// after use where the underlying library supports it.
//
// # Thread Safety
//
// All codec implementations are safe for concurrent use across
// goroutines reading or writing different essence containers.
package compress
