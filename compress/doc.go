// Package compress provides the chunk compression codecs for gridstore.
//
// Every chunk written to a feature store passes through a Codec chosen at
// array creation time. Four codecs are built in:
//
//   - None: bypass, for benchmarking or pre-compressed storage
//   - LZ4: fast decompression, the default for training workloads
//   - S2: fastest compression, for import-time-bound pipelines
//   - Zstd: best ratio, for archival stores
//
// Codecs are stateless values safe for concurrent use; internal encoder and
// decoder state is pooled. The pure-Go Zstd implementation is used by
// default; the gozstd cgo bindings can be selected with a build tag when the
// extra throughput is worth a cgo dependency.
//
// Example:
//
//	codec, err := compress.GetCodec(format.CompressionLZ4)
//	if err != nil {
//	    return err
//	}
//	payload, err := codec.Compress(chunkBytes)
package compress
