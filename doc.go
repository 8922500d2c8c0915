// Package turbosqueeze implements the TurboSqueeze block compression
// format: an LZ77 byte codec with a packed 8-symbol group encoding, a
// TSQ1 container of independently compressed 256 KiB blocks, and a
// parallel reader/workers/writer pipeline for both directions.
//
// The single-block codec is exposed through Context.Encode and Decode.
// Whole streams go through a Compressor or Decompressor, which split the
// input into blocks, fan them out over one worker per CPU, and reassemble
// the output in order; jobs can be submitted synchronously or
// asynchronously with completion and progress callbacks. CompressFile,
// DecompressFile and Reader cover the simple single-threaded cases.
package turbosqueeze
