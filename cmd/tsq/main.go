// The tsq command compresses and decompresses TSQ1 containers, and
// benchmarks the codec against other block compressors.
//
// Usage:
//
//	tsq compress <input> <output> [-level N] [-no-ext]
//	tsq decompress <input> <output>
//	tsq benchmark <input> [-level N]
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pierrec/xxHash/xxHash32"

	"github.com/julienperriercornet/turbosqueeze"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: tsq compress <input> <output> [-level N] [-no-ext]\n")
	fmt.Fprintf(os.Stderr, "       tsq decompress <input> <output>\n")
	fmt.Fprintf(os.Stderr, "       tsq benchmark <input> [-level N]\n")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "compress":
		fs := flag.NewFlagSet("compress", flag.ExitOnError)
		level := fs.Int("level", 1, "compression level (0 fastest)")
		noExt := fs.Bool("no-ext", false, "disable format extensions")
		args := parse(fs, os.Args[2:], 2)

		c := turbosqueeze.NewCompressor()
		defer c.Close()
		var out turbosqueeze.Output
		out.Path = args[1]
		if !c.Compress(turbosqueeze.Input{Path: args[0]}, &out, !*noExt, *level) {
			fmt.Fprintf(os.Stderr, "tsq: compressing %s failed\n", args[0])
			os.Exit(1)
		}
		fmt.Printf("%s -> %s (%d bytes)\n", args[0], args[1], out.Size)

	case "decompress":
		fs := flag.NewFlagSet("decompress", flag.ExitOnError)
		args := parse(fs, os.Args[2:], 2)

		d := turbosqueeze.NewDecompressor()
		defer d.Close()
		var out turbosqueeze.Output
		out.Path = args[1]
		if !d.Decompress(turbosqueeze.Input{Path: args[0]}, &out) {
			fmt.Fprintf(os.Stderr, "tsq: decompressing %s failed\n", args[0])
			os.Exit(1)
		}
		fmt.Printf("%s -> %s (%d bytes)\n", args[0], args[1], out.Size)

	case "benchmark":
		fs := flag.NewFlagSet("benchmark", flag.ExitOnError)
		level := fs.Int("level", 1, "turbosqueeze level")
		args := parse(fs, os.Args[2:], 1)
		if err := benchmark(args[0], *level); err != nil {
			fmt.Fprintf(os.Stderr, "tsq: %v\n", err)
			os.Exit(1)
		}

	default:
		usage()
	}
}

func parse(fs *flag.FlagSet, args []string, positional int) []string {
	var pos []string
	for len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		pos = append(pos, args[0])
		args = args[1:]
	}
	fs.Parse(args)
	pos = append(pos, fs.Args()...)
	if len(pos) != positional {
		usage()
	}
	return pos
}

type result struct {
	name       string
	compressed int
	compress   time.Duration
	decompress time.Duration
}

func benchmark(path string, level int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	digest := xxHash32.Checksum(data, 0)

	var results []result

	run := func(name string, compress func([]byte) ([]byte, error), decompress func([]byte) ([]byte, error)) {
		start := time.Now()
		comp, err := compress(data)
		ct := time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: compress: %v\n", name, err)
			return
		}
		start = time.Now()
		plain, err := decompress(comp)
		dt := time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: decompress: %v\n", name, err)
			return
		}
		if xxHash32.Checksum(plain, 0) != digest {
			fmt.Fprintf(os.Stderr, "%s: round trip mismatch\n", name)
			return
		}
		results = append(results, result{name, len(comp), ct, dt})
	}

	c := turbosqueeze.NewCompressor()
	defer c.Close()
	d := turbosqueeze.NewDecompressor()
	defer d.Close()

	run(fmt.Sprintf("turbosqueeze -level %d", level),
		func(in []byte) ([]byte, error) {
			var out turbosqueeze.Output
			if !c.Compress(turbosqueeze.Input{Data: in}, &out, true, level) {
				return nil, fmt.Errorf("compression failed")
			}
			return out.Data, nil
		},
		func(in []byte) ([]byte, error) {
			var out turbosqueeze.Output
			if !d.Decompress(turbosqueeze.Input{Data: in}, &out) {
				return nil, fmt.Errorf("decompression failed")
			}
			return out.Data, nil
		})

	run("snappy",
		func(in []byte) ([]byte, error) { return snappy.Encode(nil, in), nil },
		func(in []byte) ([]byte, error) { return snappy.Decode(nil, in) })

	run("s2",
		func(in []byte) ([]byte, error) { return s2.Encode(nil, in), nil },
		func(in []byte) ([]byte, error) { return s2.Decode(nil, in) })

	run("lz4",
		func(in []byte) ([]byte, error) {
			var zc lz4.Compressor
			buf := make([]byte, lz4.CompressBlockBound(len(in)))
			n, err := zc.CompressBlock(in, buf)
			return buf[:n], err
		},
		func(in []byte) ([]byte, error) {
			buf := make([]byte, len(data))
			n, err := lz4.UncompressBlock(in, buf)
			return buf[:n], err
		})

	run("zstd",
		func(in []byte) ([]byte, error) {
			enc, err := zstd.NewWriter(nil)
			if err != nil {
				return nil, err
			}
			defer enc.Close()
			return enc.EncodeAll(in, nil), nil
		},
		func(in []byte) ([]byte, error) {
			dec, err := zstd.NewReader(nil)
			if err != nil {
				return nil, err
			}
			defer dec.Close()
			return dec.DecodeAll(in, nil)
		})

	run("brotli",
		func(in []byte) ([]byte, error) {
			var buf bytes.Buffer
			w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
			if _, err := w.Write(in); err != nil {
				return nil, err
			}
			if err := w.Close(); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
		func(in []byte) ([]byte, error) {
			return io.ReadAll(brotli.NewReader(bytes.NewReader(in)))
		})

	fmt.Printf("%s: %d bytes\n\n", path, len(data))
	fmt.Printf("%-24s %12s %8s %14s %14s\n", "codec", "compressed", "ratio", "compress", "decompress")
	for _, r := range results {
		fmt.Printf("%-24s %12d %8.3f %11.1f MB/s %11.1f MB/s\n",
			r.name, r.compressed,
			float64(len(data))/float64(r.compressed),
			mbps(len(data), r.compress), mbps(len(data), r.decompress))
	}
	return nil
}

func mbps(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / 1e6 / d.Seconds()
}
