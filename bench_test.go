package turbosqueeze

import (
	"testing"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
	"github.com/pierrec/lz4/v4"
)

func benchmarkEncode(b *testing.B, level int, extensions bool) {
	b.StopTimer()
	b.ReportAllocs()
	data := repeatedText(BlockSize)
	ctx := NewContext(level)
	comp := make([]byte, OutputSize)

	n, err := ctx.Encode(comp, data, extensions)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ReportMetric(float64(len(data))/float64(n), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		ctx.Encode(comp, data, extensions)
	}
}

func BenchmarkEncodeLevel0(b *testing.B) { benchmarkEncode(b, 0, true) }
func BenchmarkEncodeLevel1(b *testing.B) { benchmarkEncode(b, 1, true) }
func BenchmarkEncodeLevel2(b *testing.B) { benchmarkEncode(b, 2, true) }
func BenchmarkEncodeLevel4(b *testing.B) { benchmarkEncode(b, 4, true) }

func BenchmarkDecode(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	data := repeatedText(BlockSize)
	comp := make([]byte, OutputSize)
	n, err := NewContext(1).Encode(comp, data, true)
	if err != nil {
		b.Fatal(err)
	}
	dst := make([]byte, OutputSize)
	b.SetBytes(int64(len(data)))
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		Decode(dst, comp[:n], true)
	}
}

func BenchmarkEncodeSnappy(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	data := repeatedText(BlockSize)
	comp := snappy.Encode(nil, data)
	b.SetBytes(int64(len(data)))
	b.ReportMetric(float64(len(data))/float64(len(comp)), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		snappy.Encode(comp, data)
	}
}

func BenchmarkEncodeS2(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	data := repeatedText(BlockSize)
	comp := s2.Encode(nil, data)
	b.SetBytes(int64(len(data)))
	b.ReportMetric(float64(len(data))/float64(len(comp)), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		s2.Encode(comp, data)
	}
}

func BenchmarkEncodeLZ4(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	data := repeatedText(BlockSize)
	var zc lz4.Compressor
	comp := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := zc.CompressBlock(data, comp)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ReportMetric(float64(len(data))/float64(n), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		zc.CompressBlock(data, comp)
	}
}

func BenchmarkPipelineCompress(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	data := repeatedText(1 << 22)
	c := NewCompressor()
	defer c.Close()
	b.SetBytes(int64(len(data)))
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		var out Output
		if !c.Compress(Input{Data: data}, &out, true, 1) {
			b.Fatal("compression failed")
		}
	}
}
