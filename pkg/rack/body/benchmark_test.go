package body

import (
	"errors"
	"io"
	"testing"

	"mercator-hq/bridge/pkg/protocol"
)

var benchmarkChunk = []byte("0123456789abcdef0123456789abcdef")

func drain(b *testing.B, body protocol.Body) {
	for {
		_, err := body.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			b.Fatalf("Read() error = %v", err)
		}
	}
	body.Close(nil)
}

// Benchmark_Enumerable_Read_Chunks benchmarks reading an in-memory chunk slice
func Benchmark_Enumerable_Read_Chunks(b *testing.B) {
	chunks := make([][]byte, 16)
	for i := range chunks {
		chunks[i] = benchmarkChunk
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e, err := NewEnumerable(chunks)
		if err != nil {
			b.Fatalf("NewEnumerable() error = %v", err)
		}
		drain(b, e)
	}
}

// Benchmark_Enumerable_Read_Each benchmarks pulling chunks from a producer
func Benchmark_Enumerable_Read_Each(b *testing.B) {
	src := EachFunc(func(yield func([]byte) error) error {
		for range 16 {
			if err := yield(benchmarkChunk); err != nil {
				return err
			}
		}
		return nil
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e, err := NewEnumerable(src)
		if err != nil {
			b.Fatalf("NewEnumerable() error = %v", err)
		}
		drain(b, e)
	}
}

// Benchmark_Streaming_Read benchmarks pulling chunks from a stream callable
func Benchmark_Streaming_Read(b *testing.B) {
	src := StreamFunc(func(stream protocol.Stream) error {
		for range 16 {
			if _, err := stream.Write(benchmarkChunk); err != nil {
				return err
			}
		}
		return nil
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		drain(b, NewStreaming(src, nil))
	}
}

// Benchmark_Streaming_Call benchmarks a stream callable writing directly
func Benchmark_Streaming_Call(b *testing.B) {
	src := StreamFunc(func(stream protocol.Stream) error {
		for range 16 {
			if _, err := stream.Write(benchmarkChunk); err != nil {
				return err
			}
		}
		return nil
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := NewStreaming(src, nil)
		if err := s.Call(protocol.NewIOStream(nil, io.Discard, nil)); err != nil {
			b.Fatalf("Call() error = %v", err)
		}
	}
}
