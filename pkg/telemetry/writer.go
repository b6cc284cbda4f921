package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
)

// batchWriter buffers rows and writes each full batch to its own parquet file.
type batchWriter[T any] struct {
	mu        sync.Mutex
	outputDir string
	prefix    string
	batchSize int
	buffer    []T
	files     int
}

func newBatchWriter[T any](outputDir, prefix string, batchSize int) (*batchWriter[T], error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &batchWriter[T]{
		outputDir: outputDir,
		prefix:    prefix,
		batchSize: batchSize,
		buffer:    make([]T, 0, batchSize),
	}, nil
}

func (w *batchWriter[T]) Add(row T) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buffer = append(w.buffer, row)
	if len(w.buffer) >= w.batchSize {
		return w.flushLocked()
	}
	return nil
}

func (w *batchWriter[T]) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *batchWriter[T]) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buffer)
}

// flushLocked writes the current buffer to a new Parquet file.
// Caller must hold the lock.
func (w *batchWriter[T]) flushLocked() error {
	if len(w.buffer) == 0 {
		return nil
	}

	now := time.Now()
	w.files++
	filename := fmt.Sprintf("%s_%s_%d_%d.parquet", w.prefix, now.Format("20060102_150405"), now.UnixNano(), w.files)
	path := filepath.Join(w.outputDir, filename)

	if err := parquet.WriteFile(path, w.buffer); err != nil {
		return fmt.Errorf("failed to write telemetry parquet file: %w", err)
	}

	w.buffer = w.buffer[:0]
	return nil
}
