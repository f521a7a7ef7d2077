package flightlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Writer drains a Queue to an append-only per-flight-session CSV file,
// the sole consumer side of the SPSC contract. The buffered *csv.Writer
// over an *os.File pattern is grounded on
// mmsadek96-odysail/csv_writer.go's CSVWriter.
type Writer struct {
	queue *Queue
	file  *os.File
	csv   *csv.Writer
}

var header = []string{
	"num_loops", "roll", "pitch", "yaw", "droll", "dpitch", "dyaw",
	"u0", "u1", "u2", "u3", "esc0", "esc1", "esc2", "esc3", "v_batt",
}

// Open creates (or appends to) the session log file at path. The caller
// is responsible for choosing a per-session path — e.g. one stamped with
// the session start time.
func Open(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	info, _ := f.Stat()
	if info != nil && info.Size() == 0 {
		w.Write(header)
		w.Flush()
	}
	return &Writer{file: f}, nil
}

// AttachQueue binds the queue this writer drains; separated from Open so
// a Writer can be constructed before the producer exists.
func (w *Writer) AttachQueue(q *Queue) {
	w.queue = q
	w.csv = csv.NewWriter(w.file)
}

// Run drains the queue at pollInterval until ctx is done, then flushes
// and closes the file (spec.md §5 shutdown order: "flush log").
func (w *Writer) Run(ctx context.Context, pollInterval time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.drainAll()
			w.Close()
			return
		case <-ticker.C:
			w.drainAll()
		}
	}
}

func (w *Writer) drainAll() {
	for {
		e, ok := w.queue.Pop()
		if !ok {
			break
		}
		w.writeRow(e)
	}
	w.csv.Flush()
}

func (w *Writer) writeRow(e Entry) {
	row := []string{
		fmt.Sprintf("%d", e.NumLoops),
		fmt.Sprintf("%.6f", e.Roll), fmt.Sprintf("%.6f", e.Pitch), fmt.Sprintf("%.6f", e.Yaw),
		fmt.Sprintf("%.6f", e.DRoll), fmt.Sprintf("%.6f", e.DPitch), fmt.Sprintf("%.6f", e.DYaw),
		fmt.Sprintf("%.6f", e.U[0]), fmt.Sprintf("%.6f", e.U[1]), fmt.Sprintf("%.6f", e.U[2]), fmt.Sprintf("%.6f", e.U[3]),
		fmt.Sprintf("%.6f", e.Esc[0]), fmt.Sprintf("%.6f", e.Esc[1]), fmt.Sprintf("%.6f", e.Esc[2]), fmt.Sprintf("%.6f", e.Esc[3]),
		fmt.Sprintf("%.3f", e.BatteryV),
	}
	w.csv.Write(row)
}

func (w *Writer) Close() error {
	if w.csv != nil {
		w.csv.Flush()
	}
	return w.file.Close()
}
