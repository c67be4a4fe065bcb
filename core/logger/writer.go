package logger

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
)

// levelAll lets a sink accept every record.
const levelAll = slog.Level(math.MinInt)

// sinkSpec is an output together with the lowest level it accepts.
type sinkSpec struct {
	w   io.Writer
	min slog.Level
}

type sink struct {
	buf *bufio.Writer
	min slog.Level
}

type line struct {
	level slog.Level
	data  []byte
}

// asyncWriter fans formatted lines out to its sinks from a single goroutine.
type asyncWriter struct {
	queue    chan line
	flushReq chan chan error
	done     chan struct{}
	once     sync.Once
	sinks    []sink

	errMu    sync.Mutex
	writeErr error
}

func newAsyncWriter(specs []sinkSpec, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	sinks := make([]sink, 0, len(specs))
	for _, s := range specs {
		if s.w == nil {
			continue
		}
		sinks = append(sinks, sink{buf: bufio.NewWriterSize(s.w, bufSize), min: s.min})
	}
	aw := &asyncWriter{
		queue:    make(chan line, 256),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
		sinks:    sinks,
	}
	go aw.loop()
	return aw
}

func (w *asyncWriter) loop() {
	for {
		select {
		case l, ok := <-w.queue:
			if !ok {
				w.flushAll()
				close(w.done)
				return
			}
			w.setErr(w.writeAll(l))
		case ack := <-w.flushReq:
			ack <- w.flushAll()
		}
	}
}

// Write enqueues p for every sink whose threshold admits level. It blocks
// when the queue is full rather than dropping lines.
func (w *asyncWriter) Write(level slog.Level, p []byte) error {
	if err := w.getErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.queue <- line{level: level, data: append([]byte(nil), p...)}
	return nil
}

// Flush waits until everything queued so far reached the sinks.
func (w *asyncWriter) Flush() error {
	if err := w.getErr(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	w.flushReq <- ack
	return <-ack
}

// Close drains the queue and reports the first write error.
func (w *asyncWriter) Close() error {
	w.once.Do(func() { close(w.queue) })
	<-w.done
	return w.getErr()
}

func (w *asyncWriter) writeAll(l line) error {
	for _, s := range w.sinks {
		if l.level < s.min {
			continue
		}
		if _, err := s.buf.Write(l.data); err != nil {
			return err
		}
		if err := s.buf.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flushAll() error {
	var errs []error
	for _, s := range w.sinks {
		if err := s.buf.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) getErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.writeErr
}

func (w *asyncWriter) setErr(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.writeErr == nil {
		w.writeErr = err
	}
}
