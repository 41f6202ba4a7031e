package logger

import (
	"bufio"
	"io"
	"sync"
	"time"
)

const flushEvery = time.Second

// lineWriter buffers formatted records for a set of sinks. Warnings and
// errors are flushed right away; everything else at most flushEvery later.
type lineWriter struct {
	mu   sync.Mutex
	once sync.Once
	buf  *bufio.Writer
	err  error
	stop chan struct{}
	done chan struct{}
}

func newLineWriter(sinks []io.Writer) *lineWriter {
	w := &lineWriter{
		buf:  bufio.NewWriterSize(io.MultiWriter(sinks...), 32*1024),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go w.tick()
	return w
}

func (w *lineWriter) tick() {
	defer close(w.done)
	t := time.NewTicker(flushEvery)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			_ = w.Flush()
		case <-w.stop:
			return
		}
	}
}

// WriteLine appends one record. urgent forces a flush.
func (w *lineWriter) WriteLine(line []byte, urgent bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if _, err := w.buf.Write(line); err != nil {
		w.err = err
		return err
	}
	if urgent {
		w.err = w.buf.Flush()
	}
	return w.err
}

// Flush writes out everything buffered so far.
func (w *lineWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.err = w.buf.Flush()
	return w.err
}

// Close stops the ticker and flushes. It is safe to call more than once.
func (w *lineWriter) Close() error {
	w.once.Do(func() { close(w.stop) })
	<-w.done
	return w.Flush()
}
