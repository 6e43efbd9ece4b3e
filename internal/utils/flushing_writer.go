package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// FlushingWriter makes report output visible immediately by flushing buffered writers after every write.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps writer; writers that are already flushing are returned as-is.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if _, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return writer
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the underlying writer and flushes it when possible.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	return bytesWritten, flushingWriter.flushLocked()
}

// WriteString writes text in a single flushed write.
func (flushingWriter *FlushingWriter) WriteString(text string) (int, error) {
	return flushingWriter.Write([]byte(text))
}

func (flushingWriter *FlushingWriter) flushLocked() error {
	if bufferedWriter, implementsFlush := flushingWriter.writer.(flusher); implementsFlush {
		return bufferedWriter.Flush()
	}
	return nil
}
