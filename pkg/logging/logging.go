package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RotatingWriter writes to a file and rotates it when it reaches a size limit.
type RotatingWriter struct {
	Filename   string
	MaxSize    int64 // bytes
	MaxBackups int
	file       *os.File
	mu         sync.Mutex
}

// NewRotatingWriter creates a new RotatingWriter.
func NewRotatingWriter(filename string, maxSize int64, maxBackups int) *RotatingWriter {
	return &RotatingWriter{
		Filename:   filename,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}
}

func (w *RotatingWriter) open() error {
	file, err := os.OpenFile(w.Filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	w.file = file
	return nil
}

func (w *RotatingWriter) close() error {
	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}

func (w *RotatingWriter) rotate() error {
	if err := w.close(); err != nil {
		return err
	}

	for i := w.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", w.Filename, i)
		newPath := fmt.Sprintf("%s.%d", w.Filename, i+1)
		os.Rename(oldPath, newPath)
	}

	if w.MaxBackups > 0 {
		os.Rename(w.Filename, fmt.Sprintf("%s.1", w.Filename))
	}

	return w.open()
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		if err := w.open(); err != nil {
			// Fallback to stderr if file open fails
			return os.Stderr.Write(p)
		}
	}

	info, err := w.file.Stat()
	if err == nil && info.Size() > w.MaxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	return w.file.Write(p)
}

var (
	once sync.Once
	base zerolog.Logger
)

// Setup initialises the global logger exactly once: a console stream on
// stderr plus an append-only rotating JSON log under logDir.
func Setup(logDir string) {
	once.Do(func() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		zerolog.TimeFieldFormat = time.RFC3339

		os.MkdirAll(logDir, 0755)
		logFile := filepath.Join(logDir, "hoyobot.log")

		// 10MB limit, 5 backups
		rotating := NewRotatingWriter(logFile, 10*1024*1024, 5)
		console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

		base = zerolog.New(io.MultiWriter(console, rotating)).With().
			Timestamp().
			Logger()
	})
}

// SetDebug raises or lowers the global level. Safe to call after Setup, once
// the configuration is known.
func SetDebug(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// Base returns the configured base logger instance.
func Base() zerolog.Logger {
	once.Do(func() {
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			With().Timestamp().Logger()
	})
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}

// WithGame returns a child logger annotated with a game short code.
func WithGame(component, game string) zerolog.Logger {
	return Base().With().Str("component", component).Str("game", game).Logger()
}
