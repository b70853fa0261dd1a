package protocol

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/gosmartlog/smartlog/pkg/options"
	"github.com/gosmartlog/smartlog/pkg/packet"
	"github.com/gosmartlog/smartlog/pkg/pattern"
	"github.com/gosmartlog/smartlog/pkg/rotate"
)

const defaultFileBufferSize = 32 * 1024

// FileTransport implements the file protocol (§4.11): packets are formatted
// and appended to a rotate-aware file, guarded by an advisory
// process-exclusive lock the way the teacher's FileBackendImpl is.
type FileTransport struct {
	forceText bool

	filename string
	append   bool
	maxSize  int64
	maxParts int
	pattern  string

	formatter *pattern.Formatter
	names     *rotate.FilenameEngine
	timeRot   *rotate.Engine

	file   *os.File
	writer *bufio.Writer
	lock   *flock.Flock
	size   int64
}

// NewFileTransport returns an unbound file transport.
func NewFileTransport() *FileTransport {
	return &FileTransport{}
}

// NewTextTransport returns a file transport registered under the name
// "text" (§4.11, "text" is a file alias). The file transport always writes
// pattern-formatted text, so the two differ only in Name().
func NewTextTransport() *FileTransport {
	return &FileTransport{forceText: true}
}

func (f *FileTransport) Name() string {
	if f.forceText {
		return "text"
	}
	return "file"
}

func (f *FileTransport) RecognizedOptions() []string {
	return []string{"filename", "append", "rotate", "maxsize", "maxparts", "pattern"}
}

func (f *FileTransport) Bind(opts *options.Table) error {
	f.filename = opts.String("filename", "log.txt")
	f.append = opts.Bool("append", false)
	f.maxSize = opts.Size("maxsize", 0)
	f.maxParts = opts.Int("maxparts", 0)
	f.pattern = opts.String("pattern", "[%timestamp%] %level%: %title%")
	f.formatter = pattern.Compile(f.pattern)

	mode, ok := rotate.ParseMode(opts.String("rotate", "none"))
	if !ok {
		return fmt.Errorf("file protocol: invalid rotate mode %q", opts.String("rotate", ""))
	}

	f.names = rotate.NewFilenameEngine(f.filename)
	f.timeRot = rotate.NewEngine(mode)
	return nil
}

func (f *FileTransport) ImplConnect() error {
	now := time.Now()
	path := f.filename
	if f.timeRot.Mode() != rotate.ModeNone || f.maxSize > 0 {
		resolved, err := f.names.Resolve(f.append, now)
		if err != nil {
			return fmt.Errorf("resolve file name: %w", err)
		}
		path = resolved
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if f.append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("stat file: %w", err)
	}

	f.file = file
	f.writer = bufio.NewWriterSize(file, defaultFileBufferSize)
	f.lock = flock.New(path)
	f.size = info.Size()
	f.timeRot.Initialize(now)
	return nil
}

func (f *FileTransport) ImplDisconnect() error {
	var firstErr error
	if f.writer != nil {
		if err := f.writer.Flush(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("flush: %w", err)
		}
	}
	if f.file != nil {
		if err := f.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close: %w", err)
		}
	}
	f.file = nil
	f.writer = nil
	f.lock = nil
	return firstErr
}

func (f *FileTransport) ImplWritePacket(p packet.Packet) error {
	if err := f.maybeRotate(); err != nil {
		return err
	}

	line := f.formatter.Format(contextFor(p)) + "\r\n"

	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()

	n, err := f.writer.WriteString(line)
	f.size += int64(n)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return f.writer.Flush()
}

// maybeRotate closes and reopens the file when the time-bucket engine
// reports a transition or the size threshold is crossed, per §4.11's union
// of time-bucket and size-based rotation.
func (f *FileTransport) maybeRotate() error {
	now := time.Now()
	timeTriggered := f.timeRot.Update(now)
	sizeTriggered := f.maxSize > 0 && f.size >= f.maxSize
	if !timeTriggered && !sizeTriggered {
		return nil
	}

	if err := f.ImplDisconnect(); err != nil {
		return err
	}
	if err := f.names.Prune(f.maxParts); err != nil {
		return fmt.Errorf("prune rotated files: %w", err)
	}

	path, err := f.names.Resolve(false, now)
	if err != nil {
		return fmt.Errorf("resolve rotated file name: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open rotated file: %w", err)
	}
	f.file = file
	f.writer = bufio.NewWriterSize(file, defaultFileBufferSize)
	f.lock = flock.New(path)
	f.size = 0
	return nil
}

func (f *FileTransport) ImplDispatch(caption, action string, state any) error {
	return nil
}
