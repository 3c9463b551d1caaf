// Package stream opens byte streams for dumping and wraps them with a read-ahead cache.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/playspan/playspan/filesystem"
	"github.com/playspan/playspan/network"
	"github.com/playspan/playspan/playback"
	"github.com/spf13/afero"
)

// ErrClosed is returned by reads after Close.
var ErrClosed = errors.New("stream closed")

// Stream is a closable playback.Source.
type Stream interface {
	playback.Source
	io.Closer
}

// Open returns a stream for an http(s) URL or a local path.
func Open(ctx context.Context, target string) (Stream, error) {
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return OpenHTTP(ctx, target)
	}
	if strings.Contains(target, "://") {
		return nil, fmt.Errorf("unsupported stream scheme: %s", target)
	}
	return OpenFile(target)
}

// File is a stream over a file of the active filesystem backend.
// Position may be read concurrently with Read.
type File struct {
	f    afero.File
	pos  atomic.Int64
	size int64
}

// OpenFile opens a local file stream.
func OpenFile(path string) (*File, error) {
	f, err := filesystem.API().Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat stream: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open stream: %s is a directory", path)
	}

	return &File{f: f, size: info.Size()}, nil
}

func (s *File) Read(p []byte) (int, error) {
	n, err := s.f.Read(p)
	s.pos.Add(int64(n))
	return n, err
}

func (s *File) Position() int64      { return s.pos.Load() }
func (s *File) Span() (int64, int64) { return 0, s.size }
func (s *File) Close() error         { return s.f.Close() }

// HTTP is a stream over an HTTP response body.
// Position may be read concurrently with Read.
type HTTP struct {
	body   io.ReadCloser
	pos    atomic.Int64
	length int64
}

// OpenHTTP issues a GET request and streams the response body.
func OpenHTTP(ctx context.Context, url string) (*HTTP, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := network.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("open stream: %s returned %s", url, resp.Status)
	}

	return &HTTP{body: resp.Body, length: resp.ContentLength}, nil
}

func (s *HTTP) Read(p []byte) (int, error) {
	n, err := s.body.Read(p)
	s.pos.Add(int64(n))
	return n, err
}

func (s *HTTP) Position() int64 { return s.pos.Load() }

// Span reports an unknown end (-1) when the server sent no Content-Length.
func (s *HTTP) Span() (int64, int64) { return 0, s.length }

func (s *HTTP) Close() error { return s.body.Close() }
