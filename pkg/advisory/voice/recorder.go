package voice

import (
	"context"
	"errors"
	"sync"
)

// Clip is one finished recording.
type Clip struct {
	Filename string
	Data     []byte
}

func (c Clip) Empty() bool {
	return len(c.Data) == 0
}

// Recorder captures audio for the pipeline. Prepare configures the audio session and
// Release gives it back; both are called at most once per pipeline lifetime.
type Recorder interface {
	Prepare(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) (Clip, error)
	Discard()
	Release()
}

var (
	ErrNotRecording = errors.New("recorder is not capturing")
	ErrClipTooLarge = errors.New("recording exceeds size limit")
)

// BufferRecorder collects audio uploaded by a client between Start and Stop.
type BufferRecorder struct {
	mu       sync.Mutex
	maxBytes int
	active   bool
	filename string
	data     []byte
	released bool
}

func NewBufferRecorder(maxBytes int) *BufferRecorder {
	return &BufferRecorder{maxBytes: maxBytes}
}

func (r *BufferRecorder) Prepare(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = false
	return nil
}

func (r *BufferRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return errors.New("recorder released")
	}
	r.active = true
	r.filename = ""
	r.data = nil
	return nil
}

// Write appends a chunk of the current recording. The first non-empty filename wins
// and decides the MIME type later on.
func (r *BufferRecorder) Write(filename string, chunk []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return ErrNotRecording
	}
	if r.maxBytes > 0 && len(r.data)+len(chunk) > r.maxBytes {
		return ErrClipTooLarge
	}
	if r.filename == "" {
		r.filename = filename
	}
	r.data = append(r.data, chunk...)
	return nil
}

func (r *BufferRecorder) Stop(ctx context.Context) (Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return Clip{}, ErrNotRecording
	}
	clip := Clip{Filename: r.filename, Data: r.data}
	r.active = false
	r.filename = ""
	r.data = nil
	return clip, nil
}

func (r *BufferRecorder) Discard() {
	r.mu.Lock()
	r.active = false
	r.filename = ""
	r.data = nil
	r.mu.Unlock()
}

func (r *BufferRecorder) Release() {
	r.mu.Lock()
	r.active = false
	r.data = nil
	r.released = true
	r.mu.Unlock()
}
