// Package voice runs one spoken question through capture, multimodal inference and
// speech playback.
package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/pkg/advisory"
	"kisansetu-be/pkg/advisory/conversation"
	"kisansetu-be/pkg/advisory/format"
	"kisansetu-be/pkg/llm"
)

const module = "VOICE"

type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
	StateSpeaking   State = "speaking"
)

const (
	DefaultProcessingTimeout = 30 * time.Second
	DefaultSpeechTimeout     = 15 * time.Second
	DefaultLocationHint      = "India"

	// QuestionMarker is the user turn recorded for a spoken question.
	QuestionMarker = "🎤 Voice question"
)

const (
	apologyTimeout  = "Sorry, that took too long to answer. Please try asking again."
	apologyFormat   = "Audio format issue detected. Please try recording again with a shorter message."
	apologyQuota    = "API limit reached. Please try again in a few minutes."
	apologyNetwork  = "Network error. Please check your internet connection and try again."
	apologyGeneric  = "Sorry, I had trouble processing your request. Please try recording again."
	instructionTmpl = "You are KisanSetu, a farming assistant for farmers in %s. " +
		"Listen to the farmer's spoken question and answer it in simple English. " +
		"Start with a direct one-sentence answer, then give up to four short practical steps. " +
		"Keep the whole answer under 120 words so it can be read aloud."
)

// SpeechOptions are the playback parameters passed to the speech engine.
type SpeechOptions struct {
	Language string  `json:"language"`
	Rate     float64 `json:"rate"`
	Pitch    float64 `json:"pitch"`
}

var DefaultSpeechOptions = SpeechOptions{Language: "en-IN", Rate: 0.85, Pitch: 1.2}

// Speaker plays text aloud. Speak blocks until playback finishes, fails or ctx ends.
type Speaker interface {
	Speak(ctx context.Context, text string, opts SpeechOptions) error
	Stop(ctx context.Context) error
}

type Config struct {
	ProcessingTimeout time.Duration
	SpeechTimeout     time.Duration
	LocationHint      string
	Speech            SpeechOptions
}

func (c Config) withDefaults() Config {
	if c.ProcessingTimeout <= 0 {
		c.ProcessingTimeout = DefaultProcessingTimeout
	}
	if c.SpeechTimeout <= 0 {
		c.SpeechTimeout = DefaultSpeechTimeout
	}
	if strings.TrimSpace(c.LocationHint) == "" {
		c.LocationHint = DefaultLocationHint
	}
	if c.Speech.Language == "" {
		c.Speech = DefaultSpeechOptions
	}
	return c
}

// Answer is the result of one processed recording.
type Answer struct {
	Question conversation.Turn `json:"question"`
	Reply    conversation.Turn `json:"reply"`
	Failed   bool              `json:"failed"`
}

// Pipeline is the per-session voice state machine:
// Idle -> Recording -> Processing -> Speaking -> Idle, plus Cancel and Interrupt.
type Pipeline struct {
	mu          sync.Mutex
	state       State
	audioReady  bool
	closed      bool
	speakCancel context.CancelFunc
	speakGen    uint64

	conv        *conversation.Session
	recorder    Recorder
	transcriber llm.AudioProvider
	speaker     Speaker
	cfg         Config
	logger      logger.ILogger
	onState     func(State)
}

type Option func(*Pipeline)

// WithStateListener is called after every state change, outside the pipeline lock.
func WithStateListener(fn func(State)) Option {
	return func(p *Pipeline) {
		p.onState = fn
	}
}

func NewPipeline(
	conv *conversation.Session,
	recorder Recorder,
	transcriber llm.AudioProvider,
	speaker Speaker,
	cfg Config,
	log logger.ILogger,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		state:       StateIdle,
		conv:        conv,
		recorder:    recorder,
		transcriber: transcriber,
		speaker:     speaker,
		cfg:         cfg.withDefaults(),
		logger:      log,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Instruction is the fixed prompt sent next to the recorded audio.
func (p *Pipeline) Instruction() string {
	return fmt.Sprintf(instructionTmpl, p.cfg.LocationHint)
}

// StartRecording begins capture. It is a no-op while a turn is already being
// recorded or processed, and interrupts playback first when speaking.
func (p *Pipeline) StartRecording(ctx context.Context, mic advisory.Permission) error {
	switch p.State() {
	case StateRecording, StateProcessing:
		p.logger.Debug(module, "Start ignored, turn in progress", nil)
		return nil
	case StateSpeaking:
		p.Interrupt(ctx)
	}

	if !mic.Granted() {
		p.logger.Info(module, "Microphone permission denied", nil)
		return advisory.ErrPermissionDenied
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New("voice pipeline closed")
	}
	if p.state != StateIdle {
		p.mu.Unlock()
		return nil
	}
	if !p.audioReady {
		if err := p.recorder.Prepare(ctx); err != nil {
			p.mu.Unlock()
			return fmt.Errorf("failed to prepare audio session: %w", err)
		}
		p.audioReady = true
	}
	if err := p.recorder.Start(ctx); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to start recording: %w", err)
	}
	p.state = StateRecording
	p.mu.Unlock()

	p.notify(StateRecording)
	return nil
}

// StopRecording ends capture and answers the recorded question. Outside Recording it
// does nothing and returns a nil Answer.
func (p *Pipeline) StopRecording(ctx context.Context) (*Answer, error) {
	p.mu.Lock()
	if p.state != StateRecording {
		p.mu.Unlock()
		return nil, nil
	}
	p.state = StateProcessing
	p.mu.Unlock()
	p.notify(StateProcessing)

	clip, err := p.recorder.Stop(ctx)
	if err != nil || clip.Empty() {
		p.setState(StateIdle)
		if err != nil {
			return nil, fmt.Errorf("failed to stop recording: %w", err)
		}
		return nil, advisory.ErrEmptyRecording
	}

	question := p.appendTurn(conversation.UserTurn(QuestionMarker))

	text, inferErr := p.infer(ctx, clip)
	answer := &Answer{Question: question}
	if inferErr != nil {
		answer.Failed = true
		text = apologyFor(inferErr)
		p.logger.Error(module, "Voice processing failed", map[string]interface{}{
			"error":      inferErr.Error(),
			"bytes":      len(clip.Data),
			"mime_type":  llm.AudioMIMEType(clip.Filename),
			"apology":    text,
			"location":   p.cfg.LocationHint,
			"timeout_ms": p.cfg.ProcessingTimeout.Milliseconds(),
		})
	}
	answer.Reply = p.appendTurn(conversation.AssistantTurn(text))

	p.speak(answer.Reply.Text)
	return answer, inferErr
}

// Cancel abandons the current recording without processing it.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	if p.state != StateRecording {
		p.mu.Unlock()
		return
	}
	p.recorder.Discard()
	p.state = StateIdle
	p.mu.Unlock()
	p.notify(StateIdle)
}

// Interrupt stops playback immediately. The conversation is not touched.
func (p *Pipeline) Interrupt(ctx context.Context) {
	p.mu.Lock()
	if p.state != StateSpeaking {
		p.mu.Unlock()
		return
	}
	p.stopSpeakingLocked()
	p.state = StateIdle
	p.mu.Unlock()

	if err := p.speaker.Stop(ctx); err != nil {
		p.logger.Warn(module, "Failed to stop speech", map[string]interface{}{"error": err.Error()})
	}
	p.notify(StateIdle)
}

// Close releases the audio session. The pipeline cannot record afterwards.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	speaking := p.state == StateSpeaking
	p.stopSpeakingLocked()
	if p.state == StateRecording {
		p.recorder.Discard()
	}
	if p.audioReady {
		p.recorder.Release()
		p.audioReady = false
	}
	p.state = StateIdle
	p.mu.Unlock()

	if speaking {
		_ = p.speaker.Stop(context.Background())
	}
}

func (p *Pipeline) infer(ctx context.Context, clip Clip) (string, error) {
	if p.transcriber == nil {
		return "", advisory.ErrInferenceUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProcessingTimeout)
	defer cancel()

	reply, err := p.transcriber.GenerateFromAudio(ctx, p.Instruction(), llm.NewAudioInput(clip.Filename, clip.Data))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", advisory.ErrProcessingTimeout, err)
		}
		return "", err
	}
	return format.FormatReply(reply), nil
}

func (p *Pipeline) speak(text string) {
	p.mu.Lock()
	if p.closed || p.speaker == nil {
		p.state = StateIdle
		p.mu.Unlock()
		p.notify(StateIdle)
		return
	}
	// Playback outlives the request that produced the answer.
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.SpeechTimeout)
	p.speakGen++
	gen := p.speakGen
	p.speakCancel = cancel
	p.state = StateSpeaking
	p.mu.Unlock()
	p.notify(StateSpeaking)

	go func() {
		defer cancel()
		err := p.speaker.Speak(ctx, text, p.cfg.Speech)
		if err != nil {
			p.logger.Warn(module, "Speech ended early", map[string]interface{}{"error": err.Error()})
		}

		p.mu.Lock()
		if p.speakGen != gen || p.state != StateSpeaking {
			p.mu.Unlock()
			return
		}
		p.speakCancel = nil
		p.state = StateIdle
		p.mu.Unlock()
		p.notify(StateIdle)
	}()
}

func (p *Pipeline) stopSpeakingLocked() {
	if p.speakCancel != nil {
		p.speakCancel()
		p.speakCancel = nil
	}
	p.speakGen++
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	p.notify(s)
}

func (p *Pipeline) appendTurn(t conversation.Turn) conversation.Turn {
	return p.conv.Append(t)
}

func (p *Pipeline) notify(s State) {
	if p.onState != nil {
		p.onState(s)
	}
}

// apologyFor turns a processing failure into the assistant text shown to the farmer.
func apologyFor(err error) string {
	if errors.Is(err, advisory.ErrProcessingTimeout) {
		return apologyTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid argument"):
		return apologyFormat
	case strings.Contains(msg, "quota") || strings.Contains(msg, "limit"):
		return apologyQuota
	case strings.Contains(msg, "network") || strings.Contains(msg, "fetch") || isTransport(err):
		return apologyNetwork
	default:
		return apologyGeneric
	}
}

func isTransport(err error) bool {
	pe, ok := llm.AsProviderError(err)
	return ok && pe.Kind == llm.KindTransport
}
