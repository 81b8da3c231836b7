package service

import (
	"context"
	"errors"

	"kisansetu-be/internal/config"
	"kisansetu-be/internal/dto"
	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/internal/pkg/serverutils"
	"kisansetu-be/internal/repository/memory"
	"kisansetu-be/internal/websocket"
	"kisansetu-be/pkg/advisory"
	"kisansetu-be/pkg/advisory/voice"
	"kisansetu-be/pkg/events"
	"kisansetu-be/pkg/llm"
	"kisansetu-be/pkg/store"
)

const voiceModule = "VOICE_SERVICE"

// SpeakerFactory returns the speech output for one session.
type SpeakerFactory func(sessionID string) voice.Speaker

type IVoiceService interface {
	Start(ctx context.Context, sessionID string, req *dto.StartRecordingRequest) (*dto.VoiceStateResponse, error)
	UploadAudio(ctx context.Context, sessionID, filename string, data []byte) (*dto.VoiceStateResponse, error)
	Stop(ctx context.Context, sessionID string) (*dto.VoiceAnswerResponse, error)
	Cancel(ctx context.Context, sessionID string) (*dto.VoiceStateResponse, error)
	Interrupt(ctx context.Context, sessionID string) (*dto.VoiceStateResponse, error)
	State(ctx context.Context, sessionID string) (*dto.VoiceStateResponse, error)
}

type voiceService struct {
	sessions    *memory.SessionRepository
	transcriber llm.AudioProvider
	speakerFor  SpeakerFactory
	notifier    Notifier
	publisher   events.Publisher
	cfg         config.VoiceConfig
	logger      logger.ILogger
}

func NewVoiceService(
	sessions *memory.SessionRepository,
	transcriber llm.AudioProvider,
	speakerFor SpeakerFactory,
	notifier Notifier,
	publisher events.Publisher,
	cfg config.VoiceConfig,
	log logger.ILogger,
) IVoiceService {
	return &voiceService{
		sessions:    sessions,
		transcriber: transcriber,
		speakerFor:  speakerFor,
		notifier:    notifier,
		publisher:   publisher,
		cfg:         cfg,
		logger:      log,
	}
}

func (s *voiceService) session(sessionID string) (*store.Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, serverutils.NotFound("session")
	}
	return session, nil
}

// pipeline attaches the session's voice pipeline on first use.
func (s *voiceService) pipeline(session *store.Session) *voice.Pipeline {
	return session.AttachVoice(func() (*voice.Pipeline, *voice.BufferRecorder) {
		recorder := voice.NewBufferRecorder(s.cfg.MaxUploadBytes)
		p := voice.NewPipeline(
			session.Conversation,
			recorder,
			s.transcriber,
			s.speakerFor(session.ID),
			voice.Config{
				ProcessingTimeout: s.cfg.ProcessingTimeout,
				SpeechTimeout:     s.cfg.SpeechTimeout,
				LocationHint:      s.cfg.LocationHint,
			},
			s.logger,
			voice.WithStateListener(func(st voice.State) {
				s.pushState(session.ID, st)
			}),
		)
		return p, recorder
	})
}

func (s *voiceService) pushState(sessionID string, st voice.State) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Send(sessionID, websocket.TypeVoiceState, dto.VoiceStateResponse{SessionID: sessionID, State: st})
	if err != nil {
		s.logger.Warn(voiceModule, "Failed to push voice state", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

func (s *voiceService) Start(ctx context.Context, sessionID string, req *dto.StartRecordingRequest) (*dto.VoiceStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	p := s.pipeline(session)
	if err := p.StartRecording(ctx, advisory.PermissionFromBool(req.MicrophoneGranted)); err != nil {
		return nil, err
	}
	return &dto.VoiceStateResponse{SessionID: sessionID, State: p.State()}, nil
}

func (s *voiceService) UploadAudio(ctx context.Context, sessionID, filename string, data []byte) (*dto.VoiceStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	p := s.pipeline(session)
	if err := session.Recorder.Write(filename, data); err != nil {
		switch {
		case errors.Is(err, voice.ErrNotRecording):
			return nil, serverutils.Conflict("no recording in progress")
		case errors.Is(err, voice.ErrClipTooLarge):
			return nil, serverutils.TooLarge("recording")
		default:
			return nil, err
		}
	}

	s.logger.Debug(voiceModule, "Audio chunk buffered", map[string]interface{}{
		"session_id": sessionID,
		"bytes":      len(data),
	})
	return &dto.VoiceStateResponse{SessionID: sessionID, State: p.State()}, nil
}

// Stop answers the recorded question. Processing failures still return the
// apology answer, with an error code.
func (s *voiceService) Stop(ctx context.Context, sessionID string) (*dto.VoiceAnswerResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	p := s.pipeline(session)
	answer, err := p.StopRecording(ctx)
	if answer == nil {
		if err != nil {
			return nil, err
		}
		return &dto.VoiceAnswerResponse{State: p.State()}, nil
	}

	res := &dto.VoiceAnswerResponse{State: p.State(), Answer: answer}
	if err != nil {
		res.ErrorCode = dto.ErrorCodeInference
		if errors.Is(err, advisory.ErrProcessingTimeout) {
			res.ErrorCode = dto.ErrorCodeProcessingTimeout
		}
	}

	pushTurn(s.notifier, s.logger, sessionID, answer.Question)
	pushTurn(s.notifier, s.logger, sessionID, answer.Reply)

	if err := s.publisher.Publish(ctx, events.VoiceTurnFinished(sessionID, answer.Failed)); err != nil {
		s.logger.Warn(voiceModule, "Failed to publish event", map[string]interface{}{"error": err.Error()})
	}

	s.logger.Info(voiceModule, "Voice question answered", map[string]interface{}{
		"session_id": sessionID,
		"failed":     answer.Failed,
	})
	return res, nil
}

func (s *voiceService) Cancel(ctx context.Context, sessionID string) (*dto.VoiceStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	p := s.pipeline(session)
	p.Cancel()
	return &dto.VoiceStateResponse{SessionID: sessionID, State: p.State()}, nil
}

func (s *voiceService) Interrupt(ctx context.Context, sessionID string) (*dto.VoiceStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	p := s.pipeline(session)
	p.Interrupt(ctx)
	return &dto.VoiceStateResponse{SessionID: sessionID, State: p.State()}, nil
}

func (s *voiceService) State(ctx context.Context, sessionID string) (*dto.VoiceStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return &dto.VoiceStateResponse{SessionID: sessionID, State: s.pipeline(session).State()}, nil
}
