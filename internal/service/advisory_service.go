package service

import (
	"context"
	"errors"
	"strings"

	"kisansetu-be/internal/config"
	"kisansetu-be/internal/dto"
	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/internal/pkg/serverutils"
	"kisansetu-be/internal/repository/memory"
	"kisansetu-be/internal/websocket"
	"kisansetu-be/pkg/advisory"
	"kisansetu-be/pkg/advisory/conversation"
	"kisansetu-be/pkg/advisory/format"
	"kisansetu-be/pkg/advisory/geo"
	"kisansetu-be/pkg/advisory/prompt"
	"kisansetu-be/pkg/advisory/soil"
	"kisansetu-be/pkg/events"
	"kisansetu-be/pkg/llm"
	"kisansetu-be/pkg/store"

	"github.com/google/uuid"
)

const advisoryModule = "ADVISORY"

const (
	noLocationReply = "📍 I couldn't find your location. Please enable location access so I can give advice for your soil and climate."

	apologyAPIKey  = "🔑 Error: Invalid or missing API key. Please check your configuration."
	apologyModel   = "⚠️ Error: Issue with the AI model. Please try again later."
	apologyNetwork = "🌐 Error: Network issue. Please check your connection and retry."
	apologyDefault = "⚠️ Sorry, I encountered an error. Please try again later."

	advisoryTemperature = 0.7
)

// Notifier pushes a message to every client connected to a session.
type Notifier interface {
	Send(sessionID, msgType string, data interface{}) error
}

type IAdvisoryService interface {
	CreateSession(ctx context.Context, userID string) (*dto.CreateSessionResponse, error)
	Ask(ctx context.Context, sessionID string, req *dto.AskRequest) (*dto.AskResponse, error)
	History(ctx context.Context, sessionID string) (*dto.HistoryResponse, error)
	Soil(ctx context.Context, sessionID string) (*soil.Profile, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type advisoryService struct {
	sessions  *memory.SessionRepository
	profiles  geo.ProfileStore
	soil      *soil.Resolver
	prompts   *prompt.Builder
	llm       llm.LLMProvider
	notifier  Notifier
	publisher events.Publisher
	cfg       config.Config
	logger    logger.ILogger
}

func NewAdvisoryService(
	sessions *memory.SessionRepository,
	profiles geo.ProfileStore,
	llmProvider llm.LLMProvider,
	notifier Notifier,
	publisher events.Publisher,
	cfg config.Config,
	log logger.ILogger,
) IAdvisoryService {
	return &advisoryService{
		sessions:  sessions,
		profiles:  profiles,
		soil:      soil.NewResolver(llmProvider, log),
		prompts:   prompt.NewBuilder(cfg.Advisory.MaxHistoryTurns),
		llm:       llmProvider,
		notifier:  notifier,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
	}
}

func (s *advisoryService) CreateSession(ctx context.Context, userID string) (*dto.CreateSessionResponse, error) {
	session := store.NewSession(uuid.New().String(), userID)
	s.sessions.Save(session)

	s.logger.Info(advisoryModule, "Session created", map[string]interface{}{
		"session_id": session.ID,
		"user_id":    userID,
	})

	return &dto.CreateSessionResponse{SessionID: session.ID, CreatedAt: session.CreatedAt}, nil
}

func (s *advisoryService) session(sessionID string) (*store.Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, serverutils.NotFound("session")
	}
	return session, nil
}

// Ask answers one typed question. Model and location failures become an assistant
// turn with an error code; only a missing session is returned as an error.
func (s *advisoryService) Ask(ctx context.Context, sessionID string, req *dto.AskRequest) (*dto.AskResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if others := session.BeginAsk(); others > 0 {
		s.logger.Warn(advisoryModule, "Overlapping question submitted", map[string]interface{}{
			"session_id": sessionID,
			"in_flight":  others,
		})
	}
	defer session.EndAsk()

	history := session.Conversation.History()
	question := s.appendTurn(session, conversation.UserTurn(strings.TrimSpace(req.Question)))

	res := &dto.AskResponse{Question: question}

	coords, err := s.resolveLocation(ctx, session, req.Device)
	if err != nil {
		s.logger.Info(advisoryModule, "No location for question", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		res.Answer = s.appendTurn(session, conversation.AssistantTurn(noLocationReply))
		res.ErrorCode = dto.ErrorCodeNoLocation
		s.publish(ctx, events.AdvisoryAnswered(sessionID, "", true))
		return res, nil
	}

	profile := s.resolveSoil(ctx, session, coords)
	res.Soil = &profile

	text := s.prompts.Build(prompt.Context{
		Soil:     profile,
		Location: &coords,
		History:  history,
		Question: question.Text,
	})

	reply, err := s.generate(ctx, text)
	if err != nil {
		s.logger.Error(advisoryModule, "Advisory generation failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		reply = AdvisoryApology(err)
		res.ErrorCode = dto.ErrorCodeInference
	} else {
		reply = format.Format(reply)
	}

	res.Answer = s.appendTurn(session, conversation.AssistantTurn(reply))
	s.publish(ctx, events.AdvisoryAnswered(sessionID, string(profile.Source), res.ErrorCode != ""))

	s.logger.Info(advisoryModule, "Question answered", map[string]interface{}{
		"session_id":  sessionID,
		"soil_source": profile.Source,
		"coords":      coords.String(),
		"degraded":    res.ErrorCode != "",
	})
	return res, nil
}

func (s *advisoryService) resolveLocation(ctx context.Context, session *store.Session, device dto.DeviceReport) (advisory.Coordinates, error) {
	if c, ok := session.Coordinates(); ok {
		return c, nil
	}

	var opts []geo.Option
	if s.cfg.Geo.UseDefault {
		opts = append(opts, geo.WithFallback(advisory.Coordinates{
			Latitude:  s.cfg.Geo.DefaultLat,
			Longitude: s.cfg.Geo.DefaultLng,
		}))
	}

	c, err := geo.NewResolver(s.profiles, s.logger, opts...).Resolve(ctx, reportedDevice(device))
	if err != nil {
		return advisory.Coordinates{}, err
	}
	session.SetCoordinates(c)
	return c, nil
}

func (s *advisoryService) resolveSoil(ctx context.Context, session *store.Session, c advisory.Coordinates) soil.Profile {
	if p, ok := session.SoilProfile(); ok {
		return p
	}
	p := s.soil.Resolve(ctx, c)
	session.SetSoilProfile(p)
	return p
}

func (s *advisoryService) generate(ctx context.Context, text string) (string, error) {
	if s.llm == nil {
		return "", advisory.ErrInferenceUnavailable
	}
	return s.llm.Generate(ctx, text, llm.WithTemperature(advisoryTemperature))
}

func (s *advisoryService) History(ctx context.Context, sessionID string) (*dto.HistoryResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	turns := session.Conversation.History()
	if turns == nil {
		turns = []conversation.Turn{}
	}
	return &dto.HistoryResponse{SessionID: sessionID, Turns: turns}, nil
}

func (s *advisoryService) Soil(ctx context.Context, sessionID string) (*soil.Profile, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	p, ok := session.SoilProfile()
	if !ok {
		return nil, serverutils.NotFound("soil profile")
	}
	return &p, nil
}

func (s *advisoryService) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.session(sessionID); err != nil {
		return err
	}
	s.sessions.Delete(sessionID)
	s.logger.Info(advisoryModule, "Session deleted", map[string]interface{}{"session_id": sessionID})
	return nil
}

func (s *advisoryService) appendTurn(session *store.Session, turn conversation.Turn) conversation.Turn {
	turn = session.Conversation.Append(turn)
	pushTurn(s.notifier, s.logger, session.ID, turn)
	return turn
}

func (s *advisoryService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(advisoryModule, "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

func pushTurn(n Notifier, log logger.ILogger, sessionID string, turn conversation.Turn) {
	if n == nil {
		return
	}
	if err := n.Send(sessionID, websocket.TypeTurn, turn); err != nil {
		log.Warn(advisoryModule, "Failed to push turn", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

func reportedDevice(d dto.DeviceReport) geo.ReportedDevice {
	rd := geo.ReportedDevice{LocationGranted: d.LocationGranted, FixError: d.FixError}
	if d.Latitude != nil && d.Longitude != nil {
		rd.Position = &advisory.Coordinates{Latitude: *d.Latitude, Longitude: *d.Longitude}
	}
	return rd
}

// AdvisoryApology picks the assistant text shown when the model call failed.
func AdvisoryApology(err error) string {
	msg := strings.ToLower(err.Error())
	pe, isProvider := llm.AsProviderError(err)

	switch {
	case strings.Contains(msg, "api key") || (isProvider && (pe.Status == 401 || pe.Status == 403)):
		return apologyAPIKey
	case strings.Contains(msg, "network") || (isProvider && pe.Kind == llm.KindTransport) || errors.Is(err, context.DeadlineExceeded):
		return apologyNetwork
	case strings.Contains(msg, "model"):
		return apologyModel
	default:
		return apologyDefault
	}
}
