package websocket

import (
	"context"
	"errors"
	"log/slog"

	"f1insights/internal/analytics"
	apierrors "f1insights/internal/errors"
	"f1insights/internal/services"
	"f1insights/pkg/contracts/domain"
)

// Session holds the selection state of one dashboard connection. Selecting
// an action resets the params to that action's defaults. A session is
// driven by a single read loop and is not safe for concurrent use.
type Session struct {
	service   AnalyticsService
	validator ParamsValidator
	logger    *slog.Logger

	action string
	params domain.AnalyticsParams
}

// NewSession creates a session with nothing selected
func NewSession(service AnalyticsService, validator ParamsValidator, logger *slog.Logger) *Session {
	return &Session{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

// Action returns the selected action id, empty before the first select
func (s *Session) Action() string {
	return s.action
}

// Params returns the current selection
func (s *Session) Params() domain.AnalyticsParams {
	return s.params
}

// Menu returns the message sent when a connection opens
func (s *Session) Menu() *ServerMessage {
	return newMessage(TypeMenu, s.service.Menu())
}

// Handle applies one client message and returns the reply. Heartbeats
// have no reply.
func (s *Session) Handle(ctx context.Context, msg ClientMessage) *ServerMessage {
	switch msg.Type {
	case TypeHeartbeat:
		return nil

	case TypeSelect:
		if msg.Action == "" {
			return newErrorMessage(CodeInvalidMessage, "select requires an action", nil)
		}
		params, err := s.service.Defaults(ctx, msg.Action)
		if err != nil {
			return s.errorReply(ctx, msg.Action, err)
		}
		s.action = msg.Action
		s.params = params
		return s.run(ctx)

	case TypeParams:
		if s.action == "" {
			return newErrorMessage(CodeNoSelection, "select an action before changing params", nil)
		}
		if msg.Params == nil {
			return newErrorMessage(CodeInvalidMessage, "params message requires params", nil)
		}
		if err := s.validator.ValidateParams(*msg.Params); err != nil {
			return s.errorReply(ctx, s.action, err)
		}
		s.params = *msg.Params
		return s.run(ctx)

	case TypeReset:
		if s.action == "" {
			return newErrorMessage(CodeNoSelection, "select an action before resetting", nil)
		}
		params, err := s.service.Defaults(ctx, s.action)
		if err != nil {
			return s.errorReply(ctx, s.action, err)
		}
		s.params = params
		return s.run(ctx)

	default:
		return newErrorMessage(CodeInvalidMessage, "unknown message type "+msg.Type, nil)
	}
}

func (s *Session) run(ctx context.Context) *ServerMessage {
	view, err := s.service.Run(ctx, s.action, s.params)
	if err != nil {
		return s.errorReply(ctx, s.action, err)
	}
	s.params = view.Params
	return newMessage(TypeView, view)
}

func (s *Session) errorReply(ctx context.Context, action string, err error) *ServerMessage {
	code, message, details := classify(err)

	level := slog.LevelWarn
	if code == CodeAnalyticsFailed {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "session request failed",
		slog.String("action", action),
		slog.String("code", code),
		slog.String("error", err.Error()))

	return newErrorMessage(code, message, details)
}

// classify maps service errors to error message codes
func classify(err error) (code, message string, details interface{}) {
	var apiErr *apierrors.APIError

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CodeTimeout, "the analysis took too long and was cancelled", nil
	case errors.As(err, &apiErr):
		return apiErr.ErrorCode, apiErr.Message, apiErr.Details
	case errors.Is(err, services.ErrDatasetNotLoaded):
		return CodeDatasetNotLoaded, "the dataset is not loaded", nil
	case errors.Is(err, services.ErrUnknownAction):
		return CodeActionNotFound, err.Error(), nil
	case errors.Is(err, analytics.ErrUnknownDriver), errors.Is(err, analytics.ErrUnknownConstructor):
		return CodeEntityNotFound, err.Error(), nil
	default:
		return CodeAnalyticsFailed, "the analysis failed", nil
	}
}
