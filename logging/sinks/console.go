package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"deepwarren/server/logging"
)

// Console renders events through charmbracelet/log for human operators.
type Console struct {
	logger *charmlog.Logger
}

func NewConsole(w io.Writer, cfg logging.ConsoleConfig) *Console {
	if w == nil {
		w = io.Discard
	}
	logger := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
	})
	if cfg.Verbose {
		logger.SetLevel(charmlog.DebugLevel)
	}
	return &Console{logger: logger}
}

func (s *Console) Write(event logging.Event) error {
	if s == nil || s.logger == nil {
		return nil
	}
	keyvals := []any{"turn", event.Turn}
	if actor := formatEntity(event.Actor); actor != "" {
		keyvals = append(keyvals, "actor", actor)
	}
	if targets := formatTargets(event.Targets); targets != "" {
		keyvals = append(keyvals, "targets", targets)
	}
	if event.Category != "" {
		keyvals = append(keyvals, "category", event.Category)
	}
	if payload := formatPayload(event.Payload); payload != "" {
		keyvals = append(keyvals, "payload", payload)
	}
	for k, v := range event.Extra {
		keyvals = append(keyvals, k, v)
	}

	msg := string(event.Type)
	switch event.Severity {
	case logging.SeverityDebug:
		s.logger.Debug(msg, keyvals...)
	case logging.SeverityWarn:
		s.logger.Warn(msg, keyvals...)
	case logging.SeverityError:
		s.logger.Error(msg, keyvals...)
	default:
		s.logger.Info(msg, keyvals...)
	}
	return nil
}

func (s *Console) Close(context.Context) error {
	return nil
}

func formatEntity(ref logging.EntityRef) string {
	if ref.ID == "" {
		return string(ref.Kind)
	}
	if ref.Kind == "" {
		return ref.ID
	}
	return fmt.Sprintf("%s:%s", ref.Kind, ref.ID)
}

func formatTargets(targets []logging.EntityRef) string {
	if len(targets) == 0 {
		return ""
	}
	parts := make([]string, 0, len(targets))
	for _, target := range targets {
		parts = append(parts, formatEntity(target))
	}
	return strings.Join(parts, ",")
}

func formatPayload(payload any) string {
	if payload == nil {
		return ""
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(data)
}
