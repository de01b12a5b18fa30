package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"ricochet/server/logging"
)

var severityColors = map[logging.Severity]string{
	logging.SeverityDebug: "\x1b[90m",
	logging.SeverityInfo:  "\x1b[36m",
	logging.SeverityWarn:  "\x1b[33m",
	logging.SeverityError: "\x1b[31m",
}

const colorReset = "\x1b[0m"

// ConsoleSink renders events as single log lines for operators tailing the
// process output.
type ConsoleSink struct {
	logger *log.Logger
	color  bool
}

func NewConsoleSink(w io.Writer, cfg logging.ConsoleConfig) *ConsoleSink {
	return &ConsoleSink{
		logger: log.New(w, "", log.LstdFlags),
		color:  cfg.UseColor,
	}
}

func (s *ConsoleSink) Write(event logging.Event) error {
	if s.logger == nil {
		return nil
	}

	var b strings.Builder
	b.WriteString(s.severityTag(event.Severity))
	fmt.Fprintf(&b, " %s tick=%d", event.Type, event.Tick)
	if ref := renderRef(event.Actor); ref != "" {
		fmt.Fprintf(&b, " actor=%s", ref)
	}
	if len(event.Targets) > 0 {
		refs := make([]string, 0, len(event.Targets))
		for _, target := range event.Targets {
			refs = append(refs, renderRef(target))
		}
		fmt.Fprintf(&b, " targets=%s", strings.Join(refs, ","))
	}
	if event.Payload != nil {
		if data, err := json.Marshal(event.Payload); err == nil {
			fmt.Fprintf(&b, " payload=%s", data)
		} else {
			fmt.Fprintf(&b, " payload=%v", event.Payload)
		}
	}

	s.logger.Print(b.String())
	return nil
}

func (s *ConsoleSink) Close(context.Context) error {
	return nil
}

func (s *ConsoleSink) severityTag(sev logging.Severity) string {
	label := strings.ToUpper(sev.String())
	if !s.color {
		return label
	}
	color, ok := severityColors[sev]
	if !ok {
		return label
	}
	return color + label + colorReset
}

func renderRef(ref logging.EntityRef) string {
	switch {
	case ref.ID == "" && ref.Kind == "":
		return ""
	case ref.ID == "":
		return string(ref.Kind)
	case ref.Kind == "":
		return ref.ID
	}
	return string(ref.Kind) + ":" + ref.ID
}
