package mq

import (
	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"

	nlog "github.com/yeisme/sociojustice/pkg/log"
)

// watermillLogger 把 watermill 日志转到 zerolog.
// watermill 在 Info 级别输出每次订阅和关闭，这里整体降一级.
type watermillLogger struct {
	l *zerolog.Logger
}

func newWatermillLogger() watermill.LoggerAdapter {
	return watermillLogger{l: nlog.Component("mq")}
}

func (w watermillLogger) emit(ev *zerolog.Event, msg string, fields watermill.LogFields) {
	ev.Fields(map[string]any(fields)).Msg(msg)
}

func (w watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.emit(w.l.Error().Err(err), msg, fields)
}

func (w watermillLogger) Info(msg string, fields watermill.LogFields) {
	w.emit(w.l.Debug(), msg, fields)
}

func (w watermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.emit(w.l.Trace(), msg, fields)
}

func (w watermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.emit(w.l.Trace(), msg, fields)
}

func (w watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	l := w.l.With().Fields(map[string]any(fields)).Logger()
	return watermillLogger{l: &l}
}
