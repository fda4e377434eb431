package fulfillmentlocation

import (
	"github.com/go-logr/logr"
	"github.com/rs/zerolog"
)

// Logger receives a summary of every outbound request and its outcome. Info
// is called before a request and after a successful response; Error after a
// failure. detail is the request summary, the response payload or the error.
type Logger interface {
	Info(msg string, detail any)
	Error(msg string, detail any)
}

type nopLogger struct{}

func (nopLogger) Info(string, any)  {}
func (nopLogger) Error(string, any) {}

func loggerOrNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return guardedLogger{l: l}
}

// guardedLogger contains panics raised by the collaborator, such as a typed
// nil pointer whose methods dereference their receiver. Logging never fails
// a lookup.
type guardedLogger struct {
	l Logger
}

func (g guardedLogger) Info(msg string, detail any) {
	defer func() { _ = recover() }()
	g.l.Info(msg, detail)
}

func (g guardedLogger) Error(msg string, detail any) {
	defer func() { _ = recover() }()
	g.l.Error(msg, detail)
}

type zerologLogger struct {
	l zerolog.Logger
}

// NewZerologLogger reports client events through l. Request and response
// detail is logged at info level under "detail"; errors at error level.
func NewZerologLogger(l zerolog.Logger) Logger {
	return zerologLogger{l: l}
}

func (z zerologLogger) Info(msg string, detail any) {
	z.l.Info().Interface("detail", detail).Msg(msg)
}

func (z zerologLogger) Error(msg string, detail any) {
	ev := z.l.Error()
	if err, ok := detail.(error); ok {
		ev = ev.Err(err)
	} else {
		ev = ev.Interface("detail", detail)
	}
	ev.Msg(msg)
}

type logrLogger struct {
	l logr.Logger
}

// NewLogrLogger reports client events through l.
func NewLogrLogger(l logr.Logger) Logger {
	return logrLogger{l: l}
}

func (lr logrLogger) Info(msg string, detail any) {
	lr.l.Info(msg, "detail", detail)
}

func (lr logrLogger) Error(msg string, detail any) {
	if err, ok := detail.(error); ok {
		lr.l.Error(err, msg)
		return
	}
	lr.l.Error(nil, msg, "detail", detail)
}
