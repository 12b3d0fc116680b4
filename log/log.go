// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides a minimal leveled, structured logger in the
// go-ethereum/log15 lineage: level-gated output, key/value context,
// and a terminal formatter that colorizes levels on a TTY.
package log

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Lvl is a log severity level, ordered from most to least severe.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERRO"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DBUG"
	case LvlTrace:
		return "TRCE"
	default:
		return "UNKN"
	}
}

// Logger writes leveled, structured log records.
type Logger interface {
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type record struct {
	Time time.Time
	Lvl  Lvl
	Msg  string
	Ctx  []interface{}
	Call stack.Call
}

// Handler processes a log record, e.g. writing it to a stream.
type Handler interface {
	Log(r *record) error
}

type logger struct {
	ctx []interface{}
	h   *swapHandler
}

// swapHandler lets the handler be atomically replaced (e.g. by SetDefault).
type swapHandler struct {
	handler atomic.Value
}

func (s *swapHandler) Log(r *record) error {
	h := s.handler.Load()
	if h == nil {
		return nil
	}
	return h.(Handler).Log(r)
}

func (s *swapHandler) Swap(h Handler) {
	s.handler.Store(h)
}

var (
	rootMu     sync.Mutex
	rootHandle = new(swapHandler)
	rootLogger = &logger{h: rootHandle}
)

func init() {
	rootHandle.Swap(StreamHandler(colorableStderr, TerminalFormat(isatty.IsTerminal(os.Stderr.Fd()))))
}

// Root returns the root logger.
func Root() Logger { return rootLogger }

// SetDefault replaces the root logger's handler, e.g. to redirect output
// or raise/lower the minimum level with LvlFilterHandler.
func SetDefault(h Handler) {
	rootMu.Lock()
	defer rootMu.Unlock()
	rootHandle.Swap(h)
}

// New returns a child of the root logger carrying the given context.
func New(ctx ...interface{}) Logger { return rootLogger.New(ctx...) }

func (l *logger) New(ctx ...interface{}) Logger {
	child := make([]interface{}, 0, len(l.ctx)+len(ctx))
	child = append(child, l.ctx...)
	child = append(child, ctx...)
	return &logger{ctx: child, h: l.h}
}

func (l *logger) write(lvl Lvl, msg string, ctx []interface{}) {
	r := &record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  normalize(append(l.ctx, ctx...)),
	}
	if lvl <= LvlWarn {
		r.Call = stack.Caller(2)
	}
	l.h.Log(r)
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx) }

// Package-level convenience functions delegate to the root logger.
func Trace(msg string, ctx ...interface{}) { rootLogger.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { rootLogger.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { rootLogger.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { rootLogger.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { rootLogger.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { rootLogger.Crit(msg, ctx...) }

func normalize(ctx []interface{}) []interface{} {
	if len(ctx)%2 != 0 {
		ctx = append(ctx, "LOG_ERROR_MISSING_VALUE")
	}
	for i := 0; i < len(ctx); i += 2 {
		if _, ok := ctx[i].(string); !ok {
			ctx[i] = fmt.Sprint(ctx[i])
		}
	}
	return ctx
}

// colorableStderr wraps os.Stderr so that ANSI color codes render
// correctly on Windows consoles too.
var colorableStderr = colorable.NewColorableStderr()
