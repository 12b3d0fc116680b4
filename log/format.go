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

package log

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Format turns a record into a line of output.
type Format interface {
	Format(r *record) []byte
}

type formatFunc func(*record) []byte

func (f formatFunc) Format(r *record) []byte { return f(r) }

var levelColor = map[Lvl]*color.Color{
	LvlCrit:  color.New(color.FgWhite, color.BgRed, color.Bold),
	LvlError: color.New(color.FgRed, color.Bold),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgBlue),
}

// TerminalFormat formats a record for human consumption, colorizing the
// level tag when useColor is true.
func TerminalFormat(useColor bool) Format {
	return formatFunc(func(r *record) []byte {
		var b bytes.Buffer
		lvl := r.Lvl.String()
		if useColor {
			if c, ok := levelColor[r.Lvl]; ok {
				lvl = c.Sprint(lvl)
			}
		}
		fmt.Fprintf(&b, "%s[%s] %s", r.Time.Format("01-02|15:04:05.000"), lvl, r.Msg)
		if r.Call.Frame().Function != "" && (r.Lvl == LvlError || r.Lvl == LvlCrit) {
			fmt.Fprintf(&b, " (%s)", r.Call)
		}
		for i := 0; i < len(r.Ctx); i += 2 {
			fmt.Fprintf(&b, " %s=%v", r.Ctx[i], formatValue(r.Ctx[i+1]))
		}
		b.WriteByte('\n')
		return b.Bytes()
	})
}

// LogfmtFormat formats a record as plain key=value pairs, with no color
// and no terminal escape sequences — suitable for files or pipes.
func LogfmtFormat() Format {
	return formatFunc(func(r *record) []byte {
		var b bytes.Buffer
		fmt.Fprintf(&b, "t=%s lvl=%s msg=%q", r.Time.Format("2006-01-02T15:04:05-0700"), r.Lvl, r.Msg)
		for i := 0; i < len(r.Ctx); i += 2 {
			fmt.Fprintf(&b, " %s=%q", r.Ctx[i], fmt.Sprint(formatValue(r.Ctx[i+1])))
		}
		b.WriteByte('\n')
		return b.Bytes()
	})
}

func formatValue(v interface{}) interface{} {
	if err, ok := v.(error); ok {
		return strings.TrimSpace(err.Error())
	}
	return v
}

// StreamHandler writes formatted records to w, one write per record,
// guarded by a mutex since w may be shared across goroutines.
func StreamHandler(w io.Writer, fmtr Format) Handler {
	h := &streamHandler{w: w, fmtr: fmtr}
	return h
}

type streamHandler struct {
	mu   sync.Mutex
	w    io.Writer
	fmtr Format
}

func (h *streamHandler) Log(r *record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(h.fmtr.Format(r))
	return err
}

// LvlFilterHandler wraps another handler, suppressing any record more
// verbose than maxLvl.
func LvlFilterHandler(maxLvl Lvl, next Handler) Handler {
	return &lvlFilterHandler{maxLvl: maxLvl, next: next}
}

type lvlFilterHandler struct {
	maxLvl Lvl
	next   Handler
}

func (h *lvlFilterHandler) Log(r *record) error {
	if r.Lvl > h.maxLvl {
		return nil
	}
	return h.next.Log(r)
}
