// Package logging builds the slog logger used by the bfi CLI.
//
// Records fan out to every configured sink: a text handler for the
// terminal, a JSON handler for a log file and the systemd journal.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// Options selects the sinks of a logger.
type Options struct {
	// Level is the minimum level for every sink. Defaults to Info.
	Level slog.Leveler

	// Terminal receives human-readable text records, usually os.Stderr.
	Terminal io.Writer

	// File receives JSON records.
	File io.Writer

	// Journal enables the systemd journal sink. When the journal is not
	// reachable a warning is written to Terminal and the sink is skipped.
	Journal bool
}

// New creates a logger fanning out to the sinks selected by opts.
// With no sinks the logger discards everything.
func New(opts Options) *slog.Logger {
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	var handlers []slog.Handler

	var terminalHandler slog.Handler
	if opts.Terminal != nil {
		terminalHandler = slog.NewTextHandler(opts.Terminal, &slog.HandlerOptions{Level: level})
		handlers = append(handlers, terminalHandler)
	}

	if opts.File != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.File, &slog.HandlerOptions{Level: level}))
	}

	if opts.Journal {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			ReplaceGroup: func(key string) string {
				return toJournalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			if terminalHandler != nil {
				record := slog.NewRecord(time.Now(), slog.LevelWarn, "systemd journal unavailable", 0)
				record.Add("error", err)
				_ = terminalHandler.Handle(context.Background(), record)
			}
		} else {
			handlers = append(handlers, slogmulti.Pipe(minLevel(level)).Handler(journalHandler))
		}
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

// minLevel drops records below level before they reach the wrapped handler.
func minLevel(level slog.Leveler) slogmulti.Middleware {
	return slogmulti.NewEnabledInlineMiddleware(func(ctx context.Context, l slog.Level, next func(context.Context, slog.Level) bool) bool {
		return l >= level.Level() && next(ctx, l)
	})
}

// toJournalKey maps an attribute key to a valid journal field name:
// upper case letters, digits and underscores.
func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
}
