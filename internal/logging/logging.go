// Package logging wraps the standard library logger with the plain
// bracketed prefixes the teacher repo uses for status lines
// ("[FAIL]", "[START]"), rather than pulling in a structured-logging
// library the corpus never reaches for.
package logging

import (
	"log"
	"os"
)

// Logger is a tagged wrapper over *log.Logger (it has no log levels);
// each component gets its own bracketed tag so interleaved goroutine
// output stays attributable.
type Logger struct {
	tag string
	l   *log.Logger
}

// New returns a Logger tagged with the given component name, e.g.
// New("audio") logs lines prefixed "[hdxav:audio] ", after the
// standard date and time.
func New(tag string) *Logger {
	return &Logger{
		tag: tag,
		l:   log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (lg *Logger) Printf(format string, args ...any) {
	lg.l.Printf("[hdxav:"+lg.tag+"] "+format, args...)
}

func (lg *Logger) Println(args ...any) {
	all := append([]any{"[hdxav:" + lg.tag + "]"}, args...)
	lg.l.Println(all...)
}
