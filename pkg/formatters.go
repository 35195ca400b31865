package itest

import (
	"fmt"

	"github.com/mitchellh/colorstring"
	log "github.com/sirupsen/logrus"
)

type MessageOnlyFormatter struct {
}

func (f *MessageOnlyFormatter) Format(entry *log.Entry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

// colorTextFormatter prefixes messages with the colored level and the test
// and action they belong to, e.g. "[cyan]OrderTest.send-order ≫ ".
type colorTextFormatter struct {
	colorize *colorstring.Colorize
	colors   map[log.Level]string
}

func newColorTextFormatter(colors map[log.Level]string) *colorTextFormatter {
	return &colorTextFormatter{
		colorize: &colorstring.Colorize{
			Colors: colorstring.DefaultColors,
			Reset:  true,
		},
		colors: colors,
	}
}

func (f *colorTextFormatter) Format(entry *log.Entry) ([]byte, error) {
	var prefix = "[" + f.colors[entry.Level] + "]"
	if test, ok := entry.Data["test"].(string); ok {
		if action, ok := entry.Data["action"].(string); ok {
			prefix = fmt.Sprintf("%s%s.%s ≫ ", prefix, test, action)
		} else {
			prefix = fmt.Sprintf("%s%s ≫ ", prefix, test)
		}
	}
	return []byte(f.colorize.Color(fmt.Sprintf("%s%s\n", prefix, entry.Message))), nil
}
