package ocf

import (
	"fmt"

	"github.com/ocflib/ocf/log"
)

func logAt(out log.Outputter, level log.Level, format string, args ...interface{}) {
	if level > out.Level() {
		return
	}
	out.Output(3, level, fmt.Sprintf(format, args...))
}

func logDebugf(out log.Outputter, format string, args ...interface{}) {
	logAt(out, log.Debug, format, args...)
}

func logErrorf(out log.Outputter, format string, args ...interface{}) {
	logAt(out, log.Error, format, args...)
}
