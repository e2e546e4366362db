package log

import (
	"fmt"
	golog "log"
)

// gologOutputter is the default Outputter, writing through Go's
// standard log package at the Info level.
type gologOutputter struct{}

func (gologOutputter) Level() Level { return Info }

func (gologOutputter) Output(calldepth int, level Level, s string) error {
	return golog.Output(calldepth+1, fmt.Sprintf("%s: %s", level, s))
}
