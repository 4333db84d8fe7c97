package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"arbwatch/internal/application/port"
)

type Sink struct {
	out io.Writer
}

func NewSink() port.StatusSink { return &Sink{out: os.Stdout} }

func NewSinkTo(w io.Writer) *Sink { return &Sink{out: w} }

// WriteStatus 一行一个快照，前面带本地时间
func (s *Sink) WriteStatus(ts time.Time, line string) error {
	_, err := fmt.Fprintf(s.out, "%s %s\n", ts.Format("2006-01-02 15:04:05"), line)
	return err
}
