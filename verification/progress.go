package verification

import (
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"
)

// maybeProgress draws a progress bar on a terminal and does nothing
// elsewhere.
type maybeProgress struct {
	bar *pb.ProgressBar
}

func newProgress(n int, enabled bool) *maybeProgress {
	mp := &maybeProgress{}
	if enabled && n > 1 && isatty.IsTerminal(os.Stderr.Fd()) {
		mp.bar = pb.ProgressBarTemplate(`{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{etime . }}`).New(n)
		mp.bar.SetWriter(os.Stderr)
		mp.bar.SetRefreshRate(time.Second)
	}
	return mp
}

func (mp *maybeProgress) Start() {
	if mp.bar != nil {
		mp.bar.Start()
	}
}

func (mp *maybeProgress) Prefix(s string) {
	if mp.bar != nil {
		mp.bar.Set("prefix", s+" ")
	}
}

func (mp *maybeProgress) Increment() {
	if mp.bar != nil {
		mp.bar.Increment()
	}
}

func (mp *maybeProgress) Finish() {
	if mp.bar != nil {
		mp.bar.Finish()
	}
}
