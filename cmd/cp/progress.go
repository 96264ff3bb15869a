package main

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// barProgress adapts a progressbar/v3 bar to cpengine.Progress.
type barProgress struct {
	bar *progressbar.ProgressBar
}

func newProgressSink() *barProgress {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("copying"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	return &barProgress{bar: bar}
}

func (p *barProgress) Add(n int64) {
	_ = p.bar.Add64(n)
}

func (p *barProgress) Suspend(fn func()) {
	p.bar.Clear()
	fn()
	_ = p.bar.RenderBlank()
}
