package main

import (
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// batchProgress is a file counter drawn while a batch runs. It renders
// nothing unless stdout is a terminal.
type batchProgress struct {
	progress *mpb.Progress
	bar      *mpb.Bar
}

func newBatchProgress(total int, enabled bool) *batchProgress {
	var progress *mpb.Progress
	if enabled && stdoutIsTerminal() {
		progress = mpb.New(mpb.WithWidth(64))
	} else {
		progress = mpb.New(mpb.WithWidth(64), mpb.WithOutput(nil))
	}
	bar := progress.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Region files: ", decor.WCSyncWidth),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
		),
	)
	return &batchProgress{progress: progress, bar: bar}
}

func (p *batchProgress) Increment() {
	p.bar.Increment()
}

// Wait flushes the bar. A bar left short by an interrupted batch is aborted
// so Wait returns.
func (p *batchProgress) Wait() {
	if !p.bar.Completed() {
		p.bar.Abort(false)
	}
	p.progress.Wait()
}
