package cli

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ImportProgress renders import progress as a byte-based progress bar.
type ImportProgress struct {
	bar *progressbar.ProgressBar
}

// NewImportProgress creates a progress bar for a file of total bytes.
// A total of -1 renders a spinner instead.
func NewImportProgress(w io.Writer, description string, total int64) *ImportProgress {
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &ImportProgress{bar: bar}
}

// Update moves the bar to the cumulative byte count.
func (p *ImportProgress) Update(consumed int64) {
	_ = p.bar.Set64(consumed)
}

// Complete fills and clears the bar.
func (p *ImportProgress) Complete() {
	_ = p.bar.Finish()
}

// Current returns the last reported byte count.
func (p *ImportProgress) Current() int64 {
	return p.bar.State().CurrentNum
}
