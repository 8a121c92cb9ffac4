package window

import "strings"

const loadingSuffix = " (loading...)"

// Indicator shows the loading state in the window title.
type Indicator struct {
	w *Window
}

func (w *Window) Indicator() *Indicator {
	return &Indicator{w: w}
}

func (i *Indicator) Show() {
	if !strings.HasSuffix(i.w.Title, loadingSuffix) {
		i.w.SetTitle(i.w.Title + loadingSuffix)
	}
}

func (i *Indicator) Hide() {
	i.w.SetTitle(strings.TrimSuffix(i.w.Title, loadingSuffix))
}
