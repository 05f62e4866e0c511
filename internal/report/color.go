package report

import "github.com/fatih/color"

// palette holds the colors used by the text presenters and the banner.
// Every color is forced on or off so the result does not depend on
// color.NoColor.
type palette struct {
	intro         *color.Color
	moved         *color.Color
	ok            *color.Color
	success       *color.Color
	warning       *color.Color
	failed        *color.Color
	exception     *color.Color
	exceptionBold *color.Color
	dim           *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		intro:         color.New(color.FgGreen),
		moved:         color.New(color.FgCyan),
		ok:            color.New(color.FgGreen),
		success:       color.New(color.FgHiGreen),
		warning:       color.New(color.FgHiYellow),
		failed:        color.New(color.FgHiRed),
		exception:     color.New(color.FgHiMagenta),
		exceptionBold: color.New(color.FgHiMagenta, color.Bold),
		dim:           color.New(color.Faint),
	}
	for _, c := range []*color.Color{
		p.intro, p.moved, p.ok, p.success, p.warning,
		p.failed, p.exception, p.exceptionBold, p.dim,
	} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Option configures the text presenters and the banner writer.
type Option func(*textOptions)

type textOptions struct {
	color bool
}

// WithColor turns ANSI colors on or off. Colors are off by default.
func WithColor(enabled bool) Option {
	return func(o *textOptions) {
		o.color = enabled
	}
}

func applyOptions(opts []Option) textOptions {
	var o textOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
