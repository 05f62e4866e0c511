package probe

import "github.com/nao1215/certcheck/internal/model"

// Handler receives the result of every probe in completion order.
// Handle is called from the goroutine running Engine.Run and never
// concurrently. Presenters in the report package implement it.
type Handler interface {
	Handle(info model.RunInfo, result model.ProbeResult)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(info model.RunInfo, result model.ProbeResult)

// Handle calls f(info, result).
func (f HandlerFunc) Handle(info model.RunInfo, result model.ProbeResult) {
	f(info, result)
}
