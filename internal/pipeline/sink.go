package pipeline

import "sync"

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// FuncSink calls F for every event, one call at a time.
type FuncSink struct {
	mu sync.Mutex
	F  func(Event)
}

func (s *FuncSink) OnEvent(evt Event) {
	if s == nil || s.F == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.F(evt)
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
