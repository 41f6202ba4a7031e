package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// debugSampler passes the first keep events of each run of every events.
// A zero window passes everything.
type debugSampler struct {
	window atomic.Uint64 // keep<<32 | every
	seen   atomic.Uint64
}

func (s *debugSampler) set(keep, every int) {
	if keep <= 0 || every <= 0 {
		s.window.Store(0)
		return
	}
	keep = min(keep, every)
	s.window.Store(uint64(keep)<<32 | uint64(every))
	s.seen.Store(0)
}

func (s *debugSampler) allow() bool {
	w := s.window.Load()
	if w == 0 {
		return true
	}
	keep, every := w>>32, w&0xffffffff
	return (s.seen.Add(1)-1)%every < keep
}

// parseSampleSpec reads "k/n" or "n" (meaning 1/n). "off", "0" and "all" yield 0,0,
// which lets everything through. Anything unparsable falls back to def.
func parseSampleSpec(spec string, defKeep, defEvery int) (int, int) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	switch spec {
	case "":
		return defKeep, defEvery
	case "off", "all", "0":
		return 0, 0
	}
	left, right, ok := strings.Cut(spec, "/")
	if !ok {
		left, right = "1", spec
	}
	keep, err1 := strconv.Atoi(strings.TrimSpace(left))
	every, err2 := strconv.Atoi(strings.TrimSpace(right))
	if err1 != nil || err2 != nil || keep <= 0 || every <= 0 {
		return defKeep, defEvery
	}
	return keep, every
}
