package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider answers updates that no registered handler claims: free
// text when no text fallback is set, media the bot cannot read, and
// callbacks whose key is unknown (typically buttons from an older release).
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnsupportedMedia() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// MediaEndpoints lists the update kinds routed to UnsupportedMedia.
var MediaEndpoints = []string{
	tele.OnDocument,
	tele.OnPhoto,
	tele.OnVideo,
	tele.OnVoice,
	tele.OnAudio,
	tele.OnSticker,
}
