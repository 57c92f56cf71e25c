package telegram

import "sync"

// inFlight holds chat IDs with an analysis running, so a burst of photos
// from one chat does not fan out into parallel model calls.
var inFlight sync.Map // chatID -> struct{}

func claimChat(chatID int64) bool {
	_, busy := inFlight.LoadOrStore(chatID, struct{}{})
	return !busy
}

func releaseChat(chatID int64) { inFlight.Delete(chatID) }
