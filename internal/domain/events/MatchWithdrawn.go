package events

var MatchWithdrawnTopic = "MatchWithdrawnEvent"

type MatchWithdrawn struct {
	UID     string
	MatchID int64
}
