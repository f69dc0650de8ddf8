package models

import "time"

// PostingState is the step a two-phase job creation reached.
type PostingState string

const (
	PostingAllocated PostingState = "allocated"
	PostingPopulated PostingState = "populated"
	PostingFailed    PostingState = "failed"
)

// Posting records a job creation saga, so a failed populate step can be repaired by job ID.
// Payload is the JSON body of the populate request.
type Posting struct {
	JobID     int64        `gorm:"primaryKey;autoIncrement:false"`
	State     PostingState `gorm:"index"`
	Payload   []byte
	LastError string
	Attempts  int `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionLink remembers the identity token a chat signed in with, so the chat survives restarts.
type SessionLink struct {
	ChatID    int64 `gorm:"primaryKey;autoIncrement:false"`
	Token     string
	UpdatedAt time.Time
}
