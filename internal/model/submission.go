package model

import "time"

// Submission is an ephemeral value describing one file arriving at the
// system. It is created by the Run Controller and destroyed when the
// Diagnostic is returned (spec.md §3).
type Submission struct {
	SenderID    string
	PackageName string
	Channel     Channel
	Blob        []byte
	FileName    string
	ReceivedAt  time.Time
	Deadline    time.Time // submission cutoff; a ReceivedAt after it earns an AUTH005 WARNING. Zero: the Run Controller fills it from the sender's deadline

	// Channel-specific identity, checked by the Sender Gate (spec.md §4.6 step 5).
	APIKey       string
	EmailSender  string
	SourceHost   string
}
