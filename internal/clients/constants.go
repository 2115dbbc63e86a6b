package clients

import "time"

const (
	MAX_RETRIES     = 3
	INITIAL_BACKOFF = 250 * time.Millisecond
	USER_AGENT      = "courtsense-moderator/1.0 (+https://github.com/spacesedan/courtsense)"
)
