package kafka_client

import "time"

const (
	KAFKA_TOPIC_REVIEW_SUBMITTED  = "review-submitted"  // reviews created by the booking app
	KAFKA_TOPIC_REVIEW_MODERATION = "review-moderation" // sentiment outcome per review
)

const (
	MAX_RETRIES   = 5
	RETRY_DELAY   = 2 * time.Second
	POLL_INTERVAL = time.Second
)
