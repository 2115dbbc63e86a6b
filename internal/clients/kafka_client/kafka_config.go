package kafka_client

import "os"

type KafkaConfig struct {
	Broker          string
	GroupID         string
	Topic           string
	TransactionalID string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// GetKafkaConfig builds the config for one process. The consumed topic and
// the producer transactional id can be overridden per deployment.
func GetKafkaConfig(broker, groupID string) KafkaConfig {
	return KafkaConfig{
		Broker:          broker,
		GroupID:         groupID,
		Topic:           getEnv("KAFKA_CONSUMER_TOPIC", KAFKA_TOPIC_REVIEW_SUBMITTED),
		TransactionalID: getEnv("KAFKA_TRANSACTIONAL_ID", groupID+"-producer"),
	}
}
