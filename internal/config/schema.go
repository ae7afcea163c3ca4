package config

// Config is the top-level YAML structure.
type Config struct {
	LogLevel string       `yaml:"log_level"` // debug | info | warn | error
	Server   ServerConf   `yaml:"server"`
	Pipeline PipelineConf `yaml:"pipeline"`
	Kafka    KafkaConf    `yaml:"kafka"`
	MQTT     MQTTConf     `yaml:"mqtt"`
}

// ServerConf holds HTTP listener settings.
type ServerConf struct {
	Addr           string `yaml:"addr"`
	MaxBatchSize   int    `yaml:"max_batch_size"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
}

// PipelineConf holds tunable publishing concurrency settings.
type PipelineConf struct {
	Workers          int `yaml:"workers"`
	QueueDepth       int `yaml:"queue_depth"`
	PublishTimeoutMs int `yaml:"publish_timeout_ms"`
}

// KafkaConf selects the record sink. Empty Brokers keeps records in memory.
type KafkaConf struct {
	Brokers    []string `yaml:"brokers"`
	OwnerTopic string   `yaml:"owner_topic"`
	EventTopic string   `yaml:"event_topic"`
	DLQTopic   string   `yaml:"dlq_topic"`
}

// MQTTConf configures the device event subscription. Empty BrokerURL
// disables it.
type MQTTConf struct {
	BrokerURL string `yaml:"broker_url"`
	ClientID  string `yaml:"client_id"`
	Topic     string `yaml:"topic"`
	QoS       byte   `yaml:"qos"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
}
