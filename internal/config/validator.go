package config

import (
	"fmt"
	"strings"
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the config for:
//   - Known log level
//   - Positive concurrency and size limits
//   - Distinct, non-empty topics
//   - MQTT topic and QoS when the MQTT source is enabled
func Validate(cfg *Config) error {
	var errs []string

	if !logLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, fmt.Sprintf("log_level %q must be one of debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Server.MaxBatchSize <= 0 {
		errs = append(errs, "server.max_batch_size must be positive")
	}
	if cfg.Pipeline.Workers <= 0 {
		errs = append(errs, "pipeline.workers must be positive")
	}
	if cfg.Pipeline.QueueDepth <= 0 {
		errs = append(errs, "pipeline.queue_depth must be positive")
	}

	topics := map[string]string{} // topic → setting
	for _, t := range []struct{ key, val string }{
		{"kafka.owner_topic", cfg.Kafka.OwnerTopic},
		{"kafka.event_topic", cfg.Kafka.EventTopic},
		{"kafka.dlq_topic", cfg.Kafka.DLQTopic},
	} {
		if t.val == "" {
			errs = append(errs, fmt.Sprintf("%s is required", t.key))
			continue
		}
		if prev, ok := topics[t.val]; ok {
			errs = append(errs, fmt.Sprintf("duplicate topic %q (used by %s and %s)", t.val, prev, t.key))
			continue
		}
		topics[t.val] = t.key
	}
	for i, b := range cfg.Kafka.Brokers {
		if strings.TrimSpace(b) == "" {
			errs = append(errs, fmt.Sprintf("kafka.brokers[%d] is empty", i))
		}
	}

	if cfg.MQTT.BrokerURL != "" {
		if cfg.MQTT.Topic == "" {
			errs = append(errs, "mqtt.topic is required when mqtt.broker_url is set")
		}
		if cfg.MQTT.QoS > 2 {
			errs = append(errs, fmt.Sprintf("mqtt.qos %d must be 0, 1 or 2", cfg.MQTT.QoS))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
