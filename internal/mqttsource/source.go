// Package mqttsource ingests device events published over MQTT.
package mqttsource

import (
	"context"
	"errors"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/gyaneshwarpardhi/smartobjects/internal/config"
	"github.com/gyaneshwarpardhi/smartobjects/internal/ingest"
)

// EventIngestor is the subset of ingest.Ingestor used by the source.
type EventIngestor interface {
	EventAsync(raw []byte, source string) (ingest.Receipt, error)
}

// Handler returns the paho message callback. Each payload is decoded as an
// Event and queued; failures are logged and dead-lettered by the ingestor.
func Handler(ing EventIngestor) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		payload := msg.Payload()
		rcpt, err := ing.EventAsync(payload, "mqtt")
		if err != nil {
			slog.Warn("mqtt event rejected",
				"topic", msg.Topic(),
				"mid", msg.MessageID(),
				"bytes", len(payload),
				"err", err,
			)
			return
		}
		slog.Debug("mqtt event queued", "topic", msg.Topic(), "event_id", rcpt.Key)
	}
}

// NewClient builds a paho client that subscribes to conf.Topic on every
// (re)connect.
func NewClient(conf config.MQTTConf, ing EventIngestor) mqtt.Client {
	h := Handler(ing)

	opts := mqtt.NewClientOptions().
		AddBroker(conf.BrokerURL).
		SetClientID(conf.ClientID).
		SetOrderMatters(false).
		SetCleanSession(false).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true)

	if conf.Username != "" {
		opts.SetUsername(conf.Username)
	}
	if conf.Password != "" {
		opts.SetPassword(conf.Password)
	}

	opts.OnConnect = func(c mqtt.Client) {
		slog.Info("mqtt connected", "broker", conf.BrokerURL)
		if token := c.Subscribe(conf.Topic, conf.QoS, h); token.Wait() && token.Error() != nil {
			slog.Error("mqtt subscribe failed", "topic", conf.Topic, "err", token.Error())
			return
		}
		slog.Info("mqtt subscribed", "topic", conf.Topic, "qos", conf.QoS)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		slog.Warn("mqtt connection lost", "err", err)
	}

	return mqtt.NewClient(opts)
}

// ConnectWithBackoff retries Connect, doubling the delay from start up to
// max, until it succeeds or ctx is cancelled.
func ConnectWithBackoff(ctx context.Context, client mqtt.Client, start, max time.Duration) error {
	backoff := start
	for {
		token := client.Connect()
		token.Wait()
		if token.Error() == nil {
			return nil
		}
		slog.Warn("mqtt connect failed", "err", token.Error(), "retry_in", backoff)
		select {
		case <-time.After(backoff):
			backoff = nextBackoff(backoff, max)
		case <-ctx.Done():
			return errors.Join(ctx.Err(), token.Error())
		}
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	if cur*2 > max {
		return max
	}
	return cur * 2
}
