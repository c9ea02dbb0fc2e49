package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jaysurani18/smart-society/common/mqtt"
)

// NoticePublisher broadcasts newly created notices.
type NoticePublisher interface {
	PublishNotice(ctx context.Context, notice *NoticeDTO) error
}

// Publisher is the subset of the MQTT client used for broadcasts.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	QoS() byte
}

var _ Publisher = (*mqtt.Client)(nil)

// MQTTNoticePublisher publishes notices as JSON on a single topic, e.g. for lobby displays.
type MQTTNoticePublisher struct {
	client Publisher
	topic  string
}

func NewMQTTNoticePublisher(client Publisher, topic string) *MQTTNoticePublisher {
	return &MQTTNoticePublisher{client: client, topic: topic}
}

func (p *MQTTNoticePublisher) PublishNotice(ctx context.Context, notice *NoticeDTO) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}
	if err := p.client.Publish(p.topic, p.client.QoS(), false, payload); err != nil {
		return fmt.Errorf("publish notice: %w", err)
	}
	return nil
}
