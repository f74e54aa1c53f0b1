package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/landlorddesk/api/internal/services"
)

// PubSubRenderPublisher publishes document render jobs to a Pub/Sub topic.
type PubSubRenderPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubRenderPublisher constructs a Pub/Sub backed render job publisher.
func NewPubSubRenderPublisher(topic *pubsub.Topic) (*PubSubRenderPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub render publisher: topic is required")
	}
	return &PubSubRenderPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishRender enqueues a render job message on the configured topic.
func (p *PubSubRenderPublisher) PublishRender(ctx context.Context, job services.RenderJob) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub render publisher: not initialised")
	}

	data, err := p.marshal(job)
	if err != nil {
		return fmt.Errorf("marshal render job: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "documentId", job.DocumentID)
	setAttr(attrs, "caseId", job.CaseID)
	setAttr(attrs, "kind", string(job.Kind))

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish render job: %w", err)
	}
	return nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
