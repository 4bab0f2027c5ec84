// Package notify announces finished exports on Pub/Sub so downstream
// consumers can refresh.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
)

const DefaultTopic = "dataset-refreshed"

// Refreshed is the message body published after a run
type Refreshed struct {
	GradeDistributions int `json:"gradeDistributions"`
	CourseEvaluations  int `json:"courseEvaluations"`
	CourseCodes        int `json:"courseCodes"`
}

type Publisher struct {
	topic *pubsub.Topic
}

func NewPublisher(client *pubsub.Client, topicID string) *Publisher {
	return &Publisher{topic: client.Topic(topicID)}
}

// Publish sends the event and waits for the server to acknowledge it
func (p *Publisher) Publish(ctx context.Context, event Refreshed) (string, error) {
	msg, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to create message: %w", err)
	}

	res := p.topic.Publish(ctx, &pubsub.Message{Data: msg})
	id, err := res.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish message: %w", err)
	}
	logrus.WithFields(logrus.Fields{"topic": p.topic.ID(), "id": id}).Info("Published refresh event")
	return id, nil
}

func (p *Publisher) Stop() {
	p.topic.Stop()
}
