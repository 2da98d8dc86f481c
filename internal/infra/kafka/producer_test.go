package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/lexaid/moderation-service/internal/infra/config"
)

func TestProducerCloseClosesErrorChannel(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg:      config.KafkaSettings{TopicPrefix: "moderation"},
		errChan:  make(chan error, 1),
	}
	go producer.handleErrors()

	asyncProducer.errors <- &sarama.ProducerError{
		Err: errors.New("broker unavailable"),
		Msg: &sarama.ProducerMessage{Topic: "moderation.user.banned"},
	}

	if err := producer.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	select {
	case err := <-producer.Errors():
		if err == nil {
			t.Fatal("expected a forwarded producer error")
		}
	case <-time.After(time.Second):
		t.Fatal("expected producer error to be forwarded")
	}

	select {
	case _, ok := <-producer.Errors():
		if ok {
			t.Fatal("expected error channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("expected error channel to close after Close")
	}
}
