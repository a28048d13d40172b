package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shulebook_go/config"
	"shulebook_go/database"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Gateway is the external delivery collaborator. Actual transport (SMS
// aggregator, SMTP relay) lives behind this interface; the ledger core only
// hands messages over and never retries.
type Gateway interface {
	SendSMS(phone, message string) error
	SendEmail(email, subject, body string) error
}

// Message is one queued outbound message.
type Message struct {
	Channel   string    `json:"channel"` // "sms" or "email"
	To        string    `json:"to"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

const redisListKey = "messaging:outbox"

// Service dispatches messages through the gateway, optionally buffering
// through a Redis outbox so request paths never wait on the aggregator.
// If Redis is disabled/unavailable, messages are delivered directly.
type Service struct {
	redis    *redis.Client
	gateway  Gateway
	useRedis bool
}

func NewService(gw Gateway) *Service {
	if gw == nil {
		gw = NewLogGateway()
	}
	return &Service{
		redis:    database.GetRedisClient(),
		gateway:  gw,
		useRedis: config.AppConfig != nil && config.AppConfig.UseRedisReminderQueue && database.GetRedisClient() != nil,
	}
}

// SendSMS queues or delivers an SMS. A delivery failure is returned to the
// caller for counting but must never abort a dispatch batch.
func (s *Service) SendSMS(phone, body string) error {
	if phone == "" {
		return errors.New("missing phone number")
	}
	return s.dispatch(Message{Channel: "sms", To: phone, Body: body, CreatedAt: time.Now()})
}

// SendEmail queues or delivers an email.
func (s *Service) SendEmail(email, subject, body string) error {
	if email == "" {
		return errors.New("missing email address")
	}
	return s.dispatch(Message{Channel: "email", To: email, Subject: subject, Body: body, CreatedAt: time.Now()})
}

func (s *Service) dispatch(msg Message) error {
	if s.useRedis {
		if err := s.enqueue(msg); err == nil {
			return nil
		}
		// Redis hiccup: fall through to direct delivery
		logrus.Warn("messaging: enqueue failed, delivering directly")
	}
	return s.deliver(msg)
}

func (s *Service) enqueue(msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.redis.RPush(ctx, redisListKey, payload).Err()
}

func (s *Service) deliver(msg Message) error {
	switch msg.Channel {
	case "sms":
		return s.gateway.SendSMS(msg.To, msg.Body)
	case "email":
		return s.gateway.SendEmail(msg.To, msg.Subject, msg.Body)
	default:
		return errors.New("unknown channel: " + msg.Channel)
	}
}

// StartWorker drains the Redis outbox until stop is closed.
func (s *Service) StartWorker(stop chan struct{}) {
	if !s.useRedis {
		return
	}
	go func() {
		logrus.Info("messaging: outbox worker started")
		for {
			select {
			case <-stop:
				logrus.Info("messaging: outbox worker stopped")
				return
			default:
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			res, err := s.redis.BLPop(ctx, 3*time.Second, redisListKey).Result()
			cancel()
			if err != nil {
				if err != redis.Nil && !errors.Is(err, context.DeadlineExceeded) {
					logrus.WithError(err).Warn("messaging: outbox pop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(res) < 2 {
				continue
			}

			var msg Message
			if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
				logrus.WithError(err).Error("messaging: dropping malformed outbox item")
				continue
			}
			if err := s.deliver(msg); err != nil {
				// Delivery retries belong to the gateway side, not here.
				logrus.WithError(err).WithField("channel", msg.Channel).Error("messaging: delivery failed")
			}
		}
	}()
}

// LogGateway is the development gateway: it logs instead of delivering.
type LogGateway struct{}

func NewLogGateway() *LogGateway {
	return &LogGateway{}
}

func (g *LogGateway) SendSMS(phone, message string) error {
	logrus.WithFields(logrus.Fields{
		"channel": "sms",
		"to":      phone,
		"sender":  config.AppConfig.SMSSenderID,
		"bytes":   len(message),
	}).Info("messaging: SMS handed off")
	return nil
}

func (g *LogGateway) SendEmail(email, subject, body string) error {
	logrus.WithFields(logrus.Fields{
		"channel": "email",
		"to":      email,
		"subject": subject,
		"bytes":   len(body),
	}).Info("messaging: email handed off")
	return nil
}
