package stream

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/logging"
)

// DefaultSeries is published when no series are configured.
var DefaultSeries = []string{
	"pressure.ascending_aorta",
	"pressure.left_ventricle",
	"heart_rate",
}

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Status is the JSON summary sent once per sample on <subject>.status.
type Status struct {
	Time      float64 `json:"t"`
	HeartRate float64 `json:"hr"`
	Residual  float64 `json:"residual"`
	Points    int     `json:"points"`
}

// Publisher sends every selected series of a sample as one frame on
// <subject>.<series>, followed by a Status message.
type Publisher struct {
	conn    Conn
	subject string
	series  []string
	log     logrus.FieldLogger
	sent    int
}

func NewPublisher(conn Conn, subject string, series []string, log logrus.FieldLogger) (*Publisher, error) {
	if subject == "" {
		return nil, fmt.Errorf("stream subject must not be empty")
	}
	if len(series) == 0 {
		series = DefaultSeries
	}
	var probe cardio.Sample
	for _, name := range series {
		if _, err := probe.Series(name); err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Publisher{
		conn:    conn,
		subject: subject,
		series:  append([]string(nil), series...),
		log:     log,
	}, nil
}

// Subject returns the subject a series is published on.
func (p *Publisher) Subject(series string) string {
	return p.subject + "." + series
}

func (p *Publisher) Publish(smp *cardio.Sample) error {
	if smp.Len() == 0 {
		return nil
	}
	for _, name := range p.series {
		values, err := smp.Series(name)
		if err != nil {
			return err
		}
		if err := p.conn.Publish(p.Subject(name), EncodeFrame(values)); err != nil {
			return fmt.Errorf("publish %s: %w", name, err)
		}
	}

	last := smp.Len() - 1
	status := Status{
		Time:      smp.Time[last],
		HeartRate: smp.HeartRate[last],
		Residual:  smp.Residual[last],
		Points:    smp.Len(),
	}
	b, err := json.Marshal(status)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.Subject("status"), b); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}

	p.sent++
	if p.sent%100 == 0 {
		p.log.WithFields(logrus.Fields{"samples": p.sent, "t": status.Time}).Debug("stream progress")
	}
	return nil
}

// Sent returns the number of samples published.
func (p *Publisher) Sent() int { return p.sent }

// Subscribe delivers decoded frames of every series published under subject.
// Status messages are skipped.
func Subscribe(nc *nats.Conn, subject string, fn func(series string, values []float64)) (*nats.Subscription, error) {
	prefix := subject + "."
	return nc.Subscribe(prefix+">", func(msg *nats.Msg) {
		series := strings.TrimPrefix(msg.Subject, prefix)
		if series == "status" {
			return
		}
		values, err := DecodeFrame(msg.Data)
		if err != nil {
			return
		}
		fn(series, values)
	})
}
