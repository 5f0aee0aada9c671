// Package eventstreamutils builds the configured event publisher.
package eventstreamutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/eventstream"
	"github.com/anmerino-pnd/proyectoCenace/pkg/eventstream/kafka"
	"github.com/anmerino-pnd/proyectoCenace/pkg/eventstream/nop"
)

type NewPublisherOpts struct {
	ProviderType string
	Brokers      []string
	Topic        string
	Logger       *zap.Logger
}

// NewPublisher returns the publisher for the provider. Network-backed
// publishers are wrapped in an eventstream.Pool.
func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.ProviderType {
	case "", "none":
		return nop.NewPublisher(), nil
	case "kafka":
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: o.Brokers,
			Topic:   o.Topic,
			Logger:  o.Logger,
		})
		if err != nil {
			return nil, err
		}
		pool, err := eventstream.NewPool(&eventstream.PoolConfig{
			Publisher: p,
			Logger:    o.Logger,
		})
		if err != nil {
			return nil, err
		}
		return pool, nil
	default:
		return nil, fmt.Errorf("unsupported event stream provider: %s", o.ProviderType)
	}
}
