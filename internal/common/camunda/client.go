// Package camunda connects the planner to a Zeebe gateway and registers the
// planning job workers.
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"unipath-planner/internal/common/config"
)

const defaultRequestTimeout = 10 * time.Second

type Client struct {
	zb      zbc.Client
	address string
	timeout time.Duration
}

// NewClient dials the gateway named in cfg and fails unless the topology
// reports at least one broker.
func NewClient(ctx context.Context, cfg config.CamundaConfig) (*Client, error) {
	if cfg.BrokerAddress == "" {
		return nil, fmt.Errorf("camunda broker address is empty")
	}
	timeout := config.GetDuration(cfg.RequestTimeout)
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	zb, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create zeebe client: %w", err)
	}

	c := &Client{zb: zb, address: cfg.BrokerAddress, timeout: timeout}
	if _, err := c.Brokers(ctx); err != nil {
		_ = zb.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) GetClient() zbc.Client {
	return c.zb
}

func (c *Client) Close() error {
	return c.zb.Close()
}

// Brokers returns the number of brokers in the gateway topology.
func (c *Client) Brokers(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	topology, err := c.zb.NewTopologyCommand().Send(ctx)
	if err != nil {
		return 0, fmt.Errorf("zeebe topology at %s: %w", c.address, err)
	}
	n := len(topology.GetBrokers())
	if n == 0 {
		return 0, fmt.Errorf("zeebe gateway at %s reports no brokers", c.address)
	}
	return n, nil
}
