// internal/simulator/client.go
package simulator

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/rpc"
	"time"

	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/pkg/core"

	"github.com/ugorji/go/codec"
)

// DefaultAddress is the simulator's RPC endpoint.
const DefaultAddress = "127.0.0.1:41451"

// Config holds the connection settings for a Client.
type Config struct {
	Address     string
	VehicleName string
	CallTimeout time.Duration
}

// Client talks to the simulator over msgpack-RPC.
type Client struct {
	rpc     *rpc.Client
	vehicle string
	timeout time.Duration
}

// Dial connects to the simulator at cfg.Address.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	addr := cfg.Address
	if addr == "" {
		addr = DefaultAddress
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to simulator at %s: %w", addr, err)
	}
	return NewClient(conn, cfg), nil
}

// NewClient wraps an established connection.
func NewClient(conn io.ReadWriteCloser, cfg Config) *Client {
	var mh codec.MsgpackHandle
	mh.WriteExt = true
	return &Client{
		rpc:     rpc.NewClientWithCodec(codec.MsgpackSpecRpc.ClientCodec(conn, &mh)),
		vehicle: cfg.VehicleName,
		timeout: cfg.CallTimeout,
	}
}

func (c *Client) call(ctx context.Context, method string, reply any, args ...any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	// params must always be an array on the wire, even when empty
	if args == nil {
		args = []any{}
	}
	call := c.rpc.Go(method, codec.MsgpackSpecRpcMultiArgs(args), reply, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
		if call.Error != nil {
			return fmt.Errorf("%s: %w", method, call.Error)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	}
}

// Ping confirms the simulator is answering.
func (c *Client) Ping(ctx context.Context) error {
	var ok bool
	if err := c.call(ctx, "ping", &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("ping: simulator not ready")
	}
	return nil
}

func (c *Client) SetVehiclePose(ctx context.Context, pose core.Pose, ignoreCollision bool) error {
	return c.call(ctx, "simSetVehiclePose", nil, ToWire(pose), ignoreCollision, c.vehicle)
}

func (c *Client) GetImages(ctx context.Context, requests []ImageRequest) ([]ImageResponse, error) {
	var responses []ImageResponse
	if err := c.call(ctx, "simGetImages", &responses, requests, c.vehicle); err != nil {
		return nil, err
	}
	if len(responses) == 0 {
		return nil, ErrNoImages
	}
	return responses, nil
}

func (c *Client) EnableWeather(ctx context.Context, enabled bool) error {
	return c.call(ctx, "simEnableWeather", nil, enabled)
}

func (c *Client) SetWeatherParameter(ctx context.Context, param scene.WeatherParameter, value float32) error {
	return c.call(ctx, "simSetWeatherParameter", nil, int(param), value)
}

func (c *Client) SetTimeOfDay(ctx context.Context, tod TimeOfDay) error {
	return c.call(ctx, "simSetTimeOfDay", nil,
		tod.Enabled, tod.StartDateTime, tod.IsDST,
		tod.CelestialClockSpeed, tod.UpdateIntervalSecs, tod.MoveSun)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}
