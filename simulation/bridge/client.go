package bridge

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/fuzzylts/fuzzylts-go/entity"
	"github.com/fuzzylts/fuzzylts-go/utils/config"
	"github.com/vmihailenco/msgpack/v5"
)

var _ entity.ISimulation = (*Client)(nil)

// Client 远程仿真客户端
// 功能：通过unix/TCP套接字上的长度前缀msgpack帧访问外部仿真代理，实现entity.ISimulation
// 说明：请求串行发送，每次请求一问一答；任何传输或协议错误均包装为entity.ErrCollaborator
type Client struct {
	mu      sync.Mutex
	conn    net.Conn
	timeout time.Duration
	closed  bool
}

// ParseAddress 解析unix://path或tcp://host:port形式的地址
// 返回：网络类型与地址
func ParseAddress(address string) (network, addr string, err error) {
	scheme, rest, ok := strings.Cut(address, "://")
	if !ok || rest == "" {
		return "", "", fmt.Errorf("invalid bridge address %q", address)
	}
	switch scheme {
	case "unix", "tcp":
		return scheme, rest, nil
	default:
		return "", "", fmt.Errorf("unsupported bridge scheme %q", scheme)
	}
}

// Dial 连接外部仿真代理
// 参数：cfg-桥接配置
// 返回：客户端实例，连接失败时返回包装了entity.ErrCollaborator的错误
func Dial(cfg config.BridgeSimulation) (*Client, error) {
	network, addr, err := ParseAddress(cfg.Address)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Timeout * float64(time.Second))
	var conn net.Conn
	if timeout > 0 {
		conn, err = net.DialTimeout(network, addr, timeout)
	} else {
		conn, err = net.Dial(network, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", entity.ErrCollaborator, cfg.Address, err)
	}
	log.Infof("connected to simulation bridge %s", cfg.Address)
	return NewClient(conn, timeout), nil
}

// NewClient 基于已建立的连接创建客户端，timeout为0时不设截止时间
func NewClient(conn net.Conn, timeout time.Duration) *Client {
	return &Client{conn: conn, timeout: timeout}
}

// call 发送一次请求并把result解码到out（out为nil时忽略result）
func (c *Client) call(endpoint string, params map[string]any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("%w: bridge closed", entity.ErrCollaborator)
	}
	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return fmt.Errorf("%w: %s: %w", entity.ErrCollaborator, endpoint, err)
		}
	}
	if err := WriteFrame(c.conn, Request{Endpoint: endpoint, Params: params}); err != nil {
		return fmt.Errorf("%w: send %s: %w", entity.ErrCollaborator, endpoint, err)
	}
	var resp Response
	if err := ReadFrame(c.conn, &resp); err != nil {
		return fmt.Errorf("%w: receive %s: %w", entity.ErrCollaborator, endpoint, err)
	}
	if resp.Error != "" {
		return fmt.Errorf("%w: %s: %s", codeError(resp.Code), endpoint, resp.Error)
	}
	if out == nil {
		return nil
	}
	if len(resp.Result) == 0 {
		return fmt.Errorf("%w: %s: empty result", entity.ErrCollaborator, endpoint)
	}
	if err := msgpack.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", entity.ErrCollaborator, endpoint, err)
	}
	return nil
}

func codeError(code string) error {
	switch code {
	case CodeUnknownSignal:
		return entity.ErrUnknownSignal
	case CodeUnknownLane:
		return entity.ErrUnknownLane
	default:
		return entity.ErrCollaborator
	}
}

func signalParams(signalID string) map[string]any {
	return map[string]any{"signal": signalID}
}

// Step 推进一个仿真步
func (c *Client) Step() error {
	return c.call(EndpointStep, nil, nil)
}

// Time 当前仿真时间
func (c *Client) Time() (t float64, err error) {
	err = c.call(EndpointTime, nil, &t)
	return
}

// DeltaT 仿真步长
func (c *Client) DeltaT() (dt float64, err error) {
	err = c.call(EndpointDeltaT, nil, &dt)
	return
}

// MinExpectedNumber 待处理车辆数
func (c *Client) MinExpectedNumber() (n int, err error) {
	err = c.call(EndpointMinExpected, nil, &n)
	return
}

// SignalIDs 所有信号灯ID
func (c *Client) SignalIDs() (ids []string, err error) {
	err = c.call(EndpointSignals, nil, &ids)
	return
}

// CurrentPhase 当前相位
func (c *Client) CurrentPhase(signalID string) (phase int32, err error) {
	err = c.call(EndpointPhase, signalParams(signalID), &phase)
	return
}

// PhaseState 当前相位状态串
func (c *Client) PhaseState(signalID string) (state string, err error) {
	err = c.call(EndpointPhaseState, signalParams(signalID), &state)
	return
}

// PhaseCount 相位数
func (c *Client) PhaseCount(signalID string) (n int32, err error) {
	err = c.call(EndpointPhaseCount, signalParams(signalID), &n)
	return
}

// LaneVehicleCount 车道车辆数
func (c *Client) LaneVehicleCount(laneID string) (n int, err error) {
	err = c.call(EndpointLaneVehicles, map[string]any{"lane": laneID}, &n)
	return
}

// SetPhase 立即切换相位
func (c *Client) SetPhase(signalID string, index int32) error {
	return c.call(EndpointSetPhase, map[string]any{"signal": signalID, "index": index}, nil)
}

// SetPhaseDuration 修改当前相位剩余时长
func (c *Client) SetPhaseDuration(signalID string, seconds float64) error {
	return c.call(EndpointSetPhaseDuration, map[string]any{"signal": signalID, "duration": seconds}, nil)
}

// Close 通知代理结束仿真并关闭连接，可重复调用
func (c *Client) Close() error {
	err := c.call(EndpointStop, nil, nil)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if cerr := c.conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		log.Warnf("close bridge: %v", err)
	}
	return err
}
