package bridge

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// 端点名称
const (
	EndpointStep             = "step"
	EndpointMinExpected      = "min_expected"
	EndpointDeltaT           = "delta_t"
	EndpointTime             = "time"
	EndpointPhase            = "phase"
	EndpointPhaseState       = "phase_state"
	EndpointPhaseCount       = "phase_count"
	EndpointLaneVehicles     = "lane_vehicles"
	EndpointSetPhase         = "set_phase"
	EndpointSetPhaseDuration = "set_phase_duration"
	EndpointSignals          = "signals"
	EndpointStop             = "stop"
)

// 错误码
const (
	CodeUnknownSignal = "unknown_signal"
	CodeUnknownLane   = "unknown_lane"
)

// maxFrameSize 单帧上限（字节）
const maxFrameSize = 64 << 20

// Request 请求帧
type Request struct {
	Endpoint string         `msgpack:"endpoint"`
	Params   map[string]any `msgpack:"params,omitempty"`
}

// Response 响应帧
// 说明：Error非空表示调用失败，Code可选地细分失败类型，Result为端点相关的返回值
type Response struct {
	Error  string             `msgpack:"error,omitempty"`
	Code   string             `msgpack:"code,omitempty"`
	Result msgpack.RawMessage `msgpack:"result,omitempty"`
}

// WriteFrame 写出一帧：4字节大端长度+msgpack消息体
func WriteFrame(w io.Writer, v any) error {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(body)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// ReadFrame 读取一帧并解码到v
func ReadFrame(r io.Reader, v any) error {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}
	length := binary.BigEndian.Uint32(hdr[:])
	if length > maxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds limit", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	return msgpack.Unmarshal(buf, v)
}
