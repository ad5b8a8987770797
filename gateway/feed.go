package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quote-engine-go/infrastructure/logger"
	"quote-engine-go/market"
	"quote-engine-go/metrics"
)

// EventHandler 接收行情与成交回报事件。引擎直接实现该接口，
// 事件在读取 goroutine 内顺序派发，handler 无需再做串行化。
type EventHandler interface {
	OnTrade(inst string, side market.Side, price, qty float64)
	OnBookUpdate(inst string, side market.Side, price, qty float64)
	OnFill(inst string, side market.Side, price, qty, capitalRemaining float64)
}

// 事件帧类型。
const (
	frameTrade = "trade"
	frameBook  = "book"
	frameFill  = "fill"
)

// readTimeout 单帧读取超时；静默超过该时长按断线处理重连。
const readTimeout = 30 * time.Second

// frame 是 feed 的线上格式：一行 JSON 一个事件。
type frame struct {
	Type       string  `json:"type"`
	Instrument string  `json:"instrument"`
	Side       string  `json:"side"`
	Price      float64 `json:"price"`
	Qty        float64 `json:"qty"`
	Capital    float64 `json:"capital"`
}

// decodeFrame 解析并校验一帧。book 帧允许 qty <= 0（删档），
// trade/fill 必须带正的价格与数量。
func decodeFrame(raw []byte) (frame, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("bad json: %w", err)
	}
	if f.Instrument == "" {
		return f, fmt.Errorf("missing instrument")
	}
	if !market.Side(f.Side).Valid() {
		return f, fmt.Errorf("bad side %q", f.Side)
	}
	if f.Price <= 0 {
		return f, fmt.Errorf("bad price %v", f.Price)
	}
	switch f.Type {
	case frameBook:
	case frameTrade, frameFill:
		if f.Qty <= 0 {
			return f, fmt.Errorf("bad qty %v", f.Qty)
		}
	default:
		return f, fmt.Errorf("unknown frame type %q", f.Type)
	}
	return f, nil
}

// Feed 维护到事件源的 WebSocket 连接：断线按指数退避重连，
// 读到的帧顺序派发给 handler，坏帧计数后丢弃。
type Feed struct {
	url     string
	handler EventHandler
	log     *logger.Logger
	metrics *metrics.Metrics

	dialer         *websocket.Dialer
	initialBackoff time.Duration
	maxBackoff     time.Duration

	malformed atomic.Uint64
}

// NewFeed 创建事件源客户端。maxBackoff 限制重连退避上限，
// 传 0 使用 30s。
func NewFeed(url string, handler EventHandler, log *logger.Logger, m *metrics.Metrics, maxBackoff time.Duration) *Feed {
	if log == nil {
		log = logger.NewNop()
	}
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}
	return &Feed{
		url:            url,
		handler:        handler,
		log:            log,
		metrics:        m,
		dialer:         websocket.DefaultDialer,
		initialBackoff: time.Second,
		maxBackoff:     maxBackoff,
	}
}

// Run 阻塞运行直到 ctx 取消。连接失败与断线都走同一条退避
// 重连路径，成功建连后退避归位。
func (f *Feed) Run(ctx context.Context) error {
	backoff := f.initialBackoff
	for {
		connected, err := f.consume(ctx)
		if ctx.Err() != nil {
			f.log.LogFeed("stopped", f.url, nil)
			return ctx.Err()
		}
		if connected {
			backoff = f.initialBackoff
		}

		f.log.LogFeed("reconnecting", f.url, map[string]interface{}{
			"error":   err.Error(),
			"backoff": backoff.String(),
		})
		if f.metrics != nil {
			f.metrics.RecordFeedReconnect()
		}

		select {
		case <-ctx.Done():
			f.log.LogFeed("stopped", f.url, nil)
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > f.maxBackoff {
			backoff = f.maxBackoff
		}
	}
}

// Malformed 返回被丢弃的坏帧计数。
func (f *Feed) Malformed() uint64 {
	return f.malformed.Load()
}

// consume 建连并读取到出错为止。connected 表示握手曾成功，
// Run 据此决定是否重置退避。
func (f *Feed) consume(ctx context.Context) (connected bool, err error) {
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	f.log.LogFeed("connected", f.url, nil)

	// ctx 取消时关闭连接，把阻塞中的 ReadMessage 踢出来。
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return true, fmt.Errorf("set deadline: %w", err)
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("read: %w", err)
		}
		f.dispatch(raw)
	}
}

func (f *Feed) dispatch(raw []byte) {
	ev, err := decodeFrame(raw)
	if err != nil {
		f.malformed.Add(1)
		f.log.Debug("dropping malformed frame",
			zap.Error(err),
			zap.ByteString("raw", raw))
		return
	}
	side := market.Side(ev.Side)
	switch ev.Type {
	case frameTrade:
		f.handler.OnTrade(ev.Instrument, side, ev.Price, ev.Qty)
	case frameBook:
		f.handler.OnBookUpdate(ev.Instrument, side, ev.Price, ev.Qty)
	case frameFill:
		f.handler.OnFill(ev.Instrument, side, ev.Price, ev.Qty, ev.Capital)
	}
}
