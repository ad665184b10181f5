package alert

import (
	"log"

	"revenue-forecast-backend/internal/model"
)

// Sink 告警投递接口
// 投递层是外部协作方，这里只定义契约；流水线本身不做任何I/O。
type Sink interface {
	Deliver(candidate model.AlertCandidate) model.DeliveryResult
}

// Dispatcher 按动作类型路由告警到对应投递通道
type Dispatcher struct {
	sinks map[string]Sink
}

// NewDispatcher 创建告警分发器
func NewDispatcher(sinks map[string]Sink) *Dispatcher {
	if sinks == nil {
		sinks = map[string]Sink{}
	}
	return &Dispatcher{sinks: sinks}
}

// Dispatch 投递全部告警候选
// 单条失败不影响其余投递，返回成功条数。
func (d *Dispatcher) Dispatch(candidates []model.AlertCandidate) int {
	success := 0
	for _, c := range candidates {
		sink, ok := d.sinks[c.Action]
		if !ok {
			log.Printf("告警 %s 没有对应的投递通道: %s", c.RuleID, c.Action)
			continue
		}
		result := sink.Deliver(c)
		if result.Success {
			success++
		} else {
			log.Printf("告警 %s 投递失败 (%s): %s", c.RuleID, c.Action, result.Error)
		}
	}
	return success
}
