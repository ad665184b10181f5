package score

import (
	"fmt"

	"revenue-forecast-backend/internal/model"
)

// PersonaParams 客户画像参数
// 这些常量是对缺失订单台账的代理启发式，属于可调参数而非业务定律。
type PersonaParams struct {
	Name                string
	ChurnBase           float64 // 流失模型线性项中的画像基础风险
	ChurnAdjust         float64 // 画像调整因子 0.6-1.3
	ReorderIntervalDays float64 // 无历史时的默认复购间隔
	WindowSlackDays     float64 // 窗口附加半宽（项目型更宽，合规型更窄）
	BaseConfidence      float64 // 画像基础置信度
	SignalLabel         string  // 固定附加信号标签
}

// personaTable 画像参数表
var personaTable = map[string]PersonaParams{
	"contractor": {
		Name:                "contractor",
		ChurnBase:           0.2,
		ChurnAdjust:         1.1,
		ReorderIntervalDays: 45,
		WindowSlackDays:     10,
		BaseConfidence:      0.5,
		SignalLabel:         "project cycle cadence",
	},
	"healthcare": {
		Name:                "healthcare",
		ChurnBase:           -0.3,
		ChurnAdjust:         0.6,
		ReorderIntervalDays: 30,
		WindowSlackDays:     3,
		BaseConfidence:      0.8,
		SignalLabel:         "compliance restocking cadence",
	},
	"logistics": {
		Name:                "logistics",
		ChurnBase:           0.0,
		ChurnAdjust:         0.9,
		ReorderIntervalDays: 21,
		WindowSlackDays:     4,
		BaseConfidence:      0.7,
		SignalLabel:         "fleet replenishment cadence",
	},
	"education": {
		Name:                "education",
		ChurnBase:           0.1,
		ChurnAdjust:         1.0,
		ReorderIntervalDays: 60,
		WindowSlackDays:     8,
		BaseConfidence:      0.6,
		SignalLabel:         "term calendar cadence",
	},
	"retail": {
		Name:                "retail",
		ChurnBase:           0.3,
		ChurnAdjust:         1.3,
		ReorderIntervalDays: 28,
		WindowSlackDays:     5,
		BaseConfidence:      0.6,
		SignalLabel:         "seasonal merchandising cadence",
	},
}

// GetPersonaParams 获取画像参数
// 未知画像视为配置错误，直接上抛。
func GetPersonaParams(persona string) (PersonaParams, error) {
	p, ok := personaTable[persona]
	if !ok {
		return PersonaParams{}, fmt.Errorf("%w: %s", model.ErrUnknownPersona, persona)
	}
	return p, nil
}

// Personas 已注册的画像名称
func Personas() []string {
	out := make([]string, 0, len(personaTable))
	for name := range personaTable {
		out = append(out, name)
	}
	return out
}
