package score

import (
	"fmt"
	"time"

	"revenue-forecast-backend/internal/config"
	"revenue-forecast-backend/internal/feature"
	"revenue-forecast-backend/internal/model"
)

const dateLayout = "2006-01-02"

// AnticipatedNeed 下次下单窗口估计
// 风险函数式启发：历史复购间隔均值定位窗口中心，
// 间隔标准差的一半加画像松弛量决定窗口宽度。
func AnticipatedNeed(fs *model.FeatureSet, params PersonaParams, cfg config.Pipeline, now time.Time) model.AnticipatedNeed {
	intervals := reorderIntervals(fs)

	meanInterval := params.ReorderIntervalDays
	stdInterval := 0.0
	if len(intervals) >= 2 {
		meanInterval = feature.Mean(intervals)
		stdInterval = feature.StdDev(intervals)
	}

	lastActivity := lastActivityDate(fs, now)
	center := lastActivity.AddDate(0, 0, int(meanInterval+0.5))
	halfWidth := stdInterval/2 + params.WindowSlackDays

	windowStart := center.AddDate(0, 0, -int(halfWidth+0.5))
	windowEnd := center.AddDate(0, 0, int(halfWidth+0.5))

	// 窗口不早于今天、不晚于配置上限
	if windowStart.Before(now) {
		windowStart = now
	}
	maxEnd := now.AddDate(0, 0, cfg.MaxWindowDays)
	if windowEnd.After(maxEnd) {
		windowEnd = maxEnd
	}
	if windowEnd.Before(windowStart) {
		windowEnd = windowStart
	}

	return model.AnticipatedNeed{
		WindowStart: windowStart.Format(dateLayout),
		WindowEnd:   windowEnd.Format(dateLayout),
		Confidence:  needConfidence(intervals, params, cfg),
		TopSignals:  topSignals(fs, params),
	}
}

// reorderIntervals 历史复购间隔
// 没有真实订单台账，营收超过均值1.5倍的日子视为下单日。
func reorderIntervals(fs *model.FeatureSet) []float64 {
	mean := feature.Mean(fs.Revenue)
	if mean == 0 {
		return nil
	}
	var orderDays []int
	for i, v := range fs.Revenue {
		if v > 1.5*mean {
			orderDays = append(orderDays, i)
		}
	}
	if len(orderDays) < 2 {
		return nil
	}
	intervals := make([]float64, 0, len(orderDays)-1)
	for i := 1; i < len(orderDays); i++ {
		intervals = append(intervals, float64(orderDays[i]-orderDays[i-1]))
	}
	return intervals
}

// lastActivityDate 推断最后活跃日期（互动信号跌落点）
func lastActivityDate(fs *model.FeatureSet, now time.Time) time.Time {
	mean := feature.Mean(fs.Sessions)
	if mean == 0 || fs.Len() == 0 {
		return now
	}
	for i := fs.Len() - 1; i >= 0; i-- {
		if fs.Sessions[i] > 0.3*mean {
			if t, err := time.Parse(dateLayout, fs.Dates[i]); err == nil {
				return t
			}
			break
		}
	}
	return now
}

// needConfidence 窗口置信度
// 数据量充分性、间隔一致性与画像基础置信度的加权合成，收敛到[0.1, 0.9]。
func needConfidence(intervals []float64, params PersonaParams, cfg config.Pipeline) float64 {
	volume := clamp(float64(len(intervals))/6, 0, 1)

	consistency := 0.5
	if len(intervals) >= 2 {
		mean := feature.Mean(intervals)
		if mean > 0 {
			cv := feature.StdDev(intervals) / mean
			consistency = 1 / (1 + cv)
		}
	}

	confidence := 0.5*volume + 0.3*consistency + 0.2*params.BaseConfidence

	lo := 0.1
	if cfg.MinConfidence > lo {
		lo = cfg.MinConfidence
	}
	return clamp(confidence, lo, 0.9)
}

// topSignals 关键信号
// 比较最近7天与前7天的营收和互动变化，超过15%的记入信号，
// 末尾固定附加画像标签。
func topSignals(fs *model.FeatureSet, params PersonaParams) []string {
	signals := make([]string, 0, 3)
	n := fs.Len()

	if n >= 14 {
		if delta, ok := weekOverWeek(fs.Revenue); ok {
			if delta >= 0.15 {
				signals = append(signals, fmt.Sprintf("revenue up %.0f%% week-over-week", delta*100))
			} else if delta <= -0.15 {
				signals = append(signals, fmt.Sprintf("revenue down %.0f%% week-over-week", -delta*100))
			}
		}
		if delta, ok := weekOverWeek(fs.Sessions); ok {
			if delta >= 0.15 {
				signals = append(signals, fmt.Sprintf("engagement up %.0f%% week-over-week", delta*100))
			} else if delta <= -0.15 {
				signals = append(signals, fmt.Sprintf("engagement down %.0f%% week-over-week", -delta*100))
			}
		}
	}

	signals = append(signals, params.SignalLabel)
	return signals
}

// weekOverWeek 最近7天相对前7天的变化率
func weekOverWeek(series []float64) (float64, bool) {
	n := len(series)
	if n < 14 {
		return 0, false
	}
	recent := feature.Mean(series[n-7:])
	prior := feature.Mean(series[n-14 : n-7])
	if prior == 0 {
		return 0, false
	}
	return (recent - prior) / prior, true
}
