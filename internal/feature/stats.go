package feature

import "math"

// Mean 均值
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// StdDev 标准差
func StdDev(data []float64) float64 {
	n := len(data)
	if n < 2 {
		return 0
	}
	mean := Mean(data)
	sum := 0.0
	for _, v := range data {
		diff := v - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(n))
}

// CoefficientOfVariation 变异系数（std/mean），均值为零时返回0
func CoefficientOfVariation(data []float64) float64 {
	mean := Mean(data)
	if mean == 0 {
		return 0
	}
	return StdDev(data) / math.Abs(mean)
}

// RollingMeanVar 滚动窗口均值与方差
// 返回序列与输入等长，窗口不足时使用已有前缀。
func RollingMeanVar(data []float64, window int) (means, vars []float64) {
	n := len(data)
	means = make([]float64, n)
	vars = make([]float64, n)
	if n == 0 || window <= 0 {
		return means, vars
	}
	for i := 0; i < n; i++ {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		win := data[start : i+1]
		m := Mean(win)
		means[i] = m
		sum := 0.0
		for _, v := range win {
			diff := v - m
			sum += diff * diff
		}
		vars[i] = sum / float64(len(win))
	}
	return means, vars
}

// EWMA 指数加权移动平均
// factor 越大对新数据越敏感，返回与输入等长的平滑序列。
func EWMA(data []float64, factor float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	if factor <= 0 || factor > 1 {
		factor = 0.3
	}
	out := make([]float64, len(data))
	out[0] = data[0]
	for i := 1; i < len(data); i++ {
		out[i] = factor*data[i] + (1-factor)*out[i-1]
	}
	return out
}

// Autocorrelation 自相关系数（指定滞后）
func Autocorrelation(data []float64, lag int) float64 {
	n := len(data)
	if lag <= 0 || n <= lag+1 {
		return 0
	}
	mean := Mean(data)

	var num, den float64
	for i := 0; i < n; i++ {
		diff := data[i] - mean
		den += diff * diff
	}
	if den == 0 {
		return 0
	}
	for i := lag; i < n; i++ {
		num += (data[i] - mean) * (data[i-lag] - mean)
	}
	return num / den
}

// DetectSeasonality 检测周度季节性
// 周滞后自相关超过0.3视为存在季节性。
func DetectSeasonality(data []float64, period int) bool {
	if period <= 0 {
		period = 7
	}
	if len(data) < 2*period {
		return false
	}
	return Autocorrelation(data, period) > 0.3
}

// DetectTrend 检测趋势
// 前后两半均值偏移超过10%视为存在趋势。
func DetectTrend(data []float64) bool {
	n := len(data)
	if n < 4 {
		return false
	}
	firstMean := Mean(data[:n/2])
	secondMean := Mean(data[n/2:])
	if firstMean == 0 {
		return secondMean != 0
	}
	return math.Abs(secondMean-firstMean)/math.Abs(firstMean) >= 0.10
}
