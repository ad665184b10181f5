package samplegen

import (
	"flag"
	"fmt"
	"hash/fnv"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"revenue-forecast-backend/internal/model"
	"revenue-forecast-backend/internal/score"
	"revenue-forecast-backend/internal/store"
)

// Options 样本生成配置
type Options struct {
	DBPath           string
	Days             int
	Personas         []string
	Daemon           bool
	RunAt            string
	RunOnStartup     bool
	RetryCount       int
	RetryIntervalMin int
	Enabled          bool
	Debug            bool
}

// personaProfile 每个画像的合成数据形态
type personaProfile struct {
	BaseRevenue    float64
	WeeklyAmp      float64 // 周内波动幅度（相对基准）
	Noise          float64
	BaseSessions   float64
	BaseLeads      float64
	ConvertRate    float64
	RefundRate     float64
	Margin         float64
	SLAMet         float64
	OnTime         float64
	BaseCustomers  float64
	OrderEveryDays int // 大单间隔（天）
	FreightMix     map[string]float64
	CategoryMix    map[string]float64
}

var profiles = map[string]personaProfile{
	"contractor": {
		BaseRevenue: 8200, WeeklyAmp: 0.35, Noise: 0.12,
		BaseSessions: 14, BaseLeads: 5, ConvertRate: 0.32, RefundRate: 0.015,
		Margin: 0.38, SLAMet: 0.96, OnTime: 0.93, BaseCustomers: 42, OrderEveryDays: 9,
		FreightMix:  map[string]float64{"flatbed": 0.45, "ltl": 0.35, "parcel": 0.2},
		CategoryMix: map[string]float64{"lumber": 0.4, "fasteners": 0.35, "tools": 0.25},
	},
	"healthcare": {
		BaseRevenue: 11500, WeeklyAmp: 0.15, Noise: 0.08,
		BaseSessions: 22, BaseLeads: 7, ConvertRate: 0.41, RefundRate: 0.008,
		Margin: 0.47, SLAMet: 0.99, OnTime: 0.97, BaseCustomers: 63, OrderEveryDays: 14,
		FreightMix:  map[string]float64{"parcel": 0.7, "ltl": 0.3},
		CategoryMix: map[string]float64{"consumables": 0.55, "equipment": 0.3, "ppe": 0.15},
	},
	"logistics": {
		BaseRevenue: 9600, WeeklyAmp: 0.25, Noise: 0.14,
		BaseSessions: 17, BaseLeads: 6, ConvertRate: 0.36, RefundRate: 0.02,
		Margin: 0.33, SLAMet: 0.94, OnTime: 0.9, BaseCustomers: 51, OrderEveryDays: 7,
		FreightMix:  map[string]float64{"ltl": 0.5, "flatbed": 0.25, "parcel": 0.25},
		CategoryMix: map[string]float64{"packaging": 0.45, "safety": 0.3, "parts": 0.25},
	},
	"education": {
		BaseRevenue: 5400, WeeklyAmp: 0.2, Noise: 0.1,
		BaseSessions: 9, BaseLeads: 3, ConvertRate: 0.28, RefundRate: 0.012,
		Margin: 0.42, SLAMet: 0.97, OnTime: 0.95, BaseCustomers: 28, OrderEveryDays: 21,
		FreightMix:  map[string]float64{"parcel": 0.8, "ltl": 0.2},
		CategoryMix: map[string]float64{"supplies": 0.6, "furniture": 0.25, "technology": 0.15},
	},
	"retail": {
		BaseRevenue: 7100, WeeklyAmp: 0.4, Noise: 0.16,
		BaseSessions: 19, BaseLeads: 8, ConvertRate: 0.3, RefundRate: 0.03,
		Margin: 0.36, SLAMet: 0.95, OnTime: 0.92, BaseCustomers: 57, OrderEveryDays: 10,
		FreightMix:  map[string]float64{"parcel": 0.6, "ltl": 0.3, "pickup": 0.1},
		CategoryMix: map[string]float64{"inventory": 0.5, "displays": 0.3, "packaging": 0.2},
	},
}

// Execute 运行样本生成（一次性或守护模式）
func Execute(args []string) error {
	fs := flag.NewFlagSet("sample_gen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts Options
	var personaList string
	fs.StringVar(&opts.DBPath, "db", "", "")
	fs.IntVar(&opts.Days, "days", 120, "")
	fs.StringVar(&personaList, "personas", "", "")
	fs.BoolVar(&opts.Daemon, "daemon", false, "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts.Enabled = getEnvBool("SAMPLE_GEN_ENABLED", true)
	if !opts.Enabled {
		samplegenInfof("disabled")
		return nil
	}

	if strings.TrimSpace(opts.DBPath) == "" {
		opts.DBPath = os.Getenv("BIZ_DB_PATH")
	}
	if strings.TrimSpace(opts.DBPath) == "" {
		opts.DBPath = "/app/data/bizdata.db"
	}
	if opts.Days == 120 {
		opts.Days = getEnvInt("SAMPLE_GEN_DAYS", 120)
	}
	if strings.TrimSpace(personaList) == "" {
		personaList = os.Getenv("SAMPLE_GEN_PERSONAS")
	}
	if strings.TrimSpace(personaList) == "" {
		opts.Personas = score.Personas()
	} else {
		for _, p := range strings.Split(personaList, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				opts.Personas = append(opts.Personas, trimmed)
			}
		}
	}
	if !opts.Daemon {
		opts.Daemon = getEnvBool("SAMPLE_GEN_DAEMON", false)
	}

	opts.RunAt = os.Getenv("SAMPLE_GEN_TIME")
	if strings.TrimSpace(opts.RunAt) == "" {
		opts.RunAt = "04:20"
	}
	opts.RunOnStartup = getEnvBool("SAMPLE_GEN_ON_STARTUP", false)
	opts.RetryCount = getEnvInt("SAMPLE_GEN_RETRY_COUNT", 3)
	opts.RetryIntervalMin = getEnvInt("SAMPLE_GEN_RETRY_INTERVAL", 10)
	opts.Debug = getEnvBool("SAMPLE_GEN_DEBUG", false)

	if opts.Daemon {
		samplegenInfof("daemon mode: db=%s, time=%s, on_startup=%v", opts.DBPath, opts.RunAt, opts.RunOnStartup)
		RunDailyDaemon(opts)
		return nil
	}

	rows, err := GenerateOnce(opts)
	if err != nil {
		return err
	}
	samplegenInfof("done: db=%s, rows=%d", opts.DBPath, rows)
	return nil
}

// RunDailyDaemon 每日定时生成
func RunDailyDaemon(opts Options) {
	hour, minute, err := parseHHMM(opts.RunAt)
	if err != nil {
		log.Fatalf("invalid SAMPLE_GEN_TIME: %v", err)
	}

	if opts.RunOnStartup {
		runWithRetry(opts)
	}

	for {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}
		d := nextRun.Sub(now)
		samplegenInfof("next run: %s (in %v)", nextRun.Format("2006-01-02 15:04:05"), d.Round(time.Minute))
		time.Sleep(d)
		runWithRetry(opts)
	}
}

func runWithRetry(opts Options) {
	for i := 0; i <= opts.RetryCount; i++ {
		if i > 0 {
			samplegenInfof("retry=%d", i)
		} else {
			samplegenInfof("start")
		}

		rows, err := GenerateOnce(opts)
		if err == nil {
			samplegenInfof("done: db=%s, rows=%d", opts.DBPath, rows)
			return
		}
		samplegenErrorf("failed: %v", err)
		if i < opts.RetryCount {
			samplegenInfof("retry in %d min", opts.RetryIntervalMin)
			time.Sleep(time.Duration(opts.RetryIntervalMin) * time.Minute)
		}
	}
	samplegenErrorf("failed after retries=%d", opts.RetryCount)
}

// GenerateOnce 为全部画像生成并写入合成记录
func GenerateOnce(opts Options) (int, error) {
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	now := time.Now()
	written := 0
	for _, persona := range opts.Personas {
		raw := GenerateRecords(persona, opts.Days, now)
		if err := st.SaveRecords(persona, raw); err != nil {
			return written, fmt.Errorf("写入画像 %s 的样本失败: %v", persona, err)
		}
		written += len(raw.Revenue)
		samplegenDebugf(opts.Debug, "persona=%s days=%d", persona, len(raw.Revenue))
	}
	return written, nil
}

// GenerateRecords 生成一个画像最近 days 天的合成记录
// 同画像同日期区间的输出确定（随机源按画像名播种），便于演示与测试。
func GenerateRecords(persona string, days int, now time.Time) model.RawRecords {
	profile, ok := profiles[persona]
	if !ok {
		profile = profiles["retail"]
	}
	rng := rand.New(rand.NewSource(personaSeed(persona)))

	var raw model.RawRecords
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		date := day.Format("2006-01-02")
		weekday := int(day.Weekday())

		// 周内季节形态：工作日高、周末低
		seasonal := 1.0 + profile.WeeklyAmp*weekdayShape(weekday)
		noise := 1.0 + profile.Noise*(rng.Float64()*2-1)

		revenue := profile.BaseRevenue * seasonal * noise
		// 周期性大单日
		if profile.OrderEveryDays > 0 && (days-1-i)%profile.OrderEveryDays == 0 {
			revenue *= 2.0 + rng.Float64()*0.5
		}
		refunds := revenue * profile.RefundRate * (0.5 + rng.Float64())
		margin := clamp01(profile.Margin + (rng.Float64()*2-1)*0.03)

		raw.Revenue = append(raw.Revenue, model.RevenueRecord{
			Date: date, Revenue: round2(revenue), Refunds: round2(refunds), GrossMargin: round4(margin),
		})

		leads := math.Max(0, profile.BaseLeads*seasonal+rng.NormFloat64()*1.2)
		raw.Leads = append(raw.Leads, model.LeadRecord{
			Date: date, NewLeads: math.Round(leads), ConvertedLeads: math.Round(leads * profile.ConvertRate),
		})

		raw.Customers = append(raw.Customers, model.CustomerRecord{
			Date:            date,
			ActiveCustomers: math.Round(profile.BaseCustomers + rng.NormFloat64()*2),
			PersonaMix:      map[string]float64{persona: 1.0},
			CategoryMix:     profile.CategoryMix,
		})

		raw.Ops = append(raw.Ops, model.OpsRecord{
			Date:       date,
			SLAMet:     clamp01(profile.SLAMet + (rng.Float64()*2-1)*0.02),
			OnTime:     clamp01(profile.OnTime + (rng.Float64()*2-1)*0.03),
			FreightMix: profile.FreightMix,
		})

		sessions := math.Max(0, profile.BaseSessions*seasonal+rng.NormFloat64()*2)
		raw.Engagement = append(raw.Engagement, model.EngagementRecord{
			Date:          date,
			Sessions:      math.Round(sessions),
			EmailOpens:    math.Round(sessions * (0.4 + rng.Float64()*0.2)),
			QuoteRequests: math.Round(math.Max(0, sessions*0.15+rng.NormFloat64()*0.5)),
		})
	}
	return raw
}

// weekdayShape 周一至周五为正、周末为负的形态系数
func weekdayShape(weekday int) float64 {
	switch weekday {
	case 0: // Sunday
		return -1.0
	case 6:
		return -0.7
	case 2, 3:
		return 0.8
	default:
		return 0.4
	}
}

func personaSeed(persona string) int64 {
	h := fnv.New64a()
	h.Write([]byte(persona))
	return int64(h.Sum64() & math.MaxInt64)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func samplegenInfof(format string, args ...any) {
	log.Printf("[INFO][sample-gen] "+format, args...)
}

func samplegenErrorf(format string, args ...any) {
	log.Printf("[ERROR][sample-gen] "+format, args...)
}

func samplegenDebugf(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	log.Printf("[DEBUG][sample-gen] "+format, args...)
}

func parseHHMM(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time format")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid hour/minute")
	}
	return h, m, nil
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
