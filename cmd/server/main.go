package main

import (
	"bufio"
	"log"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"revenue-forecast-backend/internal/alert"
	"revenue-forecast-backend/internal/bizdata"
	"revenue-forecast-backend/internal/cache"
	"revenue-forecast-backend/internal/client"
	"revenue-forecast-backend/internal/config"
	"revenue-forecast-backend/internal/handler"
	"revenue-forecast-backend/internal/mail"
	"revenue-forecast-backend/internal/model"
	"revenue-forecast-backend/internal/scheduler"
	"revenue-forecast-backend/internal/service"
	"revenue-forecast-backend/internal/store"
	"revenue-forecast-backend/pkg/samplegen"
)

func init() {
	// 手动加载 .env 文件
	file, err := os.Open(".env")
	if err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			os.Setenv(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
		}
	}
}

func main() {
	// 流水线配置：yaml + 环境变量覆盖
	cfg, err := config.LoadPipeline(os.Getenv("PIPELINE_CONFIG"))
	if err != nil {
		log.Fatalf("加载流水线配置失败: %v", err)
	}

	// Redis 可选，连接失败时回退到进程内缓存
	var cacheProvider bizdata.CacheProvider
	if err := cache.InitRedis(); err != nil {
		log.Printf("Redis不可用，使用进程内缓存: %v", err)
		cacheProvider = bizdata.NewInMemoryCacheProvider()
	} else {
		cacheProvider = cache.NewRedisProvider()
		defer cache.Close()
	}

	// 业务数据存储
	dbPath := os.Getenv("BIZ_DB_PATH")
	if dbPath == "" {
		dbPath = "/app/data/bizdata.db"
	}
	st, err := store.Open(dbPath)
	if err != nil {
		log.Printf("打开业务数据库失败，仅使用合成数据: %v", err)
		st = nil
	} else {
		defer st.Close()
	}

	// 启动时可选生成演示样本
	if os.Getenv("SAMPLE_GEN_ON_STARTUP") == "1" {
		if err := samplegen.Execute(nil); err != nil {
			log.Printf("生成演示样本失败: %v", err)
		}
	}

	provider := bizdata.NewProvider(st, cacheProvider)
	dispatcher := alert.NewDispatcher(map[string]alert.Sink{
		model.ActionEmail:   mail.NewEmailSink(),
		model.ActionHubspot: client.NewHubspotSink(),
		model.ActionWebhook: client.NewWebhookSink(),
	})
	svc := service.NewForecastService(provider, cacheProvider, cfg, dispatcher)
	h := handler.NewForecastHandler(svc)

	// 定时任务
	schedCfg := config.GetSchedulerConfig()
	scheduler.StartDailyForecastScheduler(svc, schedCfg)
	scheduler.StartSampleRefreshScheduler(schedCfg)

	r := gin.Default()

	// 配置 CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// 注册路由
	api := r.Group("/api")
	{
		// 预测相关
		api.POST("/forecast", h.Forecast)
		api.POST("/forecast/tasks", h.CreateForecastTask)
		api.GET("/forecast/tasks/:task_id", h.GetForecastTask)
		api.DELETE("/forecast/tasks/:task_id", h.CancelForecastTask)

		// 画像与告警
		api.GET("/personas", h.Personas)
		api.GET("/alerts/preview", h.AlertsPreview)
		api.GET("/health", h.Health)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("服务启动在端口 %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}
