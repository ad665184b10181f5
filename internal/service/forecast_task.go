package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"revenue-forecast-backend/internal/model"
)

type ForecastTaskStatus struct {
	TaskID    string                 `json:"task_id"`
	Status    string                 `json:"status"`
	Current   string                 `json:"current_persona,omitempty"`
	Done      int                    `json:"done"`
	Total     int                    `json:"total"`
	Results   []model.ForecastOutput `json:"results,omitempty"`
	Error     string                 `json:"error,omitempty"`
	ExpiresAt time.Time              `json:"expires_at"`
}

type forecastTask struct {
	id        string
	status    string
	canceled  bool
	requestID string
	current   string
	done      int
	total     int
	results   []model.ForecastOutput
	err       string
	createdAt time.Time
	expiresAt time.Time
}

var (
	forecastTaskMu  sync.Mutex
	forecastTasks   = make(map[string]*forecastTask)
	requestTaskMap  = make(map[string]string)
	forecastTaskSem = make(chan struct{}, 3)
)

const forecastTaskTTL = 30 * time.Minute

func (s *ForecastService) CreateForecastTask(personas []string, horizons []int, requestID string) (ForecastTaskStatus, bool, error) {
	if len(personas) == 0 {
		return ForecastTaskStatus{}, false, fmt.Errorf("请选择至少一个客户画像")
	}
	requestID = strings.TrimSpace(requestID)

	now := time.Now()

	forecastTaskMu.Lock()
	cleanupExpiredLocked(now)
	if requestID != "" {
		if existingID, ok := requestTaskMap[requestID]; ok {
			if t, ok2 := forecastTasks[existingID]; ok2 && !t.expiresAt.IsZero() && now.Before(t.expiresAt) {
				out := buildForecastTaskStatus(t)
				forecastTaskMu.Unlock()
				return out, false, nil
			}
			delete(requestTaskMap, requestID)
		}
	}
	forecastTaskMu.Unlock()

	id := newTaskID()
	t := &forecastTask{
		id:        id,
		status:    "pending",
		done:      0,
		total:     len(personas),
		results:   nil,
		err:       "",
		createdAt: now,
		expiresAt: now.Add(forecastTaskTTL),
		requestID: requestID,
	}

	forecastTaskMu.Lock()
	forecastTasks[id] = t
	if requestID != "" {
		requestTaskMap[requestID] = id
	}
	forecastTaskMu.Unlock()

	go s.runForecastTask(t, personas, horizons)
	return ForecastTaskStatus{TaskID: id, Status: "pending", Done: 0, Total: len(personas), ExpiresAt: t.expiresAt}, true, nil
}

func GetForecastTaskStatus(taskID string) (ForecastTaskStatus, bool) {
	now := time.Now()
	forecastTaskMu.Lock()
	cleanupExpiredLocked(now)
	t, ok := forecastTasks[taskID]
	if !ok {
		forecastTaskMu.Unlock()
		return ForecastTaskStatus{}, false
	}
	out := buildForecastTaskStatus(t)
	forecastTaskMu.Unlock()
	return out, true
}

func CancelForecastTask(taskID string) (ForecastTaskStatus, bool) {
	now := time.Now()
	forecastTaskMu.Lock()
	cleanupExpiredLocked(now)
	t, ok := forecastTasks[taskID]
	if !ok {
		forecastTaskMu.Unlock()
		return ForecastTaskStatus{}, false
	}

	switch t.status {
	case "done", "failed", "canceled":
		out := buildForecastTaskStatus(t)
		forecastTaskMu.Unlock()
		return out, true
	default:
		t.canceled = true
		t.status = "canceled"
		t.err = "任务已取消"
		t.current = ""
		if t.requestID != "" {
			delete(requestTaskMap, t.requestID)
		}
		out := buildForecastTaskStatus(t)
		forecastTaskMu.Unlock()
		return out, true
	}
}

func (s *ForecastService) runForecastTask(t *forecastTask, personas []string, horizons []int) {
	forecastTaskSem <- struct{}{}
	defer func() { <-forecastTaskSem }()

	forecastTaskMu.Lock()
	if t.status == "pending" {
		t.status = "running"
	}
	forecastTaskMu.Unlock()

	results := make([]model.ForecastOutput, 0, len(personas))
	for i, persona := range personas {
		forecastTaskMu.Lock()
		if t.canceled {
			if t.status != "canceled" {
				t.status = "canceled"
				t.current = ""
				t.err = "任务已取消"
			}
			forecastTaskMu.Unlock()
			return
		}
		t.current = persona
		forecastTaskMu.Unlock()

		res, err := s.ForecastSingle(persona, horizons)
		if err != nil {
			forecastTaskMu.Lock()
			t.status = "failed"
			t.done = i
			t.current = persona
			t.results = results
			t.err = err.Error()
			forecastTaskMu.Unlock()
			return
		}
		results = append(results, *res)

		forecastTaskMu.Lock()
		if t.canceled {
			t.status = "canceled"
			t.current = ""
			t.err = "任务已取消"
			t.results = results
			if t.requestID != "" {
				delete(requestTaskMap, t.requestID)
			}
			forecastTaskMu.Unlock()
			return
		}
		t.done = i + 1
		forecastTaskMu.Unlock()
	}

	forecastTaskMu.Lock()
	t.status = "done"
	t.results = results
	t.done = len(personas)
	t.current = ""
	if t.requestID != "" {
		delete(requestTaskMap, t.requestID)
	}
	forecastTaskMu.Unlock()
}

func cleanupExpiredLocked(now time.Time) {
	for id, t := range forecastTasks {
		if !t.expiresAt.IsZero() && now.After(t.expiresAt) {
			delete(forecastTasks, id)
		}
	}
	for rid, tid := range requestTaskMap {
		t, ok := forecastTasks[tid]
		if !ok || (!t.expiresAt.IsZero() && now.After(t.expiresAt)) {
			delete(requestTaskMap, rid)
		}
	}
}

func newTaskID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func buildForecastTaskStatus(t *forecastTask) ForecastTaskStatus {
	out := ForecastTaskStatus{
		TaskID:    t.id,
		Status:    t.status,
		Current:   t.current,
		Done:      t.done,
		Total:     t.total,
		Error:     t.err,
		ExpiresAt: t.expiresAt,
	}
	if t.status == "done" || t.status == "failed" {
		out.Results = append([]model.ForecastOutput(nil), t.results...)
	}
	return out
}
