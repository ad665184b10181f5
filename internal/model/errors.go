package model

import "errors"

// 流水线错误分类
// ErrInsufficientData 由单个预测模型在历史数据不足时返回，
// Ensemble 捕获后跳过该模型，编排器捕获后降级为单模型；
// ErrUnknownPersona 表示配置错误，直接上抛给调用方。
var (
	ErrInsufficientData = errors.New("历史数据不足")
	ErrUnknownPersona   = errors.New("未知的客户画像")
)
