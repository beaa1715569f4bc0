package zonestore

import "go.uber.org/zap"

// Notifier 用户可见的提示（toast）
type Notifier interface {
	Success(title, message string)
	Error(title, message string)
}

// LogNotifier 将提示写入日志
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(title, message string) {
	n.logger.Info(title, zap.String("message", message))
}

func (n *LogNotifier) Error(title, message string) {
	n.logger.Warn(title, zap.String("message", message))
}
