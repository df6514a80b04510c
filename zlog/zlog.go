/*
Package zlog is a process wide structured logger backed by zap
*/
package zlog

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.Mutex
	logger *zap.SugaredLogger
)

/*
Setup replaces the process logger. Verbose logger reports debug messages in the development format.
*/
func Setup(verbose bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		l, err = cfg.Build()
	}
	if err != nil {
		return err
	}
	Use(l)
	return nil
}

/*
Use sets an already configured zap logger, tests use zap.NewNop() or zaptest loggers here
*/
func Use(l *zap.Logger) {
	mu.Lock()
	logger = l.Sugar()
	mu.Unlock()
}

func sugar() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l.Sugar()
	}
	return logger
}

func Sync() {
	_ = sugar().Sync()
}

func Debugf(format string, a ...interface{}) {
	sugar().Debugf(format, a...)
}

func Info(a ...interface{}) {
	sugar().Info(fmt.Sprint(a...))
}

func Infof(format string, a ...interface{}) {
	sugar().Infof(format, a...)
}

// Infow logs a message with key/value pairs
func Infow(msg string, kv ...interface{}) {
	sugar().Infow(msg, kv...)
}

func Warning(a ...interface{}) {
	sugar().Warn(fmt.Sprint(a...))
}

func Warningf(format string, a ...interface{}) {
	sugar().Warnf(format, a...)
}

func Error(err error, kv ...interface{}) {
	sugar().Errorw(err.Error(), kv...)
}
