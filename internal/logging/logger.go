package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"interiorerp/internal/config"
)

// Logger is the process-wide logger. It writes to stdout until Init runs.
var Logger = logrus.New()

var once sync.Once

// Init configures Logger from cfg. A configured file is rotated by lumberjack
// and mirrored to stdout.
func Init(cfg config.LogConfig, service string) {
	once.Do(func() {
		level, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			level = logrus.InfoLevel
		}
		Logger.SetLevel(level)
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

		var out io.Writer = os.Stdout
		if cfg.File != "" {
			if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
				Logger.Fatalf("[logging][init][err] create log dir: %v", err)
			}
			out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   true,
			})
		}
		Logger.SetOutput(out)
		Logger.AddHook(serviceHook(service))
		Logger.Infof("[logging][init][ok] level=%s file=%q", level, cfg.File)
	})
}

type serviceHook string

func (h serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h serviceHook) Fire(e *logrus.Entry) error {
	e.Data["service"] = string(h)
	return nil
}
