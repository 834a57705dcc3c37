// internal/config/logger.go
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

type LoggerConfig struct {
	Level       string `yaml:"level"`
	Destination string `yaml:"destination,omitempty"`
	Mode        string `yaml:"mode,omitempty"`
}

type LoggingConfig struct {
	Console LoggerConfig `yaml:"console"`
	File    LoggerConfig `yaml:"file"`
}

func (conf *LoggingConfig) validate() error {
	for name, lc := range map[string]LoggerConfig{"console": conf.Console, "file": conf.File} {
		switch lc.Level {
		case "", "none", "normal", "debug":
		default:
			return fmt.Errorf("logging.%s.level must be one of none, normal, debug: got %q", name, lc.Level)
		}
		switch lc.Mode {
		case "", "append", "overwrite":
		default:
			return fmt.Errorf("logging.%s.mode must be append or overwrite: got %q", name, lc.Mode)
		}
	}
	if conf.File.Level != "" && conf.File.Level != "none" && conf.File.Destination == "" {
		return fmt.Errorf("logging.file.destination is required when file logging is enabled")
	}
	return nil
}

// Prepare returns the program logger. Console output goes to stdout, errors to
// stderr. The file logger, when enabled, receives everything at its level.
func (conf *LoggingConfig) Prepare(debug bool) (*zap.Logger, error) {
	consoleLevel := conf.Console.Level
	if debug {
		consoleLevel = "debug"
	}

	var consoleLP, consoleHP zapcore.Core
	switch consoleLevel {
	case "normal", "debug":
		minLevel := zapcore.InfoLevel
		if consoleLevel == "debug" {
			minLevel = zapcore.DebugLevel
		}
		consoleLP = zapcore.NewCore(consoleEncoder(os.Stdout), zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return minLevel <= lvl && lvl < zapcore.ErrorLevel
			}))
		consoleHP = zapcore.NewCore(consoleEncoder(os.Stderr), zapcore.Lock(os.Stderr),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= zapcore.ErrorLevel
			}))
	default:
		consoleLP = zapcore.NewNopCore()
		consoleHP = zapcore.NewNopCore()
	}

	fileCore := zapcore.NewNopCore()
	if level := conf.File.Level; level == "normal" || level == "debug" {
		flags := os.O_CREATE | os.O_WRONLY
		if conf.File.Mode == "append" {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(conf.File.Destination, flags, 0644)
		if err != nil {
			return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.File.Destination, err)
		}
		fileLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
		if level == "debug" {
			fileLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		fileCore = zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(f), fileLevel)
	}

	return zap.New(zapcore.NewTee(consoleHP, consoleLP, fileCore)).Named("pagina"), nil
}

func consoleEncoder(stream *os.File) zapcore.Encoder {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if term.IsTerminal(int(stream.Fd())) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}
