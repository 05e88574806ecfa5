package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	logInstance *Logger

	levelNames = map[Level]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}
	levelColors = map[Level]string{
		DEBUG: "\033[36m",
		INFO:  "\033[32m",
		WARN:  "\033[33m",
		ERROR: "\033[31m",
		FATAL: "\033[35m",
	}
	resetColor = "\033[0m"
)

type Logger struct {
	level Level
	file  *os.File
}

func Init(logLevel string, logToFile bool) error {
	level := parseLevel(logLevel)

	var logFile *os.File
	if logToFile {
		if err := os.MkdirAll("logs", 0755); err != nil {
			return fmt.Errorf("create logs directory: %w", err)
		}
		name := filepath.Join("logs", fmt.Sprintf("costs_%s.log", time.Now().Format("2006-01-02")))
		file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = file
	}

	logInstance = &Logger{level: level, file: logFile}
	Info("Logger initialized", "level", levelNames[level], "to_file", logToFile)
	return nil
}

func parseLevel(level string) Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

func (l *Logger) log(level Level, msg string, fields ...interface{}) {
	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	} else {
		file = filepath.Base(file)
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fieldsStr := formatFields(fields)

	fmt.Printf("%s%-5s%s %s %s:%d %s%s\n",
		levelColors[level], levelNames[level], resetColor,
		timestamp, file, line, msg, fieldsStr)

	if l.file != nil {
		fmt.Fprintf(l.file, "%-5s %s %s:%d %s%s\n",
			levelNames[level], timestamp, file, line, msg, fieldsStr)
	}
}

func formatFields(fields []interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	var parts []string
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			parts = append(parts, fmt.Sprintf("%v=%v", fields[i], fields[i+1]))
		} else {
			parts = append(parts, fmt.Sprintf("%v", fields[i]))
		}
	}
	return " [" + strings.Join(parts, " ") + "]"
}

func Debug(msg string, fields ...interface{}) {
	if logInstance != nil {
		logInstance.log(DEBUG, msg, fields...)
	}
}

func Info(msg string, fields ...interface{}) {
	if logInstance != nil {
		logInstance.log(INFO, msg, fields...)
	}
}

func Warn(msg string, fields ...interface{}) {
	if logInstance != nil {
		logInstance.log(WARN, msg, fields...)
	}
}

func Error(msg string, fields ...interface{}) {
	if logInstance != nil {
		logInstance.log(ERROR, msg, fields...)
	}
}

func Fatal(msg string, fields ...interface{}) {
	if logInstance != nil {
		logInstance.log(FATAL, msg, fields...)
		os.Exit(1)
	}
}

func Close() {
	if logInstance != nil && logInstance.file != nil {
		logInstance.file.Close()
	}
}
