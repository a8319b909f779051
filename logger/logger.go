package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var (
	AppLogger     *log.Logger
	BackendLogger *log.Logger
	ErrorLogger   *log.Logger

	logLevel       string
	appLogFile     *os.File
	backendLogFile *os.File
	initialized    bool
)

// InitGlobalLoggers sets up the application log and the backend-call log.
// The backend log records every request the console issues to the WAF
// control service and is kept separate so operators can correlate it with
// the control service's own access log.
func InitGlobalLoggers(appLogPath, backendLogPath, level string) error {
	if initialized && appLogFile != nil && backendLogFile != nil && strings.ToUpper(level) == logLevel {
		// Already initialized with same settings, perhaps a redundant call.
		return nil
	}
	if appLogFile != nil {
		appLogFile.Close()
		appLogFile = nil
	}
	if backendLogFile != nil {
		backendLogFile.Close()
		backendLogFile = nil
	}

	logLevel = strings.ToUpper(level)
	if logLevel == "" {
		logLevel = "INFO"
	}

	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	actualAppLogPath := appLogPath
	appLogDir := filepath.Dir(appLogPath)
	var appLogWriter io.Writer = io.Discard
	if err := os.MkdirAll(appLogDir, 0750); err != nil {
		ErrorLogger.Printf("Failed to create app log directory %s: %v. App logs (Info/Debug) will be discarded.", appLogDir, err)
		actualAppLogPath = "(discarded)"
	} else {
		var errApp error
		appLogFile, errApp = os.OpenFile(appLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if errApp != nil {
			ErrorLogger.Printf("Failed to open app log file %s: %v. App logs (Info/Debug) will be discarded.", appLogPath, errApp)
			actualAppLogPath = "(discarded)"
		} else {
			appLogWriter = appLogFile
		}
	}
	AppLogger = log.New(appLogWriter, "APP: ", log.Ldate|log.Ltime|log.Lshortfile)

	actualBackendLogPath := backendLogPath
	backendLogDir := filepath.Dir(backendLogPath)
	var backendLogWriter io.Writer = io.Discard
	if err := os.MkdirAll(backendLogDir, 0750); err != nil {
		ErrorLogger.Printf("Failed to create backend log directory %s: %v. Backend logs (Info/Debug) will be discarded.", backendLogDir, err)
		actualBackendLogPath = "(discarded)"
	} else {
		var errBackend error
		backendLogFile, errBackend = os.OpenFile(backendLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if errBackend != nil {
			ErrorLogger.Printf("Failed to open backend log file %s: %v. Backend logs (Info/Debug) will be discarded.", backendLogPath, errBackend)
			actualBackendLogPath = "(discarded)"
		} else {
			backendLogWriter = backendLogFile
		}
	}
	BackendLogger = log.New(backendLogWriter, "BACKEND: ", log.Ldate|log.Ltime|log.Lshortfile)

	if !initialized { // Print init messages only once
		AppLogger.Printf("App logger initialized. Log level: %s. Output file: %s", logLevel, actualAppLogPath)
		BackendLogger.Printf("Backend logger initialized. Log level: %s. Output file: %s", logLevel, actualBackendLogPath)
	}
	initialized = true
	return nil
}

func Info(format string, v ...interface{}) {
	if AppLogger != nil && (logLevel == "INFO" || logLevel == "DEBUG") {
		AppLogger.Printf(format, v...)
	}
}

func Debug(format string, v ...interface{}) {
	if AppLogger != nil && logLevel == "DEBUG" {
		AppLogger.Printf(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if AppLogger != nil && (logLevel == "WARN" || logLevel == "INFO" || logLevel == "DEBUG") {
		AppLogger.Printf(format, v...)
	}
}

func Error(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil {
		ErrorLogger.Print(message)
	}
	if AppLogger != nil && appLogFile != nil {
		AppLogger.Print(message)
	}
}

func Fatal(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil {
		ErrorLogger.Fatal(message)
	} else {
		log.Fatal(message)
	}
}

func BackendInfo(format string, v ...interface{}) {
	if BackendLogger != nil && (logLevel == "INFO" || logLevel == "DEBUG") {
		BackendLogger.Printf(format, v...)
	}
}

func BackendDebug(format string, v ...interface{}) {
	if BackendLogger != nil && logLevel == "DEBUG" {
		BackendLogger.Printf(format, v...)
	}
}

func BackendError(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil { // All errors go to stderr via ErrorLogger
		ErrorLogger.Print(message)
	}
	if BackendLogger != nil && backendLogFile != nil { // Also write to backend log file
		BackendLogger.Print(message)
	}
}

func CloseLogFiles() {
	if appLogFile != nil {
		AppLogger.Println("Closing app log file.")
		appLogFile.Close()
		appLogFile = nil // Prevent double close
	}
	if backendLogFile != nil {
		BackendLogger.Println("Closing backend log file.")
		backendLogFile.Close()
		backendLogFile = nil // Prevent double close
	}
	initialized = false // Allow re-initialization if needed (e.g. tests)
}
