package config

// LoggingConfig selects level, encoding and destination of the zerolog
// logger.  Output is one of stdout, stderr or file; file requires FilePath.
type LoggingConfig struct {
    Level    string
    Format   string
    Output   string
    FilePath string
}

func LoadLoggingConfig() LoggingConfig {
    return LoggingConfig{
        Level:    envStr("LOG_LEVEL", "info"),
        Format:   envStr("LOG_FORMAT", "json"),
        Output:   envStr("LOG_OUTPUT", "stdout"),
        FilePath: envStr("LOG_FILE", ""),
    }
}
