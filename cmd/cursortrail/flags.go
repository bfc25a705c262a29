package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"cursortrail/internal/config"
	"cursortrail/internal/logging"
)

type options struct {
	configPath  string
	logLevel    string
	logFormat   string
	headless    bool
	showVersion bool
	writeConfig string
	metricsFile string
}

func parseFlags(args []string) (*options, error) {
	var o options
	fs := flag.NewFlagSet("cursortrail", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "config file (toml, json or yaml)")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "", "log format: auto, text, json")
	fs.BoolVar(&o.headless, "headless", false, "run without a window")
	fs.BoolVar(&o.showVersion, "version", false, "print version and exit")
	fs.StringVar(&o.writeConfig, "write-config", "", "write the effective config to `path` and exit")
	fs.StringVar(&o.metricsFile, "metrics-file", "", "write a JSON metrics snapshot to `path` on exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return &o, nil
}

// configFile returns the explicit -config path, else the first config file
// found in the working or config directory, else the default path.
func (o *options) configFile() string {
	if o.configPath != "" {
		return o.configPath
	}
	if found := config.FindConfigFile(); found != "" {
		return found
	}
	return config.ConfigPath()
}

// loggingConfig merges the config file's logging section with flag
// overrides.
func loggingConfig(lc config.LoggingConfig, o *options) (*logging.Config, error) {
	levelName := lc.Level
	if o.logLevel != "" {
		levelName = o.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	formatName := lc.Format
	if o.logFormat != "" {
		formatName = o.logFormat
	}
	var format logging.Format
	if formatName == "" || strings.EqualFold(formatName, "auto") {
		format = logging.DefaultFormat(os.Stderr)
	} else if format, err = logging.ParseFormat(formatName); err != nil {
		return nil, err
	}

	return &logging.Config{
		Level:      level,
		Format:     format,
		Output:     lc.Output,
		FilePath:   lc.FilePath,
		MaxSize:    int64(lc.MaxSizeMB),
		MaxBackups: lc.MaxBackups,
		Component:  "cursortrail",
	}, nil
}
