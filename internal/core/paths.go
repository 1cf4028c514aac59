package core

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robottwo/wsh/internal/config"
)

type Paths struct {
	HomeDir    string
	DataDir    string
	LogFile    string
	AuditFile  string
	ConfigFile string
}

var defaultPaths *Paths

const (
	logFilePrefix = "wsh."
	logFileSuffix = ".zst"
	maxLogFiles   = 10
)

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		dataDir := filepath.Join(homeDir, ".local", "share", "wsh")
		defaultPaths = &Paths{
			HomeDir:    homeDir,
			DataDir:    dataDir,
			LogFile:    filepath.Join(dataDir, "wsh.zst"),
			AuditFile:  filepath.Join(dataDir, "audit.db"),
			ConfigFile: filepath.Join(homeDir, config.FileName),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

// AuditFile is where the audit log goes when audit_db is set to "default".
func AuditFile() string {
	ensureDefaultPaths()
	return defaultPaths.AuditFile
}

func ConfigFile() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigFile
}

func isLogFileName(name string) bool {
	return strings.HasPrefix(name, logFilePrefix) && strings.HasSuffix(name, logFileSuffix)
}

// CleanLogFiles removes every wsh.*.zst file from the data directory and
// returns the number of bytes freed.
func CleanLogFiles() (int64, error) {
	ensureDefaultPaths()

	entries, err := os.ReadDir(defaultPaths.DataDir)
	if err != nil {
		return 0, err
	}

	var freed int64
	for _, entry := range entries {
		if entry.IsDir() || !isLogFileName(entry.Name()) {
			continue
		}
		if info, err := entry.Info(); err == nil {
			freed += info.Size()
		}
		if err := os.Remove(filepath.Join(defaultPaths.DataDir, entry.Name())); err != nil {
			return freed, err
		}
	}

	return freed, nil
}

// RotateLogFiles keeps the most recent log files, by modification time, and
// removes the rest. It runs whenever a new log sink is opened.
func RotateLogFiles() error {
	ensureDefaultPaths()

	entries, err := os.ReadDir(defaultPaths.DataDir)
	if err != nil {
		return err
	}

	var logFiles []logFileInfo
	for _, entry := range entries {
		if entry.IsDir() || !isLogFileName(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		logFiles = append(logFiles, logFileInfo{
			path:    filepath.Join(defaultPaths.DataDir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	if len(logFiles) <= maxLogFiles {
		return nil
	}

	// Newest first
	sort.Slice(logFiles, func(i, j int) bool {
		return logFiles[i].modTime.After(logFiles[j].modTime)
	})

	for _, f := range logFiles[maxLogFiles:] {
		if err := os.Remove(f.path); err != nil {
			return err
		}
	}

	return nil
}

type logFileInfo struct {
	path    string
	modTime time.Time
}
