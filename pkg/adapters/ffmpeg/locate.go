// Package ffmpeg drives an external ffmpeg binary for probing and raw frame decoding.
package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

var (
	customMu         sync.RWMutex
	customFFmpegPath string
)

// SetFFmpegPath overrides binary discovery. An empty path restores the default search.
func SetFFmpegPath(path string) {
	customMu.Lock()
	defer customMu.Unlock()
	customFFmpegPath = path
}

func executableName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

// FindFFmpeg searches for the ffmpeg binary.
// Priority: 1) SetFFmpegPath, 2) FFMPEG_PATH env, 3) a binary in the working directory, 4) PATH, 5) common locations
func FindFFmpeg() (string, error) {
	customMu.RLock()
	custom := customFFmpegPath
	customMu.RUnlock()

	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, custom)
	}

	if envPath := os.Getenv("FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: FFMPEG_PATH %s not found", ErrFFmpegNotFound, envPath)
	}

	// A bundled binary next to the working directory wins over the system one.
	local, err := filepath.Abs(executableName())
	if err == nil {
		if info, err := os.Stat(local); err == nil && !info.IsDir() {
			return local, nil
		}
	}

	if path, err := exec.LookPath(executableName()); err == nil {
		return path, nil
	}

	var commonPaths []string
	switch runtime.GOOS {
	case "windows":
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	case "darwin":
		commonPaths = []string{
			"/opt/homebrew/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
		}
	default:
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}

	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}
