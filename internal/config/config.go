// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	HTTP       HTTP
	App        App
	Download   Download
	Dir        Dir
	DepManager DepManager
}

// App holds application-wide configuration.
type App struct {
	LogLevel string `env:"TUBEGRAB_APP_LOG_LEVEL" envDefault:"info"`
}

// HTTP holds HTTP server configuration.
type HTTP struct {
	Port            string        `env:"TUBEGRAB_HTTP_PORT"             envDefault:":8080"`
	HandlerTimeout  time.Duration `env:"TUBEGRAB_HTTP_HANDLER_TIMEOUT"  envDefault:"20s"`
	DownloadTimeout time.Duration `env:"TUBEGRAB_HTTP_DOWNLOAD_TIMEOUT" envDefault:"30m"`
	ShutdownTimeout time.Duration `env:"TUBEGRAB_HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Download holds download operation configuration.
type Download struct {
	// Timeout bounds the total duration of a single download operation.
	Timeout time.Duration `env:"TUBEGRAB_DOWNLOAD_TIMEOUT" envDefault:"30m"`
	// ProgressInterval is how often the extractor is asked to report progress.
	ProgressInterval time.Duration `env:"TUBEGRAB_DOWNLOAD_PROGRESS_INTERVAL" envDefault:"200ms"`
	// AudioFormat is the target container for audio-only downloads.
	AudioFormat string `env:"TUBEGRAB_DOWNLOAD_AUDIO_FORMAT" envDefault:"mp3"`
	// EventBuffer is the capacity of a download operation's event channel.
	EventBuffer int `env:"TUBEGRAB_DOWNLOAD_EVENT_BUFFER" envDefault:"64"`
}

// Dir holds directory paths for downloads, cache, and cookie file.
type Dir struct {
	Downloads string `env:"TUBEGRAB_DIR_DOWNLOAD" envDefault:"./data/downloads"` // downloads stored here
	Cache     string `env:"TUBEGRAB_DIR_CACHE"    envDefault:"./data/cache"`     // yt-dlp cache (meta, sigs)

	// must contain cookies.txt file
	// see: https://github.com/yt-dlp/yt-dlp/wiki/FAQ#how-do-i-pass-cookies-to-yt-dlp
	CookieFile string `env:"TUBEGRAB_DIR_COOKIE_FILE" envDefault:""`
}

// SetAbsPaths converts all directory paths to absolute paths.
func (c *Dir) SetAbsPaths() error {
	var err error
	if c.Downloads, err = filepath.Abs(c.Downloads); err != nil {
		return fmt.Errorf("downloads: %w", err)
	}

	if c.Cache, err = filepath.Abs(c.Cache); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	if c.CookieFile != "" {
		if c.CookieFile, err = filepath.Abs(c.CookieFile); err != nil {
			return fmt.Errorf("cookie file: %w", err)
		}
	}

	return nil
}

// DepManager holds binary dependency management configuration.
type DepManager struct {
	// BinsDir is the directory where binaries are stored
	BinsDir string `env:"TUBEGRAB_DEPMANAGER_BINS_DIR" envDefault:"./bins"`
	// UseSystemBinaries indicates whether to use system-installed binaries or download them.
	UseSystemBinaries bool `env:"TUBEGRAB_DEPMANAGER_USE_SYSTEM_BINARIES" envDefault:"true"`

	// ffmpeg binary URLs per platform.
	FFmpegLinuxARM64 string `env:"TUBEGRAB_DEPMANAGER_FFMPEG_LINUX_ARM64" envDefault:"https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-linuxarm64-gpl.tar.xz"` //nolint:lll
	FFmpegLinuxAMD64 string `env:"TUBEGRAB_DEPMANAGER_FFMPEG_LINUX_AMD64" envDefault:"https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-linux64-gpl.tar.xz"`    //nolint:lll

	// yt-dlp binary URLs per platform.
	YTdlpLinuxARM64 string `env:"TUBEGRAB_DEPMANAGER_YTDLP_LINUX_ARM64" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux_aarch64"` //nolint:lll
	YTdlpLinuxAMD64 string `env:"TUBEGRAB_DEPMANAGER_YTDLP_LINUX_AMD64" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux"`         //nolint:lll
}

// SetAbsPaths converts the BinsDir path to an absolute path.
func (d *DepManager) SetAbsPaths() error {
	var err error
	if d.BinsDir, err = filepath.Abs(d.BinsDir); err != nil {
		return fmt.Errorf("bins dir: %w", err)
	}

	return nil
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := &Config{}

	err := env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	err = cfg.Dir.SetAbsPaths()
	if err != nil {
		return nil, fmt.Errorf("set absolute paths: %w", err)
	}

	err = cfg.DepManager.SetAbsPaths()
	if err != nil {
		return nil, fmt.Errorf("set dep manager absolute paths: %w", err)
	}

	return cfg, nil
}
