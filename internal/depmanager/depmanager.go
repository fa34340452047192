// Package depmanager ensures the external binaries the extractor shells out
// to (yt-dlp, ffmpeg) are available: either resolved from the system PATH or
// downloaded into a managed directory.
package depmanager

import (
	"archive/tar"
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"tubegrab/internal/config"
	"tubegrab/internal/errs"

	"github.com/ulikunitz/xz"
)

// BinaryName represents the name of a binary dependency.
type BinaryName string

// Binary dependency names.
const (
	BinaryYTdlp  BinaryName = "yt-dlp"
	BinaryFFmpeg BinaryName = "ffmpeg"
)

const (
	platformLinux = "linux"
	archARM64     = "arm64"
	archAMD64     = "amd64"

	// downloadTimeout is the HTTP client timeout for downloading binaries.
	downloadTimeout = 10 * time.Minute
	// filePermExecutable is the file permission for executable binaries.
	filePermExecutable = 0o755
)

// Platform represents the OS and architecture combination.
type Platform struct {
	OS   string
	Arch string
}

// String returns the platform string in format "os/arch".
func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// Manager manages binary dependencies.
type Manager struct {
	log      *slog.Logger
	cfg      *config.Config
	platform Platform
	client   *http.Client

	mu       sync.RWMutex
	binPaths map[BinaryName]string
}

// New creates a new dependency manager.
func New(log *slog.Logger, cfg *config.Config) *Manager {
	return &Manager{
		log: log.With(slog.String("package", "depmanager")),
		cfg: cfg,
		platform: Platform{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
		client: &http.Client{
			Timeout: downloadTimeout,
		},
		binPaths: make(map[BinaryName]string),
	}
}

// Start resolves all binaries: from the system PATH when configured, or by
// downloading missing ones into BinsDir.
func (m *Manager) Start(ctx context.Context) error {
	if m.cfg.DepManager.UseSystemBinaries {
		return m.SetSystemBinaries()
	}

	return m.InstallAll(ctx)
}

// Path returns the resolved path for a binary, or empty if unknown.
func (m *Manager) Path(name BinaryName) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.binPaths[name]
}

// SetSystemBinaries looks up all binaries in the system PATH.
func (m *Manager) SetSystemBinaries() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range []BinaryName{BinaryYTdlp, BinaryFFmpeg} {
		path, err := exec.LookPath(string(name))
		if err != nil {
			return fmt.Errorf("%w: %s: %w", errs.ErrBinaryNotFound, name, err)
		}

		m.binPaths[name] = path
	}

	return nil
}

// InstallAll downloads and installs every missing binary into BinsDir.
func (m *Manager) InstallAll(ctx context.Context) error {
	if err := os.MkdirAll(m.cfg.DepManager.BinsDir, filePermExecutable); err != nil {
		return fmt.Errorf("create bins dir: %w", err)
	}

	for _, name := range []BinaryName{BinaryYTdlp, BinaryFFmpeg} {
		installed := filepath.Join(m.cfg.DepManager.BinsDir, string(name))
		if _, err := os.Stat(installed); err == nil {
			m.setPath(name, installed)

			continue
		}

		m.log.InfoContext(ctx, "installing binary", slog.String("binary", string(name)))

		if err := m.install(ctx, name); err != nil {
			return fmt.Errorf("install %s: %w", name, err)
		}

		m.setPath(name, installed)
	}

	return nil
}

func (m *Manager) setPath(name BinaryName, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.binPaths[name] = path
}

// BinaryURL selects the download URL for a binary on the current platform.
func (m *Manager) BinaryURL(name BinaryName) (string, error) {
	if m.platform.OS != platformLinux {
		return "", fmt.Errorf("%w: %s", errs.ErrUnsupportedPlatform, m.platform)
	}

	var arm64URL, amd64URL string

	switch name {
	case BinaryYTdlp:
		arm64URL, amd64URL = m.cfg.DepManager.YTdlpLinuxARM64, m.cfg.DepManager.YTdlpLinuxAMD64
	case BinaryFFmpeg:
		arm64URL, amd64URL = m.cfg.DepManager.FFmpegLinuxARM64, m.cfg.DepManager.FFmpegLinuxAMD64
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrBinaryNotFound, name)
	}

	switch m.platform.Arch {
	case archARM64:
		return arm64URL, nil
	case archAMD64:
		return amd64URL, nil
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrUnsupportedPlatform, m.platform)
	}
}

func (m *Manager) install(ctx context.Context, name BinaryName) error {
	url, err := m.BinaryURL(name)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}

	archivePath := filepath.Join(m.cfg.DepManager.BinsDir, filepath.Base(url))

	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()

		return fmt.Errorf("write archive file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close archive file: %w", err)
	}

	return m.unpack(archivePath, name)
}

// unpack extracts or installs the downloaded artifact. ffmpeg builds ship as
// tar.xz (zip on windows); yt-dlp ships as a raw binary.
func (m *Manager) unpack(archivePath string, name BinaryName) error {
	destPath := filepath.Join(m.cfg.DepManager.BinsDir, string(name))

	switch {
	case strings.HasSuffix(archivePath, ".tar.xz"):
		defer os.Remove(archivePath)

		return extractFromTarXZ(archivePath, destPath, string(name))
	case strings.HasSuffix(archivePath, ".zip"):
		defer os.Remove(archivePath)

		return extractFromZip(archivePath, destPath, string(name))
	default:
		if err := os.Rename(archivePath, destPath); err != nil {
			return fmt.Errorf("rename binary: %w", err)
		}

		return os.Chmod(destPath, filePermExecutable)
	}
}

// extractFromTarXZ extracts the named file from a tar.xz archive.
func extractFromTarXZ(archivePath, destPath, target string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	reader, err := xz.NewReader(file)
	if err != nil {
		return fmt.Errorf("xz reader: %w", err)
	}

	return extractFromTar(tar.NewReader(reader), destPath, target)
}

func extractFromTar(reader *tar.Reader, destPath, target string) error {
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}

		if header.Typeflag != tar.TypeReg || filepath.Base(header.Name) != target {
			continue
		}

		out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermExecutable)
		if err != nil {
			return fmt.Errorf("create %s: %w", destPath, err)
		}

		if _, err := io.Copy(out, reader); err != nil { //nolint:gosec // trusted release archives
			out.Close()

			return fmt.Errorf("extract %s: %w", target, err)
		}

		return out.Close()
	}

	return fmt.Errorf("%w: %s not in archive", errs.ErrBinaryNotFound, target)
}

// extractFromZip extracts the named file from a zip archive.
func extractFromZip(archivePath, destPath, target string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if filepath.Base(file.Name) != target {
			continue
		}

		in, err := file.Open()
		if err != nil {
			return fmt.Errorf("open %s in zip: %w", target, err)
		}

		out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermExecutable)
		if err != nil {
			in.Close()

			return fmt.Errorf("create %s: %w", destPath, err)
		}

		_, err = io.Copy(out, in) //nolint:gosec // trusted release archives
		in.Close()

		if err != nil {
			out.Close()

			return fmt.Errorf("extract %s: %w", target, err)
		}

		return out.Close()
	}

	return fmt.Errorf("%w: %s not in archive", errs.ErrBinaryNotFound, target)
}
