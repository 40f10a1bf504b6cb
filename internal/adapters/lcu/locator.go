// Package lcu connects to the locally running game client: credential
// discovery from its lockfile, the authenticated REST channel and the
// event-socket subscription with automatic reconnection.
package lcu

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rcamargo/flexroom/pkg/logger"
)

const clientProcessName = "LeagueClient.exe"

// Credentials hold everything needed to reach the local control API. They
// are derived once per connection and replaced wholesale on reconnect.
type Credentials struct {
	Token     string // base64("riot:" + password), used as a Basic auth value
	BaseURL   string
	SocketURL string
}

// CredentialSource produces connection credentials. The locator implements
// it; tests substitute fakes.
type CredentialSource interface {
	Locate(ctx context.Context) (Credentials, error)
}

// ProcessProbe reports whether the game client process is running.
type ProcessProbe func(ctx context.Context) (bool, error)

// Locator finds the running game client and reads its lockfile. It is a
// one-shot synchronous probe; callers decide retry cadence.
type Locator struct {
	probe ProcessProbe
	paths []string
	log   logger.Logger
}

// NewLocator creates a locator with configuration options.
func NewLocator(opts ...LocatorOption) *Locator {
	l := &Locator{
		probe: defaultProcessProbe,
		paths: defaultLockfilePaths(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate verifies the client process is up, then scans candidate lockfile
// paths in order and builds credentials from the first readable one.
func (l *Locator) Locate(ctx context.Context) (Credentials, error) {
	running, err := l.probe(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %w", ErrProcessNotFound, err)
	}
	if !running {
		return Credentials{}, ErrProcessNotFound
	}

	for _, path := range l.paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			if l.log != nil {
				l.log.Warn(ctx, "lockfile unreadable", logger.String("path", path), logger.Error(err))
			}
			continue
		}
		creds, err := parseLockfile(string(data))
		if err != nil {
			return Credentials{}, err
		}
		if l.log != nil {
			l.log.Info(ctx, "lockfile found", logger.String("path", path))
		}
		return creds, nil
	}
	return Credentials{}, ErrLockfileMissing
}

// parseLockfile decodes the colon-delimited five-field record the client
// writes: process name, pid, port, password, transport scheme.
func parseLockfile(content string) (Credentials, error) {
	parts := strings.SplitN(strings.TrimSpace(content), ":", 5)
	if len(parts) != 5 {
		return Credentials{}, fmt.Errorf("%w: expected 5 fields, got %d", ErrLockfileUnreadable, len(parts))
	}
	port, err := strconv.Atoi(parts[2])
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: bad port %q", ErrLockfileUnreadable, parts[2])
	}
	password, scheme := parts[3], parts[4]

	return Credentials{
		Token:     base64.StdEncoding.EncodeToString([]byte("riot:" + password)),
		BaseURL:   fmt.Sprintf("%s://127.0.0.1:%d", scheme, port),
		SocketURL: fmt.Sprintf("wss://127.0.0.1:%d/", port),
	}, nil
}

func defaultLockfilePaths() []string {
	if runtime.GOOS == "windows" {
		paths := []string{
			`C:\Riot Games\League of Legends\lockfile`,
			`D:\Riot Games\League of Legends\lockfile`,
		}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			paths = append([]string{filepath.Join(local, "Riot Games", "League of Legends", "lockfile")}, paths...)
		}
		return paths
	}
	return []string{
		"/Applications/League of Legends.app/Contents/LoL/lockfile",
	}
}

func defaultProcessProbe(ctx context.Context) (bool, error) {
	if runtime.GOOS == "windows" {
		out, err := exec.CommandContext(ctx, "tasklist", "/fi", "imagename eq "+clientProcessName).Output()
		if err != nil {
			return false, fmt.Errorf("querying process list: %w", err)
		}
		return strings.Contains(string(out), clientProcessName), nil
	}
	// pgrep exits 1 when nothing matches; that is not an error here.
	err := exec.CommandContext(ctx, "pgrep", "-f", "LeagueClient").Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("querying process list: %w", err)
}
