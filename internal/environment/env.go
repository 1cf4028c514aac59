package environment

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

const (
	EnvHome   = "HOME"
	EnvPath   = "PATH"
	EnvPWD    = "PWD"
	EnvOldPWD = "OLDPWD"
)

// Env is the process environment as seen by the shell: export writes it,
// $name substitution reads it before the shell-local variables, and external
// commands inherit it.
type Env interface {
	LookupEnv(key string) (string, bool)
	Getenv(key string) string
	Setenv(key, value string) error
	Environ() []string
}

// OSEnv is an Env backed by the real process environment.
type OSEnv struct{}

var _ Env = OSEnv{}

func (OSEnv) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }
func (OSEnv) Getenv(key string) string            { return os.Getenv(key) }
func (OSEnv) Setenv(key, value string) error      { return os.Setenv(key, value) }
func (OSEnv) Environ() []string                   { return os.Environ() }

// MapEnv is an in-memory Env. It is used to run a shell against an isolated
// environment.
type MapEnv struct {
	rw  sync.RWMutex
	env map[string]string
}

var _ Env = (*MapEnv)(nil)

func NewMapEnv() *MapEnv {
	return &MapEnv{env: make(map[string]string)}
}

// NewMapEnvFromEnvList builds a MapEnv from KEY=VALUE pairs such as the
// output of os.Environ.
func NewMapEnvFromEnvList(environ []string) *MapEnv {
	out := NewMapEnv()
	for _, e := range environ {
		key, value, _ := strings.Cut(e, "=")
		out.env[key] = value
	}
	return out
}

// LookupEnv implements Env.LookupEnv.
func (m *MapEnv) LookupEnv(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.env[key]
	return val, ok
}

// Getenv implements Env.Getenv.
func (m *MapEnv) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// Setenv implements Env.Setenv.
func (m *MapEnv) Setenv(key, value string) error {
	if key == "" || strings.ContainsAny(key, "=\x00") {
		return fmt.Errorf("setenv: invalid key %q", key)
	}

	m.rw.Lock()
	defer m.rw.Unlock()
	m.env[key] = value
	return nil
}

// Unsetenv removes key.
func (m *MapEnv) Unsetenv(key string) {
	m.rw.Lock()
	defer m.rw.Unlock()
	delete(m.env, key)
}

// Environ implements Env.Environ. Entries are sorted by key.
func (m *MapEnv) Environ() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	out := make([]string, 0, len(m.env))
	for k, v := range m.env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
