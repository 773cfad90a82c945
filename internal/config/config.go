// ABOUTME: Player configuration from defaults, .env file, environment and flags
// ABOUTME: Later sources override earlier ones; the result is validated
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Resonate-Protocol/ringplay/pkg/audio/output"
)

const (
	DefaultFile    = "Testing48kHz.wav"
	DefaultEnvFile = ".env"
	DefaultLogFile = "ringplay.log"
	DefaultBackend = "malgo"

	EnvPrefix = "RINGPLAY_"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds player settings
type Config struct {
	File         string
	Speed        float64
	Loop         bool
	Latency      float64
	SampleRate   int
	Buffer       time.Duration
	Backend      string
	Volume       int
	DrainTimeout time.Duration
	NoTUI        bool
	LogFile      string
	EnvFile      string
	ShowVersion  bool
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		File:         DefaultFile,
		Speed:        1.0,
		Loop:         true,
		Latency:      1.0 / 60.0,
		SampleRate:   44100,
		Buffer:       output.DefaultBufferDuration,
		Backend:      DefaultBackend,
		Volume:       100,
		DrainTimeout: output.DefaultBufferDuration,
		LogFile:      DefaultLogFile,
		EnvFile:      DefaultEnvFile,
	}
}

// Load builds a config from args (without the program name).
// Precedence: flags, then RINGPLAY_* environment, then the .env file, then defaults.
func Load(args []string) (Config, error) {
	cfg := Default()

	envFile, explicit := envFileArg(args)
	if envFile != "" {
		cfg.EnvFile = envFile
	}

	fileVars, err := readEnvFile(cfg.EnvFile, explicit)
	if err != nil {
		return cfg, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}

	fset := cfg.flagSet()
	fset.SetOutput(io.Discard)
	if err := fset.Parse(args); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if cfg.ShowVersion {
		return cfg, nil
	}
	return cfg, cfg.Validate()
}

// readEnvFile returns the variables in path. A missing default file is not an error.
func readEnvFile(path string, required bool) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("env file %s: %w", path, err)
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return vars, nil
}

// envFileArg finds -env in args before the full flag set exists
func envFileArg(args []string) (string, bool) {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if value, ok := strings.CutPrefix(name, "env="); ok {
			return value, true
		}
		if name == "env" && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	parse := func(key string, set func(string) error) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return
		}
		if err := set(v); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s%s=%q: %v", ErrInvalid, EnvPrefix, key, v, err))
		}
	}

	str("FILE", &cfg.File)
	str("BACKEND", &cfg.Backend)
	str("LOG_FILE", &cfg.LogFile)
	parse("SPEED", func(v string) (err error) { cfg.Speed, err = strconv.ParseFloat(v, 64); return })
	parse("LATENCY", func(v string) (err error) { cfg.Latency, err = strconv.ParseFloat(v, 64); return })
	parse("RATE", func(v string) (err error) { cfg.SampleRate, err = strconv.Atoi(v); return })
	parse("VOLUME", func(v string) (err error) { cfg.Volume, err = strconv.Atoi(v); return })
	parse("LOOP", func(v string) (err error) { cfg.Loop, err = strconv.ParseBool(v); return })
	parse("NO_TUI", func(v string) (err error) { cfg.NoTUI, err = strconv.ParseBool(v); return })
	parse("BUFFER", func(v string) (err error) { cfg.Buffer, err = time.ParseDuration(v); return })
	parse("DRAIN", func(v string) (err error) { cfg.DrainTimeout, err = time.ParseDuration(v); return })

	return errors.Join(errs...)
}

func (cfg *Config) flagSet() *flag.FlagSet {
	fset := flag.NewFlagSet("ringplay", flag.ContinueOnError)
	fset.StringVar(&cfg.File, "file", cfg.File, "WAV file to play")
	fset.Float64Var(&cfg.Speed, "speed", cfg.Speed, "Playback speed (negative plays backwards)")
	fset.BoolVar(&cfg.Loop, "loop", cfg.Loop, "Loop the clip")
	fset.Float64Var(&cfg.Latency, "latency", cfg.Latency, "Target ring padding as a fraction of its capacity")
	fset.IntVar(&cfg.SampleRate, "rate", cfg.SampleRate, "Output sample rate in Hz")
	fset.DurationVar(&cfg.Buffer, "buffer", cfg.Buffer, "Ring buffer duration")
	fset.StringVar(&cfg.Backend, "backend", cfg.Backend, "Output backend: "+strings.Join(output.Backends(), ", "))
	fset.IntVar(&cfg.Volume, "volume", cfg.Volume, "Volume (0-100)")
	fset.DurationVar(&cfg.DrainTimeout, "drain", cfg.DrainTimeout, "How long to let the tail of a non-looping clip play")
	fset.BoolVar(&cfg.NoTUI, "no-tui", cfg.NoTUI, "Disable TUI, use streaming logs instead")
	fset.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file path")
	fset.StringVar(&cfg.EnvFile, "env", cfg.EnvFile, "Optional .env file with RINGPLAY_* settings")
	fset.BoolVar(&cfg.ShowVersion, "version", false, "Print version and quit")
	return fset
}

// Usage writes flag help to w
func Usage(w io.Writer) {
	cfg := Default()
	fset := cfg.flagSet()
	fset.SetOutput(w)
	fset.PrintDefaults()
}

// Validate checks the settings are playable
func (cfg Config) Validate() error {
	var errs []error

	if cfg.File == "" {
		errs = append(errs, errors.New("file must be set"))
	}
	if cfg.Speed == 0 {
		errs = append(errs, errors.New("speed must not be 0"))
	}
	if !(cfg.Latency > 0 && cfg.Latency <= 1) {
		errs = append(errs, fmt.Errorf("latency %v outside (0, 1]", cfg.Latency))
	}
	if cfg.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("rate %d must be positive", cfg.SampleRate))
	}
	if cfg.Buffer <= 0 {
		errs = append(errs, fmt.Errorf("buffer %v must be positive", cfg.Buffer))
	}
	if cfg.Volume < 0 || cfg.Volume > 100 {
		errs = append(errs, fmt.Errorf("volume %d outside 0-100", cfg.Volume))
	}
	if cfg.DrainTimeout < 0 {
		errs = append(errs, fmt.Errorf("drain %v must not be negative", cfg.DrainTimeout))
	}
	if !knownBackend(cfg.Backend) {
		errs = append(errs, fmt.Errorf("unknown backend %q (available: %s)", cfg.Backend, strings.Join(output.Backends(), ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func knownBackend(name string) bool {
	for _, b := range output.Backends() {
		if b == name {
			return true
		}
	}
	return false
}
