package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every runtime knob. Each flag can also be set through the
// environment with the KANJI_ prefix (e.g. KANJI_PORT=8080).
type Config struct {
	bind          string
	port          int
	dbPath        string
	wordsFile     string
	kanjiFile     string
	lobbyTTL      time.Duration
	sweepInterval time.Duration
	clientOrigin  string
	jwtSecret     string
	cookieName    string
	secureCookies bool
	logLevel      string
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.lobbyTTL > 0 && c.sweepInterval <= 0 {
		return fmt.Errorf("sweep-interval must be positive when lobby-ttl is set")
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("KANJI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "kanji-guesser",
		Short:         "Multiplayer kanji word-guessing game server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: KANJI_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: KANJI_PORT)")
	fs.StringVar(&cfg.dbPath, "db", "./data/app.db", "path to the sqlite database (env: KANJI_DB)")
	fs.StringVar(&cfg.wordsFile, "words-file", "", "path to the word dictionary CSV; embedded default if unset (env: KANJI_WORDS_FILE)")
	fs.StringVar(&cfg.kanjiFile, "kanji-file", "", "path to the kanji list CSV; embedded default if unset (env: KANJI_KANJI_FILE)")
	fs.DurationVar(&cfg.lobbyTTL, "lobby-ttl", 60*time.Minute, "idle time before lobbies are evicted, 0 disables (env: KANJI_LOBBY_TTL)")
	fs.DurationVar(&cfg.sweepInterval, "sweep-interval", 5*time.Minute, "how often idle lobbies are swept (env: KANJI_SWEEP_INTERVAL)")
	fs.StringVar(&cfg.clientOrigin, "client-origin", "http://localhost:5173", "browser client origin for CORS and join links (env: KANJI_CLIENT_ORIGIN)")
	fs.StringVar(&cfg.jwtSecret, "jwt-secret", "", "secret for signing auth tokens (env: KANJI_JWT_SECRET)")
	fs.StringVar(&cfg.cookieName, "cookie-name", "kanji_token", "name of the auth cookie (env: KANJI_COOKIE_NAME)")
	fs.BoolVar(&cfg.secureCookies, "secure-cookies", false, "set Secure on auth cookies, required behind https (env: KANJI_SECURE_COOKIES)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "zerolog level: trace|debug|info|warn|error (env: KANJI_LOG_LEVEL)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SilenceUsage = true

	return cmd
}
