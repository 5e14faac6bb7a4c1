/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Seednode/storyteller/dixit"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const maxPlayers = 8

var agentKinds = []string{"random", "lua", "openai"}

type Config struct {
	agent           string
	bind            string
	catalog         string
	decisionTimeout time.Duration
	handSize        int
	history         string
	images          string
	players         []string
	port            int
	prefix          string
	profile         bool
	script          string
	seed            uint64
	sessionTimeout  time.Duration
	syntheticCards  int
	thinkTime       time.Duration
	threshold       int
	tlsCert         string
	tlsKey          string
	turnDelay       time.Duration
	verbose         bool
	version         bool
}

// validate checks the options shared by every command that plays a game.
func (c *Config) validate() error {
	if len(c.players) < dixit.MinPlayers || len(c.players) > maxPlayers {
		return fmt.Errorf("invalid player count (must be between %d-%d inclusive): %d", dixit.MinPlayers, maxPlayers, len(c.players))
	}
	for i, name := range c.players {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("player %d has an empty name", i+1)
		}
		if slices.Index(c.players, name) != i {
			return fmt.Errorf("duplicate player name: %q", name)
		}
	}
	if c.handSize < 1 {
		return fmt.Errorf("invalid hand size (must be at least 1): %d", c.handSize)
	}
	if c.threshold < 1 {
		return fmt.Errorf("invalid threshold (must be at least 1): %d", c.threshold)
	}
	if !slices.Contains(agentKinds, c.agent) {
		return fmt.Errorf("invalid agent %q (must be one of %s)", c.agent, strings.Join(agentKinds, ", "))
	}
	if c.agent == "lua" && c.script == "" {
		return errors.New("--script is required for the lua agent")
	}
	if c.catalog != "" && c.images == "" {
		return errors.New("--images is required when --catalog is set")
	}
	if c.catalog == "" {
		need := len(c.players) * (c.handSize + 1)
		if c.syntheticCards < need {
			return fmt.Errorf("not enough synthetic cards for %d players with %d-card hands (need at least %d): %d",
				len(c.players), c.handSize, need, c.syntheticCards)
		}
	}
	if c.decisionTimeout < 0 || c.thinkTime < 0 || c.turnDelay < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// validateServer checks the options only the web server uses.
func (c *Config) validateServer() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func normalize(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// bindEnv fills any flag left unset on the command line from its
// STORYTELLER_* environment variable.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("STORYTELLER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "storyteller",
		Short:         "Plays the storyteller card game between bots, with a web page to watch along.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			if err := cfg.validateServer(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.SetNormalizeFunc(normalize)

	pfs.StringVarP(&cfg.agent, "agent", "a", "random", "decision strategy for every seat: random, lua, or openai (env: STORYTELLER_AGENT)")
	pfs.StringVar(&cfg.catalog, "catalog", "", "path to the card manifest (.json or .yaml); synthetic cards are used when empty (env: STORYTELLER_CATALOG)")
	pfs.DurationVar(&cfg.decisionTimeout, "decision-timeout", 0, "time before an agent decision is abandoned, 0 to wait forever (env: STORYTELLER_DECISION_TIMEOUT)")
	pfs.IntVar(&cfg.handSize, "hand-size", dixit.DefaultHandSize, "cards held by each player (env: STORYTELLER_HAND_SIZE)")
	pfs.StringVar(&cfg.history, "history", "", "path to a sqlite database recording every game (env: STORYTELLER_HISTORY)")
	pfs.StringVar(&cfg.images, "images", "", "directory of card images named <key>.<ext> (env: STORYTELLER_IMAGES)")
	pfs.StringSliceVar(&cfg.players, "players", []string{"Petr", "Jana", "Josef", "Pavel"}, "comma-separated player names, in seat order (env: STORYTELLER_PLAYERS)")
	pfs.StringVar(&cfg.script, "script", "", "lua script for the lua agent (env: STORYTELLER_SCRIPT)")
	pfs.Uint64Var(&cfg.seed, "seed", 0, "random seed, 0 for a fresh seed per game (env: STORYTELLER_SEED)")
	pfs.IntVar(&cfg.syntheticCards, "synthetic-cards", 84, "number of image-less cards to play with when no catalog is set (env: STORYTELLER_SYNTHETIC_CARDS)")
	pfs.DurationVar(&cfg.thinkTime, "think-time", 0, "maximum artificial delay added to each agent decision (env: STORYTELLER_THINK_TIME)")
	pfs.IntVar(&cfg.threshold, "threshold", dixit.DefaultThreshold, "score that ends the game (env: STORYTELLER_THRESHOLD)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: STORYTELLER_VERBOSE)")

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalize)

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: STORYTELLER_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: STORYTELLER_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: STORYTELLER_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: STORYTELLER_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle games are ended (env: STORYTELLER_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: STORYTELLER_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: STORYTELLER_TLS_KEY)")
	fs.DurationVar(&cfg.turnDelay, "turn-delay", 3*time.Second, "pause between turns while autoplaying (env: STORYTELLER_TURN_DELAY)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: STORYTELLER_VERSION)")

	bindEnv(v, pfs)
	bindEnv(v, fs)

	cmd.AddCommand(newSimulateCmd(cfg), newImportCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("storyteller v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
