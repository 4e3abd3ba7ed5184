package cli

import (
	"context"
	"flag"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/igolaizola/moodtunes/pkg/cmd/web"
	"github.com/igolaizola/moodtunes/pkg/openai"
	"github.com/igolaizola/moodtunes/pkg/spotify"
	"github.com/igolaizola/moodtunes/pkg/visitor"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/peterbourgon/ff/v3/ffyaml"
)

func New(version, commit, date string) *ffcli.Command {
	fs := flag.NewFlagSet("moodtunes", flag.ExitOnError)

	return &ffcli.Command{
		ShortUsage: "moodtunes [flags] <subcommand>",
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			newVersionCommand(version, commit, date),
			newServeCommand(),
		},
	}
}

func newVersionCommand(version, commit, date string) *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "moodtunes version",
		ShortHelp:  "print version",
		Exec: func(ctx context.Context, args []string) error {
			fmt.Println(versionString(version, commit, date))
			return nil
		},
	}
}

func versionString(version, commit, date string) string {
	v := version
	if v == "" {
		if buildInfo, ok := debug.ReadBuildInfo(); ok {
			v = buildInfo.Main.Version
		}
	}
	if v == "" || v == "(devel)" {
		v = "dev"
	}
	versionFields := []string{v}
	if commit != "" {
		versionFields = append(versionFields, commit)
	}
	if date != "" {
		versionFields = append(versionFields, date)
	}
	return strings.Join(versionFields, " ")
}

func newServeCommand() *ffcli.Command {
	cmd := "serve"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := &web.Config{}
	bindServeFlags(fs, cfg)

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("moodtunes %s [flags]", cmd),
		Options:    serveOptions(),
		ShortHelp:  "serve song recommendations over http",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			return web.Serve(ctx, cfg)
		},
	}
}

// serveOptions reads flags from the environment (openai-key from
// OPENAI_KEY) and from an optional yaml config file.
func serveOptions() []ff.Option {
	return []ff.Option{
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parser),
		ff.WithEnvVars(),
	}
}

func bindServeFlags(fs *flag.FlagSet, cfg *web.Config) {
	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")
	fs.StringVar(&cfg.LogFormat, "log-format", "json", "log format (json, console)")

	fs.StringVar(&cfg.Addr, "addr", ":3000", "address to listen on")
	fs.StringVar(&cfg.Public, "public", "public", "folder with static files")
	fs.DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "timeout for each external call")
	fs.IntVar(&cfg.Concurrency, "concurrency", 4, "number of concurrent spotify searches")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", openai.DefaultModel, "openai chat model")

	fs.StringVar(&cfg.OpenAIKey, "openai-key", "", "openai api key")
	fs.StringVar(&cfg.IPStackKey, "ipstack-key", "", "ipstack access key")
	fs.StringVar(&cfg.OpenWeatherKey, "openweather-key", "", "openweathermap api key")
	fs.StringVar(&cfg.SpotifyClientID, "spotify-client-id", "", "spotify client id")
	fs.StringVar(&cfg.SpotifyClientSecret, "spotify-client-secret", "", "spotify client secret")

	fs.StringVar(&cfg.IPifyURL, "ipify-url", visitor.DefaultIPifyURL, "ipify base url")
	fs.StringVar(&cfg.IPStackURL, "ipstack-url", visitor.DefaultIPStackURL, "ipstack base url")
	fs.StringVar(&cfg.WorldTimeURL, "worldtime-url", visitor.DefaultWorldTimeURL, "worldtimeapi base url")
	fs.StringVar(&cfg.OpenWeatherURL, "openweather-url", visitor.DefaultOpenWeatherURL, "openweathermap base url")
	fs.StringVar(&cfg.OpenAIURL, "openai-url", "", "openai base url (empty for the default)")
	fs.StringVar(&cfg.SpotifyAPIURL, "spotify-api-url", spotify.DefaultAPIURL, "spotify api base url")
	fs.StringVar(&cfg.SpotifyTokenURL, "spotify-token-url", spotify.DefaultTokenURL, "spotify token url")
}
