// Command steamconv converts Steam account identifiers between their textual
// forms and serves the conversion over HTTP.
package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/corrreia/steamconv/internal/shared"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Debug bool `help:"Enable debug logging." env:"STEAMCONV_DEBUG"`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Convert ConvertCmd `cmd:"" help:"Convert identifiers to every representation."`
	Detect  DetectCmd  `cmd:"" help:"Print the detected kind of each identifier."`
	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API."`
	Version VersionCmd `cmd:"" help:"Print the version."`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("steamconv"),
		kong.Description("Steam identifier converter"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Bind(&cli.Globals),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logger, err := shared.NewLogger(cli.Debug)
	ctx.FatalIfErrorf(err)
	shared.SetLogger(logger)

	err = ctx.Run()
	logger.Sync()
	ctx.FatalIfErrorf(err)
}
