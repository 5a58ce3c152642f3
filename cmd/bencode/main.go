package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	bencode "github.com/multiversx/mx-bencode-go"
	"github.com/multiversx/mx-bencode-go/metainfo"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/urfave/cli"
)

var (
	bencodeHelpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}} command [arguments...]
   {{if len .Authors}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}{{end}}
COMMANDS:
   {{range .Commands}}{{.Name}} - {{.Usage}}
   {{end}}
VERSION:
   {{.Version}}
`
	logLevel = cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level pattern, for instance *:DEBUG",
		Value: "",
	}
	configurationFile = cli.StringFlag{
		Name:  "config",
		Usage: "Path to an optional TOML configuration file",
		Value: "",
	}

	log = logger.GetOrCreate("bencode/cmd")
	cfg = defaultConfig()
)

func main() {
	app := cli.NewApp()
	cli.AppHelpTemplate = bencodeHelpTemplate
	app.Name = "Bencode Tool"
	app.Version = "v1.0.0"
	app.Usage = "Decodes, encodes and inspects bencoded documents"
	app.Flags = []cli.Flag{logLevel, configurationFile}
	app.Before = setup
	app.Commands = []cli.Command{
		{
			Name:      "decode",
			Usage:     "Decode a bencoded document to JSON",
			ArgsUsage: "[file]",
			Action:    decodeDocument,
		},
		{
			Name:      "encode",
			Usage:     "Encode a JSON document to canonical bencode; numbers are rounded to integers",
			ArgsUsage: "[file]",
			Action:    encodeDocument,
		},
		{
			Name:      "dump",
			Usage:     "Dump the parsed value tree of a bencoded document",
			ArgsUsage: "[file]",
			Action:    dumpDocument,
		},
		{
			Name:      "torrent",
			Usage:     "Print a summary of a torrent metainfo file",
			ArgsUsage: "[file]",
			Action:    describeTorrent,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Error("cannot run application", "error", err)
		os.Exit(1)
	}
}

func setup(ctx *cli.Context) error {
	loaded, err := loadConfig(ctx.GlobalString(configurationFile.Name))
	if err != nil {
		return err
	}
	cfg = loaded

	level := ctx.GlobalString(logLevel.Name)
	if level == "" {
		level = cfg.LogLevel
	}

	return logger.SetLogLevel(level)
}

// readInput reads the document from the file argument, or from stdin when no
// argument is given.
func readInput(ctx *cli.Context) ([]byte, error) {
	if ctx.Args().Present() {
		return os.ReadFile(ctx.Args().First())
	}

	return io.ReadAll(os.Stdin)
}

func decodeDocument(ctx *cli.Context) error {
	data, err := readInput(ctx)
	if err != nil {
		return err
	}

	var decoded any
	err = bencode.Unmarshal(&decoded, data)
	if err != nil {
		return fmt.Errorf("cannot decode input: %w", err)
	}

	output, err := json.MarshalIndent(decoded, "", cfg.Indent)
	if err != nil {
		return err
	}

	fmt.Println(string(output))
	return nil
}

func encodeDocument(ctx *cli.Context) error {
	data, err := readInput(ctx)
	if err != nil {
		return err
	}

	var decoded any
	err = json.Unmarshal(data, &decoded)
	if err != nil {
		return fmt.Errorf("cannot parse input as JSON: %w", err)
	}

	encoded, err := bencode.Marshal(decoded)
	if err != nil {
		return fmt.Errorf("cannot encode input: %w", err)
	}

	_, err = os.Stdout.Write(encoded)
	return err
}

func dumpDocument(ctx *cli.Context) error {
	data, err := readInput(ctx)
	if err != nil {
		return err
	}

	parsed, err := bencode.ParseAll(data)
	if err != nil {
		return fmt.Errorf("cannot parse input: %w", err)
	}

	log.Debug("parsed document", "summary", parsed.String())

	printer := spew.ConfigState{
		Indent:                  cfg.Indent,
		SortKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Dump(parsed)

	return nil
}

func describeTorrent(ctx *cli.Context) error {
	data, err := readInput(ctx)
	if err != nil {
		return err
	}

	document, err := metainfo.Decode(data)
	if err != nil {
		return fmt.Errorf("cannot decode torrent file: %w", err)
	}

	fmt.Printf("announce:     %s\n", document.Announce)
	if document.Comment != "" {
		fmt.Printf("comment:      %s\n", document.Comment)
	}
	fmt.Printf("name:         %s\n", document.Info.Name)
	fmt.Printf("piece length: %d\n", document.Info.PieceLength)
	fmt.Printf("pieces:       %d\n", len(document.Info.Pieces)/20)

	if document.Info.IsSingleFile() {
		fmt.Printf("length:       %d\n", document.Info.Length)
		return nil
	}

	fmt.Printf("files:        %d\n", len(document.Info.Files))
	for _, file := range document.Info.Files {
		fmt.Printf("  %s (%d bytes)\n", file.Name, file.Length)
	}

	return nil
}
