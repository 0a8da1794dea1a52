// Command sage is SAGE's entrypoint: a small flag-based dispatcher in the
// teacher's idiom (cmd/server/main.go has no CLI framework; neither does
// this tool) offering four subcommands: validate-yaml, process-package,
// validate-sender, and serve.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "validate-yaml":
		err = runValidateYAML(args)
	case "process-package":
		err = runProcessPackage(args)
	case "validate-sender":
		err = runValidateSender(args)
	case "serve":
		err = runServe(args)
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "sage: unknown command %q\n\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "sage %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `sage is SAGE's command-line entrypoint.

Usage:
  sage validate-yaml -dir <schema_dir>
  sage validate-sender -dir <schema_dir> -sender <sender_id> -package <package_name> -channel <channel>
  sage process-package -dir <schema_dir> -sender <sender_id> -package <package_name> -file <path>
  sage serve    (schema directory and server settings come from the environment, e.g. SCHEMA_DIR)`)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs
}
