package adaptcontent

import (
	"flag"
	"fmt"
)

// Parse parses command line arguments and returns the command to execute
// together with the resolved configuration.
func Parse(args []string) (Command, *Config, error) {
	flagSet := flag.NewFlagSet("adapt-content", flag.ContinueOnError)

	var (
		configPath = flagSet.String("config", "", "Path to YAML config file")
		port       = flagSet.String("port", "", "Server port (overrides config)")
		memory     = flagSet.Bool("memory", false, "Use the in-memory store instead of SurrealDB")
		logLevel   = flagSet.String("log-level", "", "Log level: trace, debug, info, warn, error")
	)

	if err := flagSet.Parse(args); err != nil {
		return nil, nil, err
	}

	config, err := LoadConfig(*configPath)
	if err != nil {
		return nil, nil, err
	}
	if *port != "" {
		config.Server.Port = *port
	}
	if *memory {
		config.Memory = true
	}
	if *logLevel != "" {
		config.Log.Level = *logLevel
	}

	remaining := flagSet.Args()
	if len(remaining) == 0 {
		return nil, nil, fmt.Errorf(`subcommand required

Usage: adapt-content [flags] <command>

Commands:
  run       Start the content API server
  migrate   Prepare the store backend

Examples:
  adapt-content run                     # serve against SurrealDB
  adapt-content -memory run             # serve with the in-memory store
  adapt-content -port=8090 run
  adapt-content -config=adapt.yaml migrate`)
	}

	var cmd Command
	switch remaining[0] {
	case "run":
		cmd = &RunCommand{}
	case "migrate":
		cmd = &MigrateCommand{}
	default:
		return nil, nil, fmt.Errorf("unknown command: %s", remaining[0])
	}
	return cmd, config, nil
}
