package adaptcontent

// Command is one runnable operation selected on the command line. Each
// implementation carries its own options; shared settings live in Config.
type Command interface {
	// Name returns the CLI sub-command identifier used for routing.
	Name() string
}

// RunCommand starts the HTTP server.
type RunCommand struct{}

func (c *RunCommand) Name() string { return "run" }

// MigrateCommand prepares the store backend (indexes for SurrealDB) and
// exits.
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string { return "migrate" }
