package adaptcontent

import (
	"context"
	"fmt"
)

// Main is the application entry point, separated from the main package so it
// can be exercised from tests.
func Main(ctx context.Context, args []string) error {
	cmd, config, err := Parse(args)
	if err != nil {
		return err
	}

	app, err := New(ctx, config)
	if err != nil {
		return err
	}
	defer app.Close()

	switch c := cmd.(type) {
	case *MigrateCommand:
		return app.Migrate(ctx, c)
	case *RunCommand:
		return app.Run(ctx, c)
	default:
		return fmt.Errorf("unknown command: %s", cmd.Name())
	}
}
