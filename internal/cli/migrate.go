package cli

import "fmt"

// migrator is satisfied by the SQL-backed stores.
type migrator interface {
	Migrate() (int, error)
	SchemaVersion() (current, latest int, err error)
}

type MigrateCmd struct {
	Status bool `help:"Report pending migrations without applying them."`
}

func (c *MigrateCmd) Run(ctx *Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return fmt.Errorf("migrate command only supports SQL storage")
	}

	if c.Status {
		current, latest, err := m.SchemaVersion()
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Printf("Schema version: %d (latest %d)\n", current, latest)
		if current >= latest {
			fmt.Println("Database is up to date.")
		} else {
			fmt.Printf("%d migration(s) pending. Run 'daylap migrate' to apply.\n", latest-current)
		}
		return nil
	}

	count, err := m.Migrate()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
