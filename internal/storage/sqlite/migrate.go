package sqlite

import (
	"os"
	"strings"
)

func (s *Sqlite) Migrate() error {
	return s.MigrateFile("sql/schema.sql")
}

func (s *Sqlite) MigrateFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	stmts := strings.Split(string(b), ";\n")

	for _, stmt := range stmts {
		st := strings.TrimSpace(stmt)
		if st == "" {
			continue
		}
		if _, err = s.Db.Exec(st); err != nil {
			return err
		}
	}
	return nil
}
