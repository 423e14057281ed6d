// Command lambok serves the catalog API, prints the builder demo and manages
// schema migrations.
//
//	lambok serve [--addr :8080]
//	lambok demo [--persist]
//	lambok migrate up|down [N]|version|force V|drop
package main

import (
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
