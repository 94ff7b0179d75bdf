// Command denorm stores declared tables in SQLite and keeps the
// denormalized columns of their targets consistent.
package main

import "github.com/mesh-intelligence/denormalize/internal/cli"

func main() {
	cli.Execute()
}
