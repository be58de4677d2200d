// Command bugtracker tracks tickets, labels, projects and users stored as
// JSONL files in a local data directory.
package main

import "github.com/mesh-intelligence/bugtracker/internal/cli"

func main() {
	cli.Execute()
}
