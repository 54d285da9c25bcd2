// Command favicond resolves website favicons from the command line or over
// HTTP.
package main

import "github.com/raysh454/favicond/internal/cli"

func main() {
	cli.Execute()
}
