// Command demoserver serves fixture sites with known favicon layouts.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/favicond/internal/demoserver"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("   favicond demo sites")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Each fixture is a virtual host under " + cfg.Domain + ".")
	fmt.Println("Map www.<name>." + cfg.Domain + " to this machine to resolve them.")
	fmt.Println()
	for _, s := range demoserver.GetAllSites() {
		fmt.Printf("  %-10s %s\n", s.Name, s.Description)
	}
	fmt.Println()

	server := demoserver.NewDemoServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
