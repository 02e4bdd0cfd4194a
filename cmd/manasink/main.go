// Command manasink is a smoke-test harness for the library: it wires a
// full application context, initializes the state store against the
// configured backend, draws one random commander from the catalog,
// likes it and prints the resulting state.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tobeck/manasink"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	application, err := manasink.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init error: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if token := os.Getenv("MANASINK_TOKEN"); token != "" {
		if err = application.Session.SetToken(token); err != nil {
			application.Logger.Fatal().Err(err).Msg("invalid access token")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	application.Store.Initialize(ctx)

	commander, err := application.Catalog.RandomCommander(ctx, application.Store.Preferences().ColorFilters)
	if err != nil {
		application.Logger.Fatal().Err(err).Msg("failed to draw a commander")
	}
	fmt.Printf("Drew commander: %s (%s)\n", commander.Name, commander.TypeLine)

	application.Store.LikeCommander(ctx, commander)
	application.Store.Flush()

	fmt.Printf("Liked commanders: %d\n", len(application.Store.LikedCommanders()))
	fmt.Printf("Decks: %d\n", len(application.Store.Decks()))
	for _, n := range application.Store.Notifications() {
		fmt.Printf("[%s] %s\n", n.Type, n.Message)
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
