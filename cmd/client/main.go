package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/client"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/fingerprint"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/logger"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
)

var (
	version   string
	buildDate string
)

// repl runs the interactive shell loop, accepting commands to inspect and
// annotate the budget history.
func repl(api *client.API) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("violet-vault> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, activity [n], recent <entityType> [n], history <entityType> [entityId], branches, tags, patterns [days], branch <name> <fromCommitHash>, tag <name> <commitHash> [type], switch <name>, exit")
		case "activity":
			limit := intArg(args, 1, 0)
			changes, err := api.RecentActivity(limit)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			printChanges(changes)
		case "recent":
			if len(args) < 2 {
				fmt.Println("Usage: recent <entityType> [n]")
				continue
			}
			changes, err := api.RecentChanges(args[1], intArg(args, 2, 0))
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			printChanges(changes)
		case "history":
			if len(args) < 2 {
				fmt.Println("Usage: history <entityType> [entityId]")
				continue
			}
			entityID := ""
			if len(args) > 2 {
				entityID = args[2]
			}
			changes, err := api.EntityHistory(args[1], entityID)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			printChanges(changes)
		case "branches":
			branches, err := api.Branches()
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			for _, b := range branches {
				marker := " "
				if b.IsActive {
					marker = "*"
				}
				fmt.Printf("%s %s -> %s\n", marker, b.Name, b.HeadCommitHash)
			}
		case "tags":
			tags, err := api.Tags()
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			for _, t := range tags {
				fmt.Printf("%s (%s) -> %s\n", t.Name, t.TagType, t.CommitHash)
			}
		case "patterns":
			days := intArg(args, 1, 0)
			patterns, err := api.ChangePatterns(time.Duration(days) * 24 * time.Hour)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			b, _ := json.MarshalIndent(patterns, "", "  ")
			fmt.Println(string(b))
		case "branch":
			if len(args) < 3 {
				fmt.Println("Usage: branch <name> <fromCommitHash>")
				continue
			}
			branch, err := api.CreateBranch(args[2], args[1], "")
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("Created branch %s from %s\n", branch.Name, branch.SourceCommitHash)
		case "tag":
			if len(args) < 3 {
				fmt.Println("Usage: tag <name> <commitHash> [type]")
				continue
			}
			tagType := ""
			if len(args) > 3 {
				tagType = args[3]
			}
			tag, err := api.CreateTag(args[2], args[1], "", tagType)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("Created %s tag %s at %s\n", tag.TagType, tag.Name, tag.CommitHash)
		case "switch":
			if len(args) < 2 {
				fmt.Println("Usage: switch <name>")
				continue
			}
			branch, err := api.SwitchBranch(args[1])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("Switched to branch %s\n", branch.Name)
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func printChanges(changes []models.Change) {
	if len(changes) == 0 {
		fmt.Println("No changes")
		return
	}
	for _, c := range changes {
		fmt.Printf("%s %s/%s [%s] %s\n", c.CommitHash, c.EntityType, c.EntityID, c.ChangeType, c.Description)
	}
}

func intArg(args []string, i, fallback int) int {
	if len(args) <= i {
		return fallback
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return fallback
	}
	return n
}

// main parses command-line flags and starts the interactive shell.
func main() {
	var (
		baseURL string
		author  string
		dataDir string
		showVer bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8090", "server base URL")
	flag.StringVar(&author, "author", "", "author name attached to requests")
	flag.StringVar(&dataDir, "data-dir", ".violet-vault", "directory for the device identity")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Violet Vault Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	log := logger.New()
	device := fingerprint.NewProvider(dataDir, log.Log)

	api := client.New(baseURL, author, device.Fingerprint())
	repl(api)
}
