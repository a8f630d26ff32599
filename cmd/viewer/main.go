// Command viewer dumps the persisted chat collection as a table, read-only.
// Safe to run while the server holds the Badger lock.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"newsdesk/store"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=warn"`
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in read-only mode.
	// BypassLockGuard allows opening while the server process holds the lock.
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	messageStore := store.NewBadgerStore(db, logs.GetLoggerFromString(config.LogLevel))
	records, _, err := messageStore.Snapshot()
	if err != nil {
		log.Fatalf("Failed to read messages: %v", err)
	}

	color.Cyan.Printf("%d messages in store order\n", len(records))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"At", "Sender", "Text", "Hidden For"})
	table.SetAutoWrapText(false)
	for _, rec := range records {
		table.Append([]string{
			formatTimestamp(rec.Timestamp),
			fmt.Sprintf("%s (%.8s)", rec.SenderName, rec.SenderID),
			rec.Text,
			formatHiddenFor(rec.HiddenFor),
		})
	}
	table.Render()
}

func formatTimestamp(ts *time.Time) string {
	if ts == nil {
		return color.Yellow.Sprint("pending")
	}
	return ts.Format(time.RFC3339)
}

func formatHiddenFor(uids []string) string {
	if len(uids) == 0 {
		return "-"
	}
	short := make([]string, len(uids))
	for i, uid := range uids {
		if len(uid) > 8 {
			uid = uid[:8]
		}
		short[i] = uid
	}
	return color.Red.Sprint(strings.Join(short, ","))
}
