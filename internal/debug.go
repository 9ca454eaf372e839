package internal

import (
	"fmt"
	"groupchat/repositories"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
)

const inspectEndpoint = "/inspect"

// StartInspector exposes the badger keys on a local web page.
func StartInspector(log *slog.Logger, db *badger.DB, port int) {
	url := fmt.Sprintf("http://localhost:%d%s", port, inspectEndpoint)
	log.Info("Debug Badger inspector available", "url", url)
	database.StartDebugServer(db, port, inspectEndpoint, RecordMapper)
}

// RecordMapper decodes chat, message and user records for the inspector.
func RecordMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	kind, detail, err := repositories.DecodeRecord(key, val)
	if err != nil {
		row.Detail = "Error: decode failed"
		return row
	}
	row.Type = kind
	row.Detail = detail
	return row
}
