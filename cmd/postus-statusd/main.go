// Command postus-statusd runs the read-only status/metrics HTTP surface
// (SPEC_FULL.md §6.8) standalone, against a Store it opens itself. Most
// deployments instead enable this surface embedded in postus-server via
// the "status.enabled" config field; this binary exists for operators
// who want the status surface on its own process/port.
package main

import (
	"flag"
	"log"

	"github.com/go-while/postus/internal/engine"
	"github.com/go-while/postus/internal/statusweb"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/store/memstore"
	"github.com/go-while/postus/internal/store/sqlitestore"
)

func main() {
	var (
		listenAddr = flag.String("listen", ":8780", "address to serve the status surface on")
		driver     = flag.String("driver", "memory", "store driver: memory or sqlite")
		dbPath     = flag.String("db", "data/postus.sq3", "sqlite store path (ignored for memory)")
	)
	flag.Parse()

	st, err := openStore(*driver, *dbPath)
	if err != nil {
		log.Fatalf("postus-statusd: %v", err)
	}

	// A standalone statusd has no engine of its own processing commands,
	// so its stats are necessarily all-zero beyond what the store holds;
	// it still reports real newsgroup/article counts.
	stats := engine.NewServerStats()

	srv := statusweb.New(st, stats)
	log.Printf("postus-statusd: listening on %s", *listenAddr)
	if err := srv.Run(*listenAddr); err != nil {
		log.Fatalf("postus-statusd: %v", err)
	}
}

func openStore(driver, path string) (store.Store, error) {
	if driver == "sqlite" {
		return sqlitestore.Open(path)
	}
	return memstore.New(), nil
}
