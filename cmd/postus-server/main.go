// Command postus-server is the NNTP Protocol Engine process entrypoint:
// it loads configuration, wires the Store/Identity/Policy collaborators,
// and runs the TCP accept loop until SIGINT/SIGTERM.
//
// Grounded on the teacher's cmd/nntp-server/main.go (flag parsing,
// waitgroup-coordinated shutdown, signal handling) and
// cmd/rslight-importer/main.go (go-cpu-mem-profiler flag wiring).
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	prof "github.com/go-while/go-cpu-mem-profiler"

	"github.com/go-while/postus/internal/config"
	"github.com/go-while/postus/internal/engine"
	"github.com/go-while/postus/internal/identity/bcryptidentity"
	"github.com/go-while/postus/internal/policy/patternpolicy"
	"github.com/go-while/postus/internal/server"
	"github.com/go-while/postus/internal/statusweb"
	"github.com/go-while/postus/internal/store"
	"github.com/go-while/postus/internal/store/memstore"
	"github.com/go-while/postus/internal/store/sqlitestore"
)

var (
	configPath string
	hostname   string
	port       int
	pprofhttp  string
)

func main() {
	flag.StringVar(&configPath, "config", "postus.json", "path to JSON configuration file")
	flag.StringVar(&hostname, "hostname", "", "server hostname override, used in Path headers and synthesized Message-IDs")
	flag.IntVar(&port, "port", 0, "NNTP TCP port override")
	flag.StringVar(&pprofhttp, "pprofhttp", "", "if set, serve pprof on this address (e.g. :51111)")
	flag.Parse()

	if pprofhttp != "" {
		p := prof.NewProf()
		go p.PprofWeb(pprofhttp)
		p.StartMemProfile(5*time.Minute, 30*time.Second)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("postus-server: %v", err)
	}
	if hostname != "" {
		cfg.Server.Hostname = hostname
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if cfg.Server.Hostname == "" {
		log.Fatalf("postus-server: hostname must be set (via -hostname or config)")
	}

	st, err := openStore(cfg.Database)
	if err != nil {
		log.Fatalf("postus-server: %v", err)
	}

	id, err := bcryptidentity.Open(cfg.Identity.Path, cfg.Server.Hostname)
	if err != nil {
		log.Fatalf("postus-server: identity: %v", err)
	}

	pol := patternpolicy.New(patternpolicy.Config{
		Send:            cfg.Policy.Send,
		Exclude:         cfg.Policy.Exclude,
		Reject:          cfg.Policy.Reject,
		PostingSubjects: cfg.Policy.PostingSubjects,
		IHaveSubjects:   cfg.Policy.IHaveSubjects,
	})

	stats := engine.NewServerStats()

	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		TLSPort:  cfg.Server.TLSPort,
		TLSCert:  cfg.Server.TLSCert,
		TLSKey:   cfg.Server.TLSKey,
		MaxConns: cfg.Server.MaxConns,
	}, st, id, pol, stats)

	if err := srv.Start(); err != nil {
		log.Fatalf("postus-server: %v", err)
	}
	log.Printf("postus-server: started as %s", cfg.Server.Hostname)

	if cfg.Status.Enabled {
		statusSrv := statusweb.New(st, stats)
		go func() {
			if err := statusSrv.Run(cfg.Status.ListenAddr); err != nil {
				log.Printf("postus-server: status surface stopped: %v", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("postus-server: shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Printf("postus-server: shutdown: %v", err)
	}
}

func openStore(cfg config.DatabaseConfig) (store.Store, error) {
	if cfg.Driver == "sqlite" {
		return sqlitestore.Open(cfg.Path)
	}
	return memstore.New(), nil
}
