// Command kineticdemo opens one or more Kinetic sessions from a YAML
// config and exposes their status over HTTP: flag-parsed config path,
// logrus text formatter, signal-driven shutdown, and a background HTTP
// server running alongside the core work.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"kinetic"
	"kinetic/internal/kineticcfg"
	"kinetic/internal/logging"
)

var Version = "0.1.0"

func main() {
	configPath := flag.String("config", "kineticdemo.yaml", "Path to config file")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := kineticcfg.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Infof("Starting kineticdemo v%s", Version)
	log.Infof("  %d configured peer(s)", len(cfg.Peers))
	log.Infof("  Status port: %d", cfg.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutting down...")
		cancel()
	}()

	sessions := make(map[string]*kinetic.Session, len(cfg.Peers))
	for _, p := range cfg.Peers {
		key, err := p.HMACKey()
		if err != nil {
			log.Errorf("Skipping peer %q: %v", p.Name, err)
			continue
		}

		sess := kinetic.NewSession(kinetic.SessionConfig{
			Host:           p.Host,
			Port:           p.Port,
			Identity:       p.Identity,
			HMACKey:        key,
			ClusterVersion: p.ClusterVersion,
			TimeoutSecs:    p.TimeoutSecs,
			UseSSL:         p.UseSSL,
			Logger:         logging.NewLogrus(),
		})

		if err := sess.Connect(); err != nil {
			log.Errorf("Peer %q: connect failed: %v", p.Name, err)
			continue
		}
		log.Infof("Peer %q: connected to %s:%d", p.Name, p.Host, p.Port)
		sessions[p.Name] = sess
	}

	defer func() {
		for name, sess := range sessions {
			if err := sess.Disconnect(); err != nil {
				log.Warnf("Peer %q: disconnect: %v", name, err)
			}
		}
	}()

	srv := newStatusServer(cfg.Server.Port, sessions, Version)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Status server error: %v", err)
	}
}
