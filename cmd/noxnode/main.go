// Command noxnode is a demo bootstrap for the connection pool: it loads
// configuration, builds a Driver and a websocket Transport, wires them
// together, optionally seeds and persists known addresses through an
// address book, and runs until an interrupt or terminate signal arrives.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DENNIS-CODES/nox/internal/addrbook"
	"github.com/DENNIS-CODES/nox/internal/wstransport"
	"github.com/DENNIS-CODES/nox/pkg/config"
	"github.com/DENNIS-CODES/nox/pkg/connpool"
	"github.com/DENNIS-CODES/nox/pkg/maddr"
	"github.com/DENNIS-CODES/nox/pkg/peerid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:  "noxnode",
		Usage: "run a connection pool node over a demo websocket transport",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML config file"},
			&cli.StringFlag{Name: "listen", Usage: "override the configured listen address"},
			&cli.StringFlag{Name: "peer", Usage: "bootstrap multiaddress to dial on startup"},
			&cli.StringFlag{Name: "addrbook", Usage: "path to a bbolt address book file; empty disables persistence"},
			&cli.BoolFlag{Name: "debug", Usage: "force debug-level logging"},
			&cli.BoolFlag{Name: "force-timestamp-logs", Usage: "emit timestamps even when not attached to a terminal"},
		},
		Action: runNode,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runNode(c *cli.Context) error {
	cfg := config.Config{P2P: config.Default()}
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if listen := c.String("listen"); listen != "" {
		cfg.P2P.ListenAddr = listen
	}

	log, err := buildLogger(c, cfg.Logger)
	if err != nil {
		return fmt.Errorf("noxnode: building logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	var book *addrbook.Book
	if path := c.String("addrbook"); path != "" {
		book, err = addrbook.Open(path)
		if err != nil {
			return fmt.Errorf("noxnode: opening address book: %w", err)
		}
		defer book.Close()
	}

	local := peerid.Random()
	log.Info("starting node", zap.String("peer_id", local.String()), zap.String("listen", cfg.P2P.ListenAddr))

	pool, driver := connpool.New(local, cfg.P2P, log, prometheus.DefaultRegisterer)
	transport := wstransport.New(cfg.P2P.ListenAddr, local, driver.Inbound(), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ignoreCanceled(driver.Run(gctx))
	})
	g.Go(func() error {
		return ignoreCanceled(transport.Run(gctx, driver.Actions(), driver.Events()))
	})

	if raw := c.String("peer"); raw != "" {
		addr, err := maddr.Parse(raw)
		if err != nil {
			return fmt.Errorf("noxnode: parsing --peer: %w", err)
		}
		g.Go(func() error {
			return bootstrapDial(gctx, *pool, book, addr, log)
		})
	}

	if book != nil {
		seedFromAddrBook(gctx, *pool, book, log)
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("noxnode: %w", err)
	}
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func bootstrapDial(ctx context.Context, pool connpool.Pool, book *addrbook.Book, addr maddr.Addr, log *zap.Logger) error {
	contact, err := pool.Dial(ctx, addr)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("bootstrap dial: %w", err)
	}
	if contact == nil {
		log.Warn("bootstrap dial did not establish a connection", zap.String("addr", addr.String()))
		return nil
	}
	log.Info("bootstrap dial established", zap.String("peer_id", contact.PeerID.String()))
	if book != nil {
		if err := book.Put(contact.PeerID, contact.Addresses); err != nil {
			log.Warn("failed to persist bootstrap contact", zap.Error(err))
		}
	}
	return nil
}

// seedFromAddrBook kicks off best-effort reconnection attempts to every
// peer recorded from a previous run. Failures are logged, never fatal:
// a stale address book entry is expected, not exceptional.
func seedFromAddrBook(ctx context.Context, pool connpool.Pool, book *addrbook.Book, log *zap.Logger) {
	known, err := book.All()
	if err != nil {
		log.Warn("failed to read address book", zap.Error(err))
		return
	}
	for peer, addrs := range known {
		peer, addrs := peer, addrs
		go func() {
			ok, err := pool.Connect(ctx, connpool.Contact{PeerID: peer, Addresses: addrs})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("seeded reconnect failed", zap.String("peer_id", peer.String()), zap.Error(err))
				return
			}
			if ok {
				log.Info("reconnected from address book", zap.String("peer_id", peer.String()))
			}
		}()
	}
}
