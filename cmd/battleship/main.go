package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"battleship/internal/app"
	"battleship/internal/codec"
	"battleship/internal/game"
	"battleship/internal/merkle"
	"battleship/internal/server"
	"battleship/internal/tui"
	"battleship/internal/zk"
)

func main() {
	cmd, args := "play", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "play":
		cmdPlay(args)
	case "serve":
		cmdServe(args)
	case "keys":
		cmdKeys(args)
	case "audit":
		cmdAudit(args)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Print(`Battleship (hot-seat)

Commands:
  play   [--ships N] [--delay 3s] [--keep] [--prove --keys ./keys --proofs DIR] [--log FILE] [--log-level info]
  serve  [--addr :8080] [--delay 3s] [--prove --keys ./keys] [--log-level info]
  keys   [--keys ./keys]
  audit  --proof shot.json [--keys ./keys] [--root ROOT_HEX]
` + "\n")
}

func newLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "battleship",
		Level:           lvl,
	})
}

// gameFlags registers the flags shared by play and serve.
func gameFlags(fs *flag.FlagSet, cfg *app.Config) {
	fs.DurationVar(&cfg.TurnDelay, "delay", cfg.TurnDelay, "pause before the turn passes")
	fs.DurationVar(&cfg.GameOverDelay, "over-delay", cfg.GameOverDelay, "pause before returning to ship selection")
	fs.BoolVar(&cfg.KeepShipCount, "keep", cfg.KeepShipCount, "preselect the previous ship count on a new game")
	fs.BoolVar(&cfg.ProveShots, "prove", cfg.ProveShots, "prove every shot against the defender's sealed fleet")
	fs.StringVar(&cfg.KeysDir, "keys", cfg.KeysDir, "keys directory")
}

func cmdPlay(args []string) {
	cfg := app.DefaultConfig()
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	gameFlags(fs, &cfg)
	ships := fs.Int("ships", 0, "start placement right away with N ships (1-5)")
	fs.StringVar(&cfg.ProofDir, "proofs", "", "write proven shots to this directory")
	logFile := fs.String("log", "", "log file (the terminal belongs to the game)")
	level := fs.String("log-level", "info", "debug, info, warn or error")
	_ = fs.Parse(args)

	var w io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal("open log file", "file", *logFile, "err", err)
		}
		defer f.Close()
		w = f
	}
	logger := newLogger(w, *level)

	ctrl, err := app.New(cfg, logger)
	if err != nil {
		log.Fatal("setup", "err", err)
	}
	if *ships != 0 {
		if err := ctrl.SelectCount(*ships); err != nil {
			log.Fatal("ships", "err", err)
		}
	}

	scr, err := tcell.NewScreen()
	if err != nil {
		log.Fatal("terminal", "err", err)
	}
	if err := scr.Init(); err != nil {
		log.Fatal("terminal", "err", err)
	}
	scr.EnableMouse()
	defer scr.Fini()

	if err := tui.New(scr, ctrl, logger).Run(); err != nil {
		logger.Error("ui stopped", "err", err)
	}
}

func cmdServe(args []string) {
	cfg := app.DefaultConfig()
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	gameFlags(fs, &cfg)
	addr := fs.String("addr", ":8080", "listen address")
	level := fs.String("log-level", "info", "debug, info, warn or error")
	_ = fs.Parse(args)

	logger := newLogger(os.Stderr, *level)
	ctrl, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("setup", "err", err)
	}

	srv := server.New(ctrl, logger)
	defer srv.Close()
	mux := http.NewServeMux()
	srv.Routes(mux)
	logger.Info("serving", "addr", *addr, "prove", cfg.ProveShots)
	if err := http.ListenAndServe(*addr, server.WithCORS(mux)); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen", "err", err)
	}
}

func cmdKeys(args []string) {
	fs := flag.NewFlagSet("keys", flag.ExitOnError)
	keys := fs.String("keys", "./keys", "keys directory")
	_ = fs.Parse(args)

	logger := newLogger(os.Stderr, "info")
	start := time.Now()
	if err := zk.EnsureShotKeys(*keys); err != nil {
		logger.Fatal("key setup", "err", err)
	}
	logger.Info("shot keys ready", "dir", *keys, "took", time.Since(start).Round(time.Millisecond))
}

func cmdAudit(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	keys := fs.String("keys", "./keys", "keys directory")
	proofPath := fs.String("proof", "", "proven shot json")
	rootHex := fs.String("root", "", "expected fleet root, 0x-prefixed")
	_ = fs.Parse(args)

	logger := newLogger(os.Stderr, "info")
	if *proofPath == "" {
		logger.Fatal("--proof required")
	}
	var p codec.ShotProofPayload
	if err := codec.LoadJSON(*proofPath, &p); err != nil {
		logger.Fatal("load proof", "file", *proofPath, "err", err)
	}
	if p.Public.Root == nil {
		logger.Fatal("proof has no root", "file", *proofPath)
	}
	if *rootHex != "" {
		want, err := merkle.ParseHex(*rootHex)
		if err != nil {
			logger.Fatal("root", "err", err)
		}
		if want.Cmp(p.Public.Root) != 0 {
			logger.Fatal("proof is for another fleet", "root", merkle.FormatHex(p.Public.Root))
		}
	}
	if err := zk.VerifyFile(zk.VKPath(*keys), p.Proof, p.Public); err != nil {
		logger.Fatal("invalid proof", "err", err)
	}

	at := game.Coord{Row: p.Public.Index / game.GridSize, Col: p.Public.Index % game.GridSize}
	result := game.OutcomeMiss
	if p.Public.Hit == 1 {
		result = game.OutcomeHit
	}
	logger.Info("proof valid", "game", p.Game, "attacker", p.Attacker, "target", at, "cell", result.Display())
	fmt.Println(result.Display())
}
