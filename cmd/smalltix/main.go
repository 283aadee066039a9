// smalltix - Smalltix runtime daemon.
//
// Reads line-oriented JSON send requests on stdin and writes one JSON
// response per request on stdout:
//
//	{"receiver":"point_ab12...","selector":"x","args":[]}
//	{"result":"int/3","exit_code":0}
//
// Receiver and argument tokens use the kind/value interchange form.
//
// Usage:
//
//	smalltix [-config DIR] [-db PATH] [-no-persist] [-debug] [-renderer ws://localhost:4000]
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jdjakub/smalltix/canvas"
	"github.com/jdjakub/smalltix/runtime"
)

// Request is one send from the driving client.
type Request struct {
	Receiver string   `json:"receiver"`
	Selector string   `json:"selector"`
	Args     []string `json:"args"`
}

// Response reports the send's result or failure.
type Response struct {
	Result   string `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
	ExitCode int    `json:"exit_code"`
}

func main() {
	configDir := flag.String("config", ".", "directory containing smalltix.toml")
	dbPath := flag.String("db", "", "sqlite database path (overrides config)")
	noPersist := flag.Bool("no-persist", false, "run with an in-memory store")
	debug := flag.Bool("debug", false, "enable debug logging")
	renderer := flag.String("renderer", "", "ws:// address of the canvas relay")
	flag.Parse()

	cfg, err := runtime.LoadConfig(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *noPersist {
		cfg.NoPersist = true
	}
	if *debug {
		cfg.Debug = true
	}
	if *renderer != "" {
		cfg.Renderer = *renderer
	}

	rt, err := runtime.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rt.Close()

	if err := rt.Store.LoadAll(); err != nil {
		rt.Logger().Warn("loading persisted entities", "error", err)
	}

	// The canvas class is present either way; without a relay it records
	// into memory so drawing methods still run.
	var emitter canvas.Emitter = canvas.NewRecorder()
	if cfg.Renderer != "" {
		sock, err := canvas.Dial(cfg.Renderer)
		if err != nil {
			rt.Logger().Warn("renderer unavailable, recording instead", "error", err)
		} else {
			defer sock.Close()
			emitter = sock
		}
	}
	if _, err := canvas.RegisterCanvasClass(rt, emitter); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	serve(rt, os.Stdin, os.Stdout)
}

func serve(rt *runtime.Runtime, in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			enc.Encode(Response{Error: "bad request: " + err.Error(), ExitCode: 1})
			continue
		}

		args := make([]runtime.Value, len(req.Args))
		for i, a := range req.Args {
			args[i] = runtime.ParseWire(a)
		}

		result, err := rt.SendRoot(runtime.ParseWire(req.Receiver), req.Selector, args...)
		if err != nil {
			enc.Encode(Response{Error: err.Error(), ExitCode: 1})
			continue
		}
		enc.Encode(Response{Result: result.Wire(), ExitCode: 0})
	}
}
