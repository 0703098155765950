// Command chesscore-uci runs the search engine behind a UCI-like text
// protocol on stdin/stdout.
package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/ekmadsen/chesscore/internal/engine"
	"github.com/ekmadsen/chesscore/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	hashMB     = flag.Int("hash", 64, "transposition table size in MB")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	eng := engine.NewEngine(*hashMB)
	protocol := uci.New(eng)
	protocol.Run()
}
