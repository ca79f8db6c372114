package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/herohde/lucena/pkg/engine"
	"github.com/herohde/lucena/pkg/engine/uci"
	"github.com/seekerror/logw"
)

var (
	hash = flag.Int("hash", engine.DefaultHashMB, "Transposition table size in MB")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: lucena [options]

LUCENA is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	e := engine.New(ctx, "lucena", "herohde", engine.WithHash(*hash))

	in := readLines(ctx, os.Stdin)
	switch <-in {
	case uci.ProtocolName:
		// Use UCI protocol.

		driver, out := uci.NewDriver(ctx, e, in)
		go writeLines(ctx, os.Stdout, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}

// readLines pumps lines from the reader into a chan, closed on EOF. Async.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ret := make(chan string, 1)
	go func() {
		defer close(ret)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			logw.Debugf(ctx, "<< %v", scanner.Text())
			ret <- scanner.Text()
		}
	}()
	return ret
}

// writeLines drains the chan to the writer, one line at a time.
func writeLines(ctx context.Context, w io.Writer, out <-chan string) {
	for line := range out {
		logw.Debugf(ctx, ">> %v", line)
		_, _ = fmt.Fprintln(w, line)
	}
}
