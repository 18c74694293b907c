// Command edax-uci is a thin textual driver over the search façade,
// written to exercise internal/search, internal/book, internal/
// hashtable, internal/hashstore and internal/eval end-to-end (front
// ends are out of this module's scope per spec.md §1, but a minimal
// driver proves the pieces actually wire together).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/edaxgo/edax/internal/board"
	"github.com/edaxgo/edax/internal/book"
	"github.com/edaxgo/edax/internal/eval"
	"github.com/edaxgo/edax/internal/hashstore"
	"github.com/edaxgo/edax/internal/hashtable"
	"github.com/edaxgo/edax/internal/pool"
	"github.com/edaxgo/edax/internal/search"
)

var (
	hashBytes = flag.Int("hash", 64<<20, "transposition table size in bytes")
	workers   = flag.Int("workers", 4, "worker pool size for root-level YBWC splitting")
	weightsIn = flag.String("weights", "", "evaluation weight file (defaults to an all-zero table)")
	bookDir   = flag.String("book", "", "hashstore directory for opening-book lookups (defaults to the platform data dir)")
)

type engine struct {
	tt    *hashtable.Table
	store *hashstore.Store
	book  *book.HashStoreClient
	s     *search.Search
	b     board.Board
}

func newEngine() (*engine, error) {
	tt := hashtable.New(*hashBytes)

	var w *eval.Weights
	if *weightsIn != "" {
		loaded, err := eval.Load(*weightsIn)
		if err != nil {
			return nil, fmt.Errorf("loading weights: %w", err)
		}
		w = loaded
	} else {
		w = eval.NewZeroWeights()
	}

	var (
		store *hashstore.Store
		err   error
	)
	if *bookDir != "" {
		store, err = hashstore.Open(*bookDir)
	} else {
		store, err = hashstore.OpenDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("opening book store: %w", err)
	}
	if _, err := store.FeedInto(tt); err != nil {
		log.Printf("warning: could not feed hash store into table: %v", err)
	}

	p := pool.New(*workers)
	s := search.New(tt, w, p)
	s.SetBoard(board.NewBoard())

	e := &engine{
		tt:    tt,
		store: store,
		book:  book.NewHashStoreClient(store),
		s:     s,
		b:     board.NewBoard(),
	}
	return e, nil
}

func (e *engine) close() {
	if _, err := e.store.SaveSnapshot(e.tt); err != nil {
		log.Printf("warning: could not save hash snapshot: %v", err)
	}
	e.store.Close()
}

func (e *engine) setPosition(s string) error {
	b, err := board.SetString(s)
	if err != nil {
		return err
	}
	e.b = b
	e.s.SetBoard(b)
	return nil
}

func (e *engine) go_(level int, budget time.Duration) {
	if mv, ok := e.book.Lookup(e.b); ok {
		fmt.Printf("bestmove %s (book)\n", mv)
		return
	}
	e.s.SetLevel(level)
	e.s.SetObserver(observerFunc(func(depth, selectivity, score int, best board.Square, nodes int64, elapsed time.Duration) {
		fmt.Printf("info depth %d sel %d score %d nodes %d time %s pv %s\n",
			depth, selectivity, score, nodes, elapsed.Round(time.Millisecond), best)
	}))
	move, score := e.s.Run(context.Background(), budget)
	fmt.Printf("bestmove %s score %d\n", move, score)
}

type observerFunc func(depth, selectivity, score int, best board.Square, nodes int64, elapsed time.Duration)

func (f observerFunc) OnIteration(depth, selectivity, score int, best board.Square, nodes int64, elapsed time.Duration) {
	f(depth, selectivity, score, best, nodes, elapsed)
}

func main() {
	flag.Parse()

	e, err := newEngine()
	if err != nil {
		log.Fatalf("edax-uci: %v", err)
	}
	defer e.close()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "quit", "exit":
			return
		case "position":
			if len(fields) < 2 {
				fmt.Println("error: position requires a board string")
				continue
			}
			rest := strings.Join(fields[1:], " ")
			if err := e.setPosition(rest); err != nil {
				fmt.Printf("error: %v\n", err)
			}
		case "go":
			level := 10
			budget := 5 * time.Second
			if len(fields) > 1 {
				if v, err := strconv.Atoi(fields[1]); err == nil {
					level = v
				}
			}
			if len(fields) > 2 {
				if secs, err := strconv.Atoi(fields[2]); err == nil {
					budget = time.Duration(secs) * time.Second
				}
			}
			e.go_(level, budget)
		case "stop":
			e.s.Stop()
		default:
			fmt.Printf("error: unknown command %q\n", fields[0])
		}
	}
}
