package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"writeq/internal/database"
	"writeq/internal/workers"
)

func main() {
	dbPath := flag.String("db", "", "database path (default: shared in-memory)")
	writes := flag.Int("n", 10000, "total number of writes")
	workerCount := flag.Int("workers", workers.ForIO(0), "number of producer goroutines")
	flag.Parse()

	if err := run(*dbPath, *writes, *workerCount); err != nil {
		fmt.Fprintf(os.Stderr, "writeq-bench: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath string, writes, workerCount int) error {
	if dbPath == "" {
		dbPath = database.SharedMemoryURI("writeq-bench")
	}

	dbc, err := database.NewContext(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbc.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "writeq-bench: close: %v\n", err)
		}
	}()

	w := database.NewSynchronousWriter()
	if err := dbc.QueueWrite(func(tx *sql.Tx) error {
		_, err := tx.Exec("CREATE TABLE IF NOT EXISTS bench (id INTEGER PRIMARY KEY, worker INTEGER, seq INTEGER)")
		return err
	}, w.Callback()); err != nil {
		return err
	}
	if err := w.Succeeded(); err != nil {
		return err
	}

	fmt.Printf("db=%s writes=%d workers=%d\n", dbc.Path(), writes, workerCount)

	var failed atomic.Int64
	var wg sync.WaitGroup

	perWorker := writes / workerCount
	start := time.Now()

	for worker := 0; worker < workerCount; worker++ {
		worker := worker
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seq := 0; seq < perWorker; seq++ {
				sw := database.NewSynchronousWriter()
				err := dbc.QueueWrite(func(tx *sql.Tx) error {
					_, err := tx.Exec("INSERT INTO bench (worker, seq) VALUES (?, ?)", worker, seq)
					return err
				}, sw.Callback())
				if err == nil {
					err = sw.Succeeded()
				}
				if err != nil {
					failed.Add(1)
				}
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	total := perWorker * workerCount
	fmt.Printf("committed %d writes in %s (%.0f writes/s, %d failed)\n",
		total-int(failed.Load()), elapsed.Round(time.Millisecond),
		float64(total)/elapsed.Seconds(), failed.Load())
	return nil
}
