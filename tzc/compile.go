package tzc

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// CompileAll builds the timelines of every canonical zone in the
// database. Zones are independent, so they are compiled concurrently
// by cfg.Workers goroutines. The result maps canonical zone names to
// timelines; zones that fail are reported joined into one error, and
// do not suppress the zones that succeed.
func CompileAll(db *Database, cfg Config) (map[string]Timeline, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	zones := db.Zones()

	var (
		mu   sync.Mutex
		out  = make(map[string]Timeline, len(zones))
		errs []error
		wg   sync.WaitGroup
		jobs = make(chan string)
	)
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for zone := range jobs {
				tl, err := db.BuildTimeline(zone, cfg)
				mu.Lock()
				if err != nil {
					errs = append(errs, fmt.Errorf("zone %s: %w", zone, err))
				} else {
					out[zone] = tl
				}
				mu.Unlock()
			}
		}()
	}
	for _, zone := range zones {
		jobs <- zone
	}
	close(jobs)
	wg.Wait()

	// Workers finish in arbitrary order; sort for a stable report.
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return out, errors.Join(errs...)
}
