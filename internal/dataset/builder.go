// Package dataset merges extracted keypoint sequences with time-range
// annotations and flattens them into a CSV training set.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"github.com/andresmejia3/poseparser/internal/keypoints"
	"github.com/andresmejia3/poseparser/internal/pose"
	"github.com/cyclopcam/logs"
)

// Builder turns keypoint directories into dataset rows.
type Builder struct {
	Log          logs.Log
	Workers      int
	LabelledOnly bool
	Definitions  []pose.AngleDefinition
	Annotations  map[string]*AnnotationFile // keyed by video stem

	// OnSequence, if set, is called once per finished directory.
	OnSequence func(dir string)
}

// Stats summarises a build.
type Stats struct {
	Sequences int
	Skipped   int
	Rows      int
	Labelled  int
}

type buildTask struct {
	Index int
	Dir   string
}

type buildResult struct {
	Index    int
	Dir      string
	Records  [][]string
	Labelled int
	Err      error
}

// Build processes dirs concurrently and writes the CSV to w in dirs order.
// A directory whose sequence fails validation is skipped as a whole.
func (b *Builder) Build(ctx context.Context, dirs []string, w io.Writer) (Stats, error) {
	workers := b.Workers
	if workers < 1 {
		workers = 1
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header(b.Definitions)); err != nil {
		return Stats{}, err
	}

	tasks := make(chan buildTask, workers)
	results := make(chan buildResult, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				results <- b.process(t)
			}
		}()
	}

	go func() {
		defer close(tasks)
		for i, d := range dirs {
			select {
			case tasks <- buildTask{Index: i, Dir: d}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Buffer for re-ordering (a later directory may finish first)
	var stats Stats
	var writeErr error
	buffer := make(map[int]buildResult)
	next := 0
	for res := range results {
		buffer[res.Index] = res
		for {
			r, ok := buffer[next]
			if !ok {
				break
			}
			delete(buffer, next)
			next++

			if b.OnSequence != nil {
				b.OnSequence(r.Dir)
			}
			if r.Err != nil {
				b.Log.Warnf("Skipping %s: %v", r.Dir, r.Err)
				stats.Skipped++
				continue
			}
			stats.Sequences++
			stats.Labelled += r.Labelled
			if writeErr != nil {
				continue
			}
			if err := cw.WriteAll(r.Records); err != nil {
				writeErr = err
				continue
			}
			stats.Rows += len(r.Records)
		}
	}

	if writeErr != nil {
		return stats, fmt.Errorf("failed to write dataset: %w", writeErr)
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	cw.Flush()
	return stats, cw.Error()
}

func (b *Builder) process(t buildTask) buildResult {
	res := buildResult{Index: t.Index, Dir: t.Dir}

	raws, err := keypoints.ReadSequenceDir(t.Dir)
	if err != nil {
		res.Err = err
		return res
	}
	seq, err := pose.NewSequence(raws, pose.WithAngles(b.Definitions...))
	if err != nil {
		res.Err = err
		return res
	}

	stem := StemOf(t.Dir)
	ann := b.Annotations[stem]
	if ann == nil {
		b.Log.Debugf("No annotations for %s", stem)
	}

	for _, f := range seq.GenerateFrames() {
		rec, labelled := Record(f, ann, b.Definitions)
		if labelled {
			res.Labelled++
		} else if b.LabelledOnly {
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}
