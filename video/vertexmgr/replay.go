package vertexmgr

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"gxvideo/emu/log"
	"gxvideo/video/bp"
	"gxvideo/video/drawlist"
)

// Replay executes the commands of l, loading BP registers into regs, then
// submits the open pass.
func (m *Manager) Replay(ctx context.Context, regs *bp.Regs, l drawlist.List) error {
	for i, c := range l.Cmds {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch c.Kind {
		case drawlist.KindBP:
			regs.Load(c.BP)
			err = m.SetCullMode(regs.GenMode().CullMode())
		case drawlist.KindDraw:
			err = m.Draw(c.Prim, c.Count)
		case drawlist.KindIndexed:
			err = m.DrawIndexed(c.Prim.Class(), c.Indices, c.Count)
		default:
			err = fmt.Errorf("unexpected command kind %v", c.Kind)
		}
		if err != nil {
			return fmt.Errorf("%s: cmd %d: %w", l.Name, i, err)
		}
	}
	return m.Flush()
}

// Recorder is a Sink keeping a copy of every batch it receives.
type Recorder struct {
	Batches []Batch
}

func (r *Recorder) Submit(b Batch) error {
	b.Indices = slices.Clone(b.Indices)
	r.Batches = append(r.Batches, b)
	return nil
}

// Frame is the result of encoding a draw list.
type Frame struct {
	Name    string
	Batches []Batch
	Stats   Stats
}

// EncodeFrames replays each list as an independent frame, at most workers
// at a time (0 means one per CPU). Each frame gets its own registers,
// manager and index buffer. Frames are returned in the order of lists.
func EncodeFrames(ctx context.Context, cfg Config, lists []drawlist.List, workers int) ([]Frame, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	frames := make([]Frame, len(lists))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, l := range lists {
		g.Go(func() error {
			var regs bp.Regs
			regs.Reset()

			rec := &Recorder{}
			m, err := New(cfg, rec)
			if err != nil {
				return err
			}
			if err := m.Replay(ctx, &regs, l); err != nil {
				return err
			}

			frames[i] = Frame{Name: l.Name, Batches: rec.Batches, Stats: m.Stats()}
			log.ModVideo.DebugZ("frame encoded").
				String("name", l.Name).
				Int("batches", len(rec.Batches)).
				End()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}
