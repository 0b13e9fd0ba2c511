package internal

import "github.com/petermattis/goid"

// affinity pins a world to the goroutine that created it.
type affinity struct {
	enabled bool
	gid     int64
}

func newAffinity(enabled bool) affinity {
	return affinity{enabled: enabled, gid: goid.Get()}
}

func (w *World) checkAffinity(op string) {
	if !w.affinity.enabled {
		return
	}

	if gid := goid.Get(); gid != w.affinity.gid {
		w.fatalf(ErrWrongGoroutine, "%s from goroutine %d, world belongs to %d", op, gid, w.affinity.gid)
	}
}
