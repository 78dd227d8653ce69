package stream

import (
	"cmp"
	"slices"

	"github.com/gekko3d/voxstream/chunkrt/rt/core"
)

// Region lists the square of side 2r around center, covering
// [center-r, center+r) on both axes.
func Region(center core.ChunkCoord, r int32) []core.ChunkCoord {
	if r <= 0 {
		return nil
	}
	out := make([]core.ChunkCoord, 0, 4*int(r)*int(r))
	for dz := -r; dz < r; dz++ {
		for dx := -r; dx < r; dx++ {
			out = append(out, center.Add(dx, dz))
		}
	}
	return out
}

func regionSet(center core.ChunkCoord, r int32) map[core.ChunkCoord]struct{} {
	set := make(map[core.ChunkCoord]struct{}, 4*int(r)*int(r))
	for _, c := range Region(center, r) {
		set[c] = struct{}{}
	}
	return set
}

// Diff returns the chunks leaving and entering the loading window when its
// center moves. Loads are ordered nearest first.
func Diff(oldCenter, newCenter core.ChunkCoord, r int32) (unload, load []core.ChunkCoord) {
	return diffRegions(oldCenter, r, newCenter, r)
}

func diffRegions(oldCenter core.ChunkCoord, oldR int32, newCenter core.ChunkCoord, newR int32) (unload, load []core.ChunkCoord) {
	before := regionSet(oldCenter, oldR)
	after := regionSet(newCenter, newR)

	for c := range before {
		if _, ok := after[c]; !ok {
			unload = append(unload, c)
		}
	}
	for c := range after {
		if _, ok := before[c]; !ok {
			load = append(load, c)
		}
	}
	slices.SortFunc(unload, compareCoords)
	sortNearest(load, newCenter)
	return unload, load
}

func compareCoords(a, b core.ChunkCoord) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Z, b.Z)
}

func sortNearest(cs []core.ChunkCoord, center core.ChunkCoord) {
	slices.SortFunc(cs, func(a, b core.ChunkCoord) int {
		if c := cmp.Compare(a.DistanceSq(center), b.DistanceSq(center)); c != 0 {
			return c
		}
		return compareCoords(a, b)
	})
}
