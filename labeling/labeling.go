// Package labeling splits run-length lines into 8-connected components.
package labeling

import (
	"github.com/LdDl/pvblob/blob"
)

// Pair is one labeled component: its lines sorted by (y, x0), the matching pixels
// (nil when the input had none) and encoding flags
type Pair struct {
	Lines      []blob.HorizontalLine
	Pixels     []byte
	Flags      blob.Flags
	Prediction blob.Prediction
}

// Blob wraps the component into a blob, handing over lines and pixels
func (pair Pair) Blob(options ...blob.Option) (*blob.Blob, error) {
	options = append([]blob.Option{blob.WithPrediction(pair.Prediction)}, options...)
	return blob.NewBlob(pair.Lines, pair.Pixels, pair.Flags, options...)
}

const noComponent = -1

// entry is one input line with the offset of its pixels and its component
type entry struct {
	line      blob.HorizontalLine
	offset    int
	component int32
}

// component lists indices of its entries in input order. Absorbed components keep no entries
type component struct {
	entries []int32
}

// ListCache holds scratch memory reused across Run calls.
// A cache must not be shared between goroutines.
type ListCache struct {
	entries    []entry
	components []component
	spare      [][]int32
	merged     []int32
}

func NewListCache() *ListCache {
	return &ListCache{}
}

func (cache *ListCache) reset() {
	cache.entries = cache.entries[:0]
	for i := range cache.components {
		if cap(cache.components[i].entries) > 0 {
			cache.spare = append(cache.spare, cache.components[i].entries[:0])
		}
		cache.components[i].entries = nil
	}
	cache.components = cache.components[:0]
}

func (cache *ListCache) newComponent(first int32) int32 {
	var entries []int32
	if n := len(cache.spare); n > 0 {
		entries = cache.spare[n-1]
		cache.spare = cache.spare[:n-1]
	}
	cache.components = append(cache.components, component{entries: append(entries, first)})
	id := int32(len(cache.components) - 1)
	cache.entries[first].component = id
	return id
}

func (cache *ListCache) attach(e int32, id int32) {
	cache.entries[e].component = id
	cache.components[id].entries = append(cache.components[id].entries, e)
}

// union moves the entries of the smaller component into the larger one and
// returns (survivor, absorbed)
func (cache *ListCache) union(a, b int32) (int32, int32) {
	if len(cache.components[a].entries) < len(cache.components[b].entries) {
		a, b = b, a
	}
	big, small := cache.components[a].entries, cache.components[b].entries
	merged := cache.merged[:0]
	i, j := 0, 0
	for i < len(big) && j < len(small) {
		if big[i] < small[j] {
			merged = append(merged, big[i])
			i++
		} else {
			merged = append(merged, small[j])
			j++
		}
	}
	merged = append(merged, big[i:]...)
	merged = append(merged, small[j:]...)

	// swap buffers so the survivor owns the merged list and big becomes scratch
	cache.components[a].entries = merged
	cache.merged = big[:0]
	cache.spare = append(cache.spare, small[:0])
	cache.components[b].entries = nil
	return a, b
}

// Run labels lines sorted by (y, x0) into 8-connected components. pixels holds
// channels bytes per covered pixel in line order, or is nil.
// The output order only depends on the input.
func Run(cache *ListCache, lines []blob.HorizontalLine, pixels []byte, channels int) []Pair {
	if len(lines) == 0 {
		return nil
	}
	if cache == nil {
		cache = NewListCache()
	}
	cache.reset()
	offset := 0
	for _, line := range lines {
		cache.entries = append(cache.entries, entry{line: line, offset: offset, component: noComponent})
		offset += line.Width() * channels
	}

	entries := cache.entries
	prevStart, prevEnd := 0, 0
	for curStart := 0; curStart < len(entries); {
		curEnd := curStart + 1
		for curEnd < len(entries) && entries[curEnd].line.Y == entries[curStart].line.Y {
			curEnd++
		}
		cache.mergeRows(prevStart, prevEnd, curStart, curEnd)
		prevStart, prevEnd = curStart, curEnd
		curStart = curEnd
	}
	return cache.collect(pixels, channels)
}

// mergeRows connects entries [cur, curEnd) of one row to entries [prev, prevEnd) of the row above
func (cache *ListCache) mergeRows(prev, prevEnd, cur, curEnd int) {
	entries := cache.entries
	rowStart := cur
	for cur < curEnd {
		c := entries[cur].line
		if prev >= prevEnd || int(c.Y) > int(entries[prev].line.Y)+1 || int(c.X1)+1 < int(entries[prev].line.X0) {
			if entries[cur].component == noComponent {
				cache.newComponent(int32(cur))
			}
			cur++
			continue
		}
		p := entries[prev].line
		if int(c.X0) > int(p.X1)+1 {
			prev++
			continue
		}

		// overlapping or diagonally touching
		prevID := entries[prev].component
		switch curID := entries[cur].component; {
		case curID == noComponent:
			cache.attach(int32(cur), prevID)
		case curID != prevID:
			survivor, absorbed := cache.union(curID, prevID)
			cache.relink(absorbed, survivor, prev, prevEnd, rowStart, curEnd)
		}

		if c.X1 <= p.X1 {
			cur++
		} else {
			prev++
		}
	}
}

// relink rewrites back-pointers from absorbed to survivor. Only the unvisited part of the
// previous row and the current row can still be consulted by the sweep.
func (cache *ListCache) relink(absorbed, survivor int32, prev, prevEnd, rowStart, curEnd int) {
	for i := prev; i < prevEnd; i++ {
		if cache.entries[i].component == absorbed {
			cache.entries[i].component = survivor
		}
	}
	for i := rowStart; i < curEnd; i++ {
		if cache.entries[i].component == absorbed {
			cache.entries[i].component = survivor
		}
	}
}

// collect builds one Pair per live component, fusing runs that touch on the same row
func (cache *ListCache) collect(pixels []byte, channels int) []Pair {
	flags := blob.FlagsForChannels(channels)
	if pixels == nil && channels > 0 {
		channels = 0
	}
	out := make([]Pair, 0, len(cache.components))
	for _, comp := range cache.components {
		if len(comp.entries) == 0 {
			continue
		}
		pair := Pair{
			Lines: blob.GetLineBuffer(len(comp.entries)),
			Flags: flags,
		}
		if channels > 0 {
			size := 0
			for _, e := range comp.entries {
				size += cache.entries[e].line.Width() * channels
			}
			pair.Pixels = make([]byte, 0, size)
		}
		for _, e := range comp.entries {
			it := cache.entries[e]
			last := len(pair.Lines) - 1
			if last >= 0 && pair.Lines[last].Y == it.line.Y && int(pair.Lines[last].X1)+1 == int(it.line.X0) {
				pair.Lines[last].X1 = it.line.X1
			} else {
				pair.Lines = append(pair.Lines, it.line)
			}
			if channels > 0 {
				pair.Pixels = append(pair.Pixels, pixels[it.offset:it.offset+it.line.Width()*channels]...)
			}
		}
		out = append(out, pair)
	}
	return out
}
