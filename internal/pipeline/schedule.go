package pipeline

// TileSpec is a manual GPU mapping for a rank-4 pixel stage: two
// dimensions are fused into one index, the fused index and one spatial
// dimension are tiled, tile indices map to GPU blocks and intra-tile
// indices map to GPU threads.
type TileSpec struct {
	FuseA   int // first fused dimension index
	FuseB   int // second fused dimension index
	TileDim int // spatial dimension tiled alongside the fused index
	TileW   int // tile extent over the fused index
	TileH   int // tile extent over TileDim
}

// Schedule carries the scheduling directives for a stage. The zero value
// is the engine's default schedule.
type Schedule struct {
	// Tiling, when non-nil, requests the tile/fuse/block/thread mapping
	// described by the TileSpec.
	Tiling *TileSpec

	// ComputeAt requests that this stage's producer be computed at this
	// stage's innermost granularity instead of materialized root-level.
	// Intermediate storage is chosen by the engine.
	ComputeAt bool
}

// IsDefault reports whether the schedule carries no directives.
func (s Schedule) IsDefault() bool {
	return s.Tiling == nil && !s.ComputeAt
}
