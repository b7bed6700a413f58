package supercluster

// Flags values identifying each feature of a ClusterView or Tile.
const (
	// FlagPoint marks an unclustered source row.
	FlagPoint byte = 0
	// FlagCluster marks a merged cluster.
	FlagCluster byte = 1
)

// ClusterView holds query results as parallel buffers: feature i is
// described by Positions[2i], Positions[2i+1], Weights[i], IDs[i] and
// Flags[i]. For point features the id is the source row index and the
// position is the exact input coordinate; for clusters the id is the
// encoded cluster id and the position is the unprojected centroid.
type ClusterView struct {
	Positions []float64
	Weights   []uint32
	IDs       []int64
	Flags     []byte
	Count     int
}

func (v *ClusterView) reset() {
	v.Positions = v.Positions[:0]
	v.Weights = v.Weights[:0]
	v.IDs = v.IDs[:0]
	v.Flags = v.Flags[:0]
	v.Count = 0
}

func (v *ClusterView) push(lng, lat float64, weight uint32, id int64, flag byte) {
	v.Positions = append(v.Positions, lng, lat)
	v.Weights = append(v.Weights, weight)
	v.IDs = append(v.IDs, id)
	v.Flags = append(v.Flags, flag)
	v.Count++
}

// Clone returns a deep copy that stays valid after the source view's
// buffers are reused.
func (v *ClusterView) Clone() *ClusterView {
	out := &ClusterView{
		Positions: make([]float64, len(v.Positions)),
		Weights:   make([]uint32, len(v.Weights)),
		IDs:       make([]int64, len(v.IDs)),
		Flags:     make([]byte, len(v.Flags)),
		Count:     v.Count,
	}
	copy(out.Positions, v.Positions)
	copy(out.Weights, v.Weights)
	copy(out.IDs, v.IDs)
	copy(out.Flags, v.Flags)
	return out
}

// Tile holds one slippy-map tile's features with positions quantized to
// tile-local integer units. The remaining columns match ClusterView.
type Tile struct {
	Positions []int32
	Weights   []uint32
	IDs       []int64
	Flags     []byte
	Count     int
}
