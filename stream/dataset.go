package stream

import (
	"fmt"

	"github.com/fieldline/simio/chunk"
	"github.com/fieldline/simio/compress"
	"github.com/fieldline/simio/endian"
	"github.com/fieldline/simio/field"
	"github.com/fieldline/simio/internal/options"
	"github.com/fieldline/simio/selection"
)

// Dataset is an in-memory simulation dataset. It implements the handler's
// Dataset collaborator contract and owns the encoded payloads its grids
// and particle files reference.
type Dataset struct {
	engine    endian.EndianEngine
	codec     compress.Codec
	codecType compress.Type
	dtype     byte

	fieldInfo map[field.Field]field.Info
	unions    map[string][]string

	grids         []*Grid
	particleFiles map[*chunk.DataFile]*ParticleFile
}

// Option configures a Dataset.
type Option = options.Option[*Dataset]

// WithCompression selects the payload compression codec. The default is no
// compression.
func WithCompression(ct compress.Type) Option {
	return options.New(func(ds *Dataset) error {
		codec, err := compress.GetCodec(ct)
		if err != nil {
			return err
		}
		ds.codec = codec
		ds.codecType = ct

		return nil
	})
}

// WithFloat32Storage stores payload values as float32. Reads promote them
// back to float64.
func WithFloat32Storage() Option {
	return options.NoError(func(ds *Dataset) {
		ds.dtype = dtypeFloat32
	})
}

// NewDataset creates an empty stream dataset.
func NewDataset(opts ...Option) (*Dataset, error) {
	ds := &Dataset{
		engine:        endian.GetLittleEndianEngine(),
		codec:         compress.NewNoOpCompressor(),
		codecType:     compress.TypeNone,
		dtype:         dtypeFloat64,
		fieldInfo:     make(map[field.Field]field.Info),
		unions:        make(map[string][]string),
		particleFiles: make(map[*chunk.DataFile]*ParticleFile),
	}

	if err := options.Apply(ds, opts...); err != nil {
		return nil, err
	}

	return ds, nil
}

// FieldInfo implements handler.Dataset.
func (ds *Dataset) FieldInfo(f field.Field) (field.Info, bool) {
	info, ok := ds.fieldInfo[f]

	return info, ok
}

// ParticleUnions implements handler.Dataset.
func (ds *Dataset) ParticleUnions() map[string][]string {
	return ds.unions
}

// SetFieldInfo declares the metadata for a field.
func (ds *Dataset) SetFieldInfo(f field.Field, info field.Info) {
	ds.fieldInfo[f] = info
}

// AddUnion declares a particle-type union mapping a logical type to its
// concrete member types.
func (ds *Dataset) AddUnion(name string, members ...string) {
	ds.unions[name] = members
}

// Grids returns the dataset's grids in creation order.
func (ds *Dataset) Grids() []*Grid {
	return ds.grids
}

// AddGrid creates a grid object covering [left, right) with the given cell
// dimensions.
func (ds *Dataset) AddGrid(id int64, dims [3]int, left, right [3]float64) *Grid {
	g := &Grid{
		ds:    ds,
		id:    id,
		dims:  dims,
		left:  left,
		right: right,
		fluid: make(map[field.Field][]byte),
	}
	ds.grids = append(ds.grids, g)

	return g
}

// AddParticleFile creates a particle data file with the given sort key.
func (ds *Dataset) AddParticleFile(filename string, start int64) *ParticleFile {
	pf := &ParticleFile{
		ds: ds,
		df: &chunk.DataFile{
			Filename:       filename,
			Start:          start,
			TotalParticles: make(map[string]int64),
		},
		blocks: make(map[string]*particleBlock),
	}
	ds.particleFiles[pf.df] = pf

	return pf
}

// Grid is a stream grid object. It implements chunk.Object.
type Grid struct {
	ds *Dataset

	id       int64
	idOffset int64
	dims     [3]int
	left     [3]float64
	right    [3]float64

	backupPath string
	files      []*chunk.DataFile

	// fluid holds one encoded cell-major payload per field.
	fluid map[field.Field][]byte
}

var _ chunk.Object = (*Grid)(nil)

func (g *Grid) ID() int64 { return g.id }

func (g *Grid) IDOffset() int64 { return g.idOffset }

// SetIDOffset sets the offset subtracted from the grid id when naming its
// backup-archive group.
func (g *Grid) SetIDOffset(offset int64) { g.idOffset = offset }

func (g *Grid) BackupPath() string { return g.backupPath }

// SetBackupPath attaches a backup archive to this grid.
func (g *Grid) SetBackupPath(path string) { g.backupPath = path }

func (g *Grid) DataFiles() []*chunk.DataFile { return g.files }

// AttachParticleFile references a particle data file from this grid.
func (g *Grid) AttachParticleFile(pf *ParticleFile) {
	g.files = append(g.files, pf.df)
}

// Dims returns the grid's cell dimensions.
func (g *Grid) Dims() [3]int { return g.dims }

// NumCells returns the total cell count.
func (g *Grid) NumCells() int {
	return g.dims[0] * g.dims[1] * g.dims[2]
}

// CellCenter returns the center coordinate of cell (i, j, k).
func (g *Grid) CellCenter(i, j, k int) (x, y, z float64) {
	dx := (g.right[0] - g.left[0]) / float64(g.dims[0])
	dy := (g.right[1] - g.left[1]) / float64(g.dims[1])
	dz := (g.right[2] - g.left[2]) / float64(g.dims[2])

	return g.left[0] + (float64(i)+0.5)*dx,
		g.left[1] + (float64(j)+0.5)*dy,
		g.left[2] + (float64(k)+0.5)*dz
}

// SetFluidField stores the cell-major values of a fluid field on this
// grid. For a nodal field the values must carry NumNodes entries per cell.
func (g *Grid) SetFluidField(f field.Field, vals []float64) error {
	info := g.ds.fieldInfo[f]
	want := g.NumCells() * info.NumNodes()
	if len(vals) != want {
		return fmt.Errorf("field %s: got %d values, grid needs %d", f, len(vals), want)
	}

	payload, err := encodePayload(g.ds.engine, g.ds.codec, g.ds.dtype, vals)
	if err != nil {
		return err
	}
	g.fluid[f] = payload

	return nil
}

// Select mask-compacts the selected cells of src into dst starting at
// element index start, returning the number written. The selector predicate
// runs against cell centers.
func (g *Grid) Select(sel selection.Selector, src, dst *field.Array, start int) int {
	if sel.IsAllData() {
		n, err := dst.CopyRowsFrom(start, src)
		if err != nil {
			return 0
		}

		return n
	}

	ps, ok := sel.(selection.PointSelector)
	if !ok {
		return 0
	}

	written := 0
	cell := 0
	for i := range g.dims[0] {
		for j := range g.dims[1] {
			for k := range g.dims[2] {
				if cell >= src.Len() {
					return written
				}
				x, y, z := g.CellCenter(i, j, k)
				if ps.SelectPoint(x, y, z) {
					dst.SetRow(start+written, src.Row(cell))
					written++
				}
				cell++
			}
		}
	}

	return written
}

// CountSelectedCells returns the number of this grid's cells the selector
// accepts. Callers use it to precompute the exact fluid read size.
func (g *Grid) CountSelectedCells(sel selection.Selector) int {
	if sel.IsAllData() {
		return g.NumCells()
	}

	ps, ok := sel.(selection.PointSelector)
	if !ok {
		return 0
	}

	count := 0
	for i := range g.dims[0] {
		for j := range g.dims[1] {
			for k := range g.dims[2] {
				x, y, z := g.CellCenter(i, j, k)
				if ps.SelectPoint(x, y, z) {
					count++
				}
			}
		}
	}

	return count
}

// particleBlock holds one particle type's encoded payloads within a file.
type particleBlock struct {
	count     int
	x, y, z   []byte
	smoothing []byte // nil when the type has no smoothing length

	// fields maps a field name to its encoded payload and per-particle
	// element size.
	fields map[string]particleField
}

type particleField struct {
	payload  []byte
	elemSize int
}

// ParticleFile is a stream particle data file. Particles are grouped by
// concrete particle type.
type ParticleFile struct {
	ds     *Dataset
	df     *chunk.DataFile
	blocks map[string]*particleBlock
}

// DataFile returns the chunk-level data file handle.
func (pf *ParticleFile) DataFile() *chunk.DataFile { return pf.df }

// AddParticles stores the coordinates (and optional smoothing lengths) of
// one particle type. The file's per-type total is updated for the counting
// fast path.
func (pf *ParticleFile) AddParticles(ptype string, x, y, z, hsml []float64) error {
	if len(y) != len(x) || len(z) != len(x) {
		return fmt.Errorf("particle type %q: coordinate lengths differ", ptype)
	}
	if hsml != nil && len(hsml) != len(x) {
		return fmt.Errorf("particle type %q: smoothing length count differs", ptype)
	}
	if _, exists := pf.blocks[ptype]; exists {
		return fmt.Errorf("particle type %q already added to %s", ptype, pf.df.Filename)
	}

	block := &particleBlock{
		count:  len(x),
		fields: make(map[string]particleField),
	}

	var err error
	if block.x, err = encodePayload(pf.ds.engine, pf.ds.codec, pf.ds.dtype, x); err != nil {
		return err
	}
	if block.y, err = encodePayload(pf.ds.engine, pf.ds.codec, pf.ds.dtype, y); err != nil {
		return err
	}
	if block.z, err = encodePayload(pf.ds.engine, pf.ds.codec, pf.ds.dtype, z); err != nil {
		return err
	}
	if hsml != nil {
		if block.smoothing, err = encodePayload(pf.ds.engine, pf.ds.codec, pf.ds.dtype, hsml); err != nil {
			return err
		}
	}

	pf.blocks[ptype] = block
	pf.df.TotalParticles[ptype] += int64(len(x))

	return nil
}

// SetParticleField stores the values of one field for a particle type.
// vals must hold elemSize values per particle; elemSize 0 means scalar.
func (pf *ParticleFile) SetParticleField(ptype, name string, vals []float64, elemSize int) error {
	block, ok := pf.blocks[ptype]
	if !ok {
		return fmt.Errorf("particle type %q has no particles in %s", ptype, pf.df.Filename)
	}
	if elemSize <= 0 {
		elemSize = 1
	}
	if len(vals) != block.count*elemSize {
		return fmt.Errorf("field %q: got %d values, %d particles need %d",
			name, len(vals), block.count, block.count*elemSize)
	}

	payload, err := encodePayload(pf.ds.engine, pf.ds.codec, pf.ds.dtype, vals)
	if err != nil {
		return err
	}
	block.fields[name] = particleField{payload: payload, elemSize: elemSize}

	return nil
}
