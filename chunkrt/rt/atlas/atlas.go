package atlas

import (
	"image"
	"image/color"

	"github.com/gekko3d/voxstream/chunkrt/rt/core"

	"golang.org/x/image/draw"
)

// Grid is the number of tiles along each side of the atlas.
const Grid = 4

type Tile struct {
	X, Y uint8
}

// FaceTiles selects an atlas tile per cube face.
type FaceTiles [6]Tile

func (ft FaceTiles) For(f core.Face) Tile {
	return ft[f]
}

var (
	TileDirt      = Tile{0, 0}
	TileGrassSide = Tile{1, 0}
	TileGrassTop  = Tile{2, 0}
)

var dirt = FaceTiles{
	core.FaceFront:  TileGrassSide,
	core.FaceRight:  TileGrassSide,
	core.FaceBack:   TileGrassSide,
	core.FaceLeft:   TileGrassSide,
	core.FaceTop:    TileGrassTop,
	core.FaceBottom: TileDirt,
}

var blocks = map[core.BlockType]FaceTiles{
	core.Solid: dirt,
}

// Lookup returns the face tiles of a block type. Air has none.
func Lookup(b core.BlockType) (FaceTiles, bool) {
	ft, ok := blocks[b]
	return ft, ok
}

// UV maps a corner (u, v in [0,1] within the tile) to atlas coordinates.
func UV(t Tile, u, v float32) [2]float32 {
	return [2]float32{
		(float32(t.X) + u) / Grid,
		(float32(t.Y) + v) / Grid,
	}
}

var palette = map[Tile][2]color.RGBA{
	TileDirt:      {{134, 96, 67, 255}, {115, 82, 56, 255}},
	TileGrassSide: {{134, 96, 67, 255}, {95, 159, 53, 255}},
	TileGrassTop:  {{95, 159, 53, 255}, {76, 132, 41, 255}},
}

const patternSize = 4

// pattern is a small deterministic two-tone tile. Grass side tiles get a
// green top row.
func pattern(t Tile, colors [2]color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, patternSize, patternSize))
	for y := 0; y < patternSize; y++ {
		for x := 0; x < patternSize; x++ {
			c := colors[0]
			if (x*7+y*13+int(t.X)*3)%5 == 0 {
				c = colors[1]
			}
			if t == TileGrassSide {
				c = colors[0]
				if y == 0 {
					c = colors[1]
				}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// BuildImage renders the atlas with tilePixels pixels per tile side.
func BuildImage(tilePixels int) *image.RGBA {
	if tilePixels < patternSize {
		tilePixels = patternSize
	}
	size := tilePixels * Grid
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{255, 0, 255, 255}), image.Point{}, draw.Src)

	for t, colors := range palette {
		src := pattern(t, colors)
		r := image.Rect(
			int(t.X)*tilePixels, int(t.Y)*tilePixels,
			int(t.X+1)*tilePixels, int(t.Y+1)*tilePixels,
		)
		draw.NearestNeighbor.Scale(dst, r, src, src.Bounds(), draw.Src, nil)
	}
	return dst
}
