package tiles

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"terrain-composer/internal/raster"
)

// ReadEXR loads a float32 heightfield from an EXR file. Multi-channel
// files (the R=G=B layout the DEM pipeline writes) collapse to their
// first channel.
func ReadEXR(path string) (*raster.Heightfield, error) {
	m := gocv.IMRead(path, gocv.IMReadAnyDepth|gocv.IMReadAnyColor)
	if m.Empty() {
		return nil, fmt.Errorf("reading EXR %s: decode failed", path)
	}
	defer m.Close()

	single := m
	if m.Channels() > 1 {
		chans := gocv.Split(m)
		for i := 1; i < len(chans); i++ {
			chans[i].Close()
		}
		single = chans[0]
		defer single.Close()
	}

	f32 := gocv.NewMat()
	defer f32.Close()
	single.ConvertTo(&f32, gocv.MatTypeCV32F)

	data, err := f32.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("reading EXR %s: %w", path, err)
	}
	hf := raster.NewHeightfield(f32.Cols(), f32.Rows())
	copy(hf.Pix, data)
	return hf, nil
}

// WriteEXR stores a heightfield as a 32-bit float EXR with R=G=B, the
// layout downstream terrain importers expect.
func WriteEXR(path string, hf *raster.Heightfield) error {
	m, err := matFromHeightfield(hf)
	if err != nil {
		return fmt.Errorf("writing EXR %s: %w", path, err)
	}
	defer m.Close()

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.Merge([]gocv.Mat{m, m, m}, &rgb)

	if ok := gocv.IMWrite(path, rgb); !ok {
		return fmt.Errorf("writing EXR %s: encode failed", path)
	}
	return nil
}

// resizeHeightfield rescales elevation data with area interpolation.
func resizeHeightfield(hf *raster.Heightfield, w, h int) (*raster.Heightfield, error) {
	if w == hf.Width && h == hf.Height {
		return hf, nil
	}
	m, err := matFromHeightfield(hf)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(m, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationArea)

	data, err := dst.DataPtrFloat32()
	if err != nil {
		return nil, err
	}
	out := raster.NewHeightfield(w, h)
	copy(out.Pix, data)
	return out, nil
}

func matFromHeightfield(hf *raster.Heightfield) (gocv.Mat, error) {
	m := gocv.NewMatWithSize(hf.Height, hf.Width, gocv.MatTypeCV32F)
	data, err := m.DataPtrFloat32()
	if err != nil {
		m.Close()
		return gocv.Mat{}, err
	}
	copy(data, hf.Pix)
	return m, nil
}
