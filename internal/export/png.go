/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"mockboard/internal/geom"
)

var (
	background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	boxFill    = color.RGBA{R: 243, G: 244, B: 246, A: 255}
	boxStroke  = color.RGBA{R: 55, G: 65, B: 81, A: 255}
	titleColor = color.RGBA{R: 17, G: 24, B: 39, A: 255}
)

const (
	pngTitleHeight = 20
	// maxPNGSide caps either image dimension; larger content is scaled down to fit.
	maxPNGSide = 8192
)

// ScreenPNG renders one page as a PNG to w. Output pixels are canvas units scaled by
// DPI/96. Labels use a fixed 7x13 bitmap face and are clipped to their box.
func ScreenPNG(w io.Writer, pg Page, opt Options) error {
	img := renderPage(pg, opt)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ScreenPNGFiles writes one PNG per page into outDir, named <n>-<screen-name>.png,
// and returns the paths written.
func ScreenPNGFiles(outDir string, pages []Page, opt Options) ([]string, error) {
	if len(pages) == 0 {
		return nil, ErrNoScreens
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var written []string
	for i, pg := range pages {
		name := filepath.Join(outDir, fmt.Sprintf("%d-%s.png", i+1, slug(pg.Screen.Name)))
		f, err := os.Create(name)
		if err != nil {
			return written, fmt.Errorf("create png: %w", err)
		}
		if err := ScreenPNG(f, pg, opt); err != nil {
			_ = f.Close()
			return written, err
		}
		if err := f.Close(); err != nil {
			return written, fmt.Errorf("close png: %w", err)
		}
		written = append(written, name)
	}
	return written, nil
}

func renderPage(pg Page, opt Options) *image.RGBA {
	m := opt.margin()
	ext := pg.Extent()
	scale := pngScale(ext.W+2*m, ext.H+2*m, opt.dpi())
	px := func(v float64) int { return int(math.Round(v * scale)) }

	w := max(px(ext.W+2*m), 1)
	h := max(px(ext.H+2*m)+pngTitleHeight, pngTitleHeight+1)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	drawText(img, image.Rect(px(m), 0, w, pngTitleHeight), pg.Screen.Name, titleColor)

	oy := pngTitleHeight
	for _, e := range pg.Elements {
		r := geom.Bounds(e)
		box := image.Rect(px(m+r.X), oy+px(m+r.Y), px(m+r.X+r.W), oy+px(m+r.Y+r.H))
		draw.Draw(img, box, &image.Uniform{C: boxFill}, image.Point{}, draw.Src)
		strokeRect(img, box, boxStroke)
		drawText(img, box.Inset(labelPad), Label(e), boxStroke)
	}
	return img
}

// pngScale converts canvas units to pixels at dpi, reduced so the content fits within
// maxPNGSide on both axes.
func pngScale(w, h float64, dpi int) float64 {
	scale := float64(dpi) / defaultDPI
	if w*scale > maxPNGSide {
		scale = maxPNGSide / w
	}
	if h*scale > maxPNGSide-pngTitleHeight {
		scale = (maxPNGSide - pngTitleHeight) / h
	}
	return scale
}

// drawText draws s at the top-left of clip. Anything outside clip is cut off.
func drawText(img *image.RGBA, clip image.Rectangle, s string, col color.Color) {
	if clip.Empty() {
		return
	}
	dst, ok := img.SubImage(clip).(*image.RGBA)
	if !ok {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(clip.Min.X+2, clip.Min.Y+face.Ascent+2),
	}
	d.DrawString(s)
}

// strokeRect draws a 1px border along the inside edge of r.
func strokeRect(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, col)
		img.SetRGBA(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, col)
		img.SetRGBA(r.Max.X-1, y, col)
	}
}
