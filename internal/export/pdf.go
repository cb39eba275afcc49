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
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"mockboard/internal/geom"
)

const (
	titleHeight = 28.0
	minPageW    = 320.0
	minPageH    = 200.0
)

// ScreenPDF writes one page per selected screen to w. With a named page size the
// content is scaled down to fit a landscape page; with "fit" each page is as large as
// its content. Canvas units map 1:1 to points.
func ScreenPDF(w io.Writer, pages []Page, opt Options) error {
	if len(pages) == 0 {
		return ErrNoScreens
	}
	size := strings.TrimSpace(opt.PageSize)
	fit := size == "" || strings.EqualFold(size, "fit")
	if fit {
		size = "A4"
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", SizeStr: size, OrientationStr: "L"})
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("page size %q: %w", opt.PageSize, err)
	}
	title := opt.Title
	if title == "" {
		title = "Dashboard wireframe"
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("Mockboard", false)
	pdf.SetAutoPageBreak(false, 0)

	m := opt.margin()
	for _, pg := range pages {
		ext := pg.Extent()
		scale := 1.0
		if fit {
			pdf.AddPageFormat("P", gofpdf.SizeType{
				Wd: math.Max(ext.W+2*m, minPageW),
				Ht: math.Max(ext.H+2*m+titleHeight, minPageH),
			})
		} else {
			pdf.AddPage()
			pw, ph := pdf.GetPageSize()
			if ext.W > 0 && ext.H > 0 {
				scale = math.Min(1, math.Min((pw-2*m)/ext.W, (ph-2*m-titleHeight)/ext.H))
			}
		}
		ox, oy := m, m+titleHeight

		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(17, 24, 39)
		pdf.Text(m, m+14, tr(pg.Screen.Name))

		pdf.SetLineWidth(0.75)
		pdf.SetDrawColor(55, 65, 81)
		pdf.SetFillColor(243, 244, 246)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(55, 65, 81)
		for _, e := range pg.Elements {
			r := geom.Bounds(e)
			x, y := ox+r.X*scale, oy+r.Y*scale
			bw, bh := r.W*scale, r.H*scale
			pdf.Rect(x, y, bw, bh, "FD")
			label := fitText(tr(Label(e)), bw-2*labelPad, pdf.GetStringWidth)
			if label != "" && bh > 9+labelPad {
				pdf.Text(x+labelPad, y+labelPad+8, label)
			}
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ScreenPDFFile is ScreenPDF into a file, creating its folder.
func ScreenPDFFile(outPath string, pages []Page, opt Options) error {
	var buf bytes.Buffer
	if err := ScreenPDF(&buf, pages, opt); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// fitText shortens s with a trailing "..." until measure(s) fits into width.
func fitText(s string, width float64, measure func(string) float64) string {
	if width <= 0 {
		return ""
	}
	if measure(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if c := string(r) + "..."; measure(c) <= width {
			return c
		}
	}
	return ""
}
