// internal/gallery/placeholder.go
package gallery

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const placeholderLabel = "no image"

// ensurePlaceholderOriginal synthesizes the default placeholder original
// when it is missing, so the fallback URL never dead-ends on a fresh
// storage root. Derived placeholder versions are then produced by the
// normal lazy path.
func (g *VersionGenerator) ensurePlaceholderOriginal() error {
	const op = "gallery.ensurePlaceholderOriginal"

	target := g.paths.FilePath("", DefaultImageID, VersionOriginal)
	if _, err := os.Stat(target); err == nil {
		return nil
	}

	img, err := renderPlaceholder(640, 480)
	if err != nil {
		return fmt.Errorf("%s: %v", op, err)
	}

	g.createFolder(target)
	if err := imaging.Save(img, target, imaging.JPEGQuality(g.quality)); err != nil {
		return fmt.Errorf("%s: %v", op, err)
	}
	return nil
}

// renderPlaceholder draws a centered label on a flat gray canvas.
func renderPlaceholder(width, height int) (image.Image, error) {
	fnt, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}), image.Point{}, draw.Src)

	const fontSize = 48.0

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(fnt)
	ctx.SetFontSize(fontSize)
	ctx.SetClip(canvas.Bounds())
	ctx.SetDst(canvas)
	ctx.SetSrc(image.NewUniform(color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}))
	ctx.SetHinting(font.HintingFull)

	// Rough horizontal centering: goregular averages about half the point
	// size per glyph at this scale.
	textWidth := int(fontSize * float64(len(placeholderLabel)) / 2)
	pt := freetype.Pt((width-textWidth)/2, height/2+int(fontSize/2))
	if _, err := ctx.DrawString(placeholderLabel, pt); err != nil {
		return nil, err
	}

	return canvas, nil
}
