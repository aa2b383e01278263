package artifact

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

// Layout of the ticket text block, as fractions of the template size.
const (
	imageStartX      = 0.20
	imageStartY      = 0.50
	imageLineSpacing = 40
)

// ImageRenderer draws the participant details onto a PNG (or JPEG) template
// and writes the result as PNG.
//
// The text block starts at 20% of the width and 50% of the height; each line
// is centred in the width remaining to the right of the start. The name line
// uses the title size, the others the detail size. When the font cannot be
// loaded a built-in bitmap face is used instead.
type ImageRenderer struct {
	FS     fs.FS
	Spec   config.ArtifactSpec
	Logger *slog.Logger

	once   sync.Once
	title  font.Face
	detail font.Face
}

// Render implements Renderer. A missing or undecodable template fails the
// render; nothing is written in that case.
func (r *ImageRenderer) Render(ctx context.Context, t Ticket) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	tmpl, err := r.loadTemplate()
	if err != nil {
		return Artifact{}, err
	}
	r.once.Do(r.loadFaces)

	canvas := image.NewRGBA(tmpl.Bounds())
	draw.Draw(canvas, canvas.Bounds(), tmpl, tmpl.Bounds().Min, draw.Src)

	name := "NAME: " + t.Participant.Name
	lines := []string{
		"Token: " + strconv.Itoa(t.Token),
		name,
		"ID NO.: " + t.Participant.Affiliation,
		"YEAR: " + t.Participant.Cohort,
	}

	b := canvas.Bounds()
	width, height := b.Dx(), b.Dy()
	startX := int(float64(width) * imageStartX)
	y := b.Min.Y + int(float64(height)*imageStartY)

	for _, line := range lines {
		face := r.detail
		if line == name {
			face = r.title
		}
		bounds, _ := font.BoundString(face, line)
		textWidth := (bounds.Max.X - bounds.Min.X).Ceil()
		textHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()
		x := b.Min.X + startX + (width-startX-textWidth)/2

		d := &font.Drawer{
			Dst:  canvas,
			Src:  image.White,
			Face: face,
			Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
		}
		d.DrawString(line)
		y += textHeight + imageLineSpacing
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return Artifact{}, fmt.Errorf("encode png: %w", err)
	}
	return write(r.FS, SpecPath(r.Spec, t.Participant.Name), buf.Bytes())
}

func (r *ImageRenderer) loadTemplate() (image.Image, error) {
	data, err := r.FS.ReadFile(r.Spec.Template)
	if err != nil {
		return nil, fmt.Errorf("read ticket template: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode ticket template %s: %w", r.Spec.Template, err)
	}
	return img, nil
}

func (r *ImageRenderer) loadFaces() {
	r.title, r.detail = basicfont.Face7x13, basicfont.Face7x13
	if r.Spec.Font == "" {
		return
	}

	title, detail, err := loadOpenTypeFaces(r.FS, r.Spec.Font, r.Spec.TitleSize, r.Spec.DetailSize)
	if err != nil {
		r.Logger.Warn("ticket font unavailable, using built-in face", "font", r.Spec.Font, "error", err)
		return
	}
	r.title, r.detail = title, detail
}

func loadOpenTypeFaces(fsys fs.FS, path string, titleSize, detailSize int) (font.Face, font.Face, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	title, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(titleSize), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, nil, err
	}
	detail, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(detailSize), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, nil, err
	}
	return title, detail, nil
}
