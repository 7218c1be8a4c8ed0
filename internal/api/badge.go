package api

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/message"

	"github.com/lox/raincheck/internal/i18n"
	"github.com/lox/raincheck/internal/models"
)

// Badge dimensions. Text is drawn at half size and scaled up so the 7x13
// bitmap font stays legible.
const (
	BadgeWidth  = 600
	BadgeHeight = 200
	badgeScale  = 2
)

var (
	rainTop    = color.RGBA{30, 64, 120, 255}
	rainBottom = color.RGBA{14, 30, 60, 255}
	dryTop     = color.RGBA{196, 140, 40, 255}
	dryBottom  = color.RGBA{120, 80, 20, 255}
	white      = color.RGBA{255, 255, 255, 255}
	lightGray  = color.RGBA{220, 220, 220, 255}
)

func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	lang := requestLanguage(r)
	obs, err := parseValues(r.URL.Query(), s.clock.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	pred, err := s.classify(r.Context(), obs, "badge")
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := RenderBadge(i18n.Printer(lang), obs, pred)
	if err != nil {
		s.logger.Error("badge render failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// RenderBadge draws the prediction for obs as a PNG card.
func RenderBadge(printer *message.Printer, obs models.Observation, pred models.Prediction) ([]byte, error) {
	if printer == nil {
		return nil, errors.New("nil printer")
	}
	small := image.NewRGBA(image.Rect(0, 0, BadgeWidth/badgeScale, BadgeHeight/badgeScale))

	top, bottom := dryTop, dryBottom
	if pred.WillRain {
		top, bottom = rainTop, rainBottom
	}
	drawGradient(small, top, bottom)

	drawText(small, fmt.Sprintf("%s  %s", obs.Location, obs.Date().Format(time.DateOnly)), 12, 22, lightGray)
	drawText(small, printer.Sprintf("Tomorrow: %s", printer.Sprintf(pred.Text())), 12, 52, white)
	drawText(small, printer.Sprintf("Probability: %s%%", pred.Percent()), 12, 74, white)
	drawText(small, "raincheck", 12, 94, lightGray)

	dst := image.NewRGBA(image.Rect(0, 0, BadgeWidth, BadgeHeight))
	// Nearest-neighbour upscale.
	for y := 0; y < BadgeHeight; y++ {
		for x := 0; x < BadgeWidth; x++ {
			dst.SetRGBA(x, y, small.RGBAAt(x/badgeScale, y/badgeScale))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode badge: %w", err)
	}
	return buf.Bytes(), nil
}

// drawGradient fills img with a vertical blend from top to bottom.
func drawGradient(img *image.RGBA, top, bottom color.RGBA) {
	b := img.Bounds()
	h := b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		t := float64(y-b.Min.Y) / float64(h)
		c := color.RGBA{
			R: uint8(float64(top.R)*(1-t) + float64(bottom.R)*t),
			G: uint8(float64(top.G)*(1-t) + float64(bottom.G)*t),
			B: uint8(float64(top.B)*(1-t) + float64(bottom.B)*t),
			A: 255,
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
