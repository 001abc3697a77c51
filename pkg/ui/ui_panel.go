// Package ui provides the minimal immediate-mode widget set the
// simulation window needs: a scrollable panel of sliders, checkboxes and
// buttons drawn straight onto the ebiten screen.
package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is the common contract of everything a Panel can host.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	GetHeight() float64
}

// sliderWrapper adapts Slider to the Widget interface.
type sliderWrapper struct {
	*Slider
}

func (s *sliderWrapper) GetHeight() float64 {
	return s.H + 25 // slider height + label space
}

// checkboxWrapper adapts Checkbox to the Widget interface.
type checkboxWrapper struct {
	*Checkbox
}

func (c *checkboxWrapper) GetHeight() float64 {
	return c.Size + 5
}

// buttonWrapper adapts Button to the Widget interface.
type buttonWrapper struct {
	*Button
}

func (b *buttonWrapper) GetHeight() float64 {
	return b.Height + 8
}

// Panel manages a column of widgets grouped into titled sections, with
// mouse-wheel scrolling when the content exceeds the panel height.
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string
	Widgets       []Widget
	ScrollOffset  float64

	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []panelSection
}

type panelSection struct {
	Title      string
	StartIndex int
	EndIndex   int // exclusive
}

// NewPanel creates an empty panel at the given screen position.
func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       title,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// Contains reports whether the screen point lies inside the panel. The
// caller uses it to keep panel clicks from leaking into the world below.
func (p *Panel) Contains(x, y float64) bool {
	return x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+p.Height
}

// AddSection opens a titled section; widgets added afterwards belong to it
// until EndSection.
func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, panelSection{
		Title:      title,
		StartIndex: len(p.Widgets),
	})
}

// EndSection closes the current section.
func (p *Panel) EndSection() {
	if len(p.sections) > 0 {
		p.sections[len(p.sections)-1].EndIndex = len(p.Widgets)
	}
}

// AddSlider appends a slider to the panel and returns it so the caller can
// read its Value each frame.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	slider := NewSlider(
		p.X+10,
		p.Y+p.nextYOffset()+20,
		p.Width-20,
		label,
		min, max, value,
	)
	p.Widgets = append(p.Widgets, &sliderWrapper{slider})
	return slider
}

// AddCheckbox appends a checkbox to the panel.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	checkbox := NewCheckbox(
		p.X+10,
		p.Y+p.nextYOffset()+20,
		label,
		value,
	)
	p.Widgets = append(p.Widgets, &checkboxWrapper{checkbox})
	return checkbox
}

// AddButton appends a button to the panel.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	button := NewButton(
		p.X+10,
		p.Y+p.nextYOffset()+20,
		p.Width-20,
		22,
		label,
		onClick,
	)
	p.Widgets = append(p.Widgets, &buttonWrapper{button})
	return button
}

func (p *Panel) nextYOffset() float64 {
	offset := float64(len(p.sections)) * 25
	for _, widget := range p.Widgets {
		offset += widget.GetHeight()
	}
	return offset
}

// Update handles scrolling and forwards input to every widget.
func (p *Panel) Update() {
	_, dy := ebiten.Wheel()
	if dy != 0 {
		mx, my := ebiten.CursorPosition()
		if p.Contains(float64(mx), float64(my)) {
			p.ScrollOffset -= dy * 20
			maxScroll := p.totalHeight() - p.Height + 40
			if maxScroll < 0 {
				maxScroll = 0
			}
			if p.ScrollOffset < 0 {
				p.ScrollOffset = 0
			}
			if p.ScrollOffset > maxScroll {
				p.ScrollOffset = maxScroll
			}
		}
	}

	for _, widget := range p.Widgets {
		widget.Update()
	}
}

// Draw renders the panel chrome, section headers and visible widgets.
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)

	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	currentY := p.Y + 30 - p.ScrollOffset
	widgetIdx := 0

	for sectionIdx, section := range p.sections {
		if currentY >= p.Y-25 && currentY <= p.Y+p.Height {
			vector.FillRect(screen,
				float32(p.X+5), float32(currentY),
				float32(p.Width-10), 20,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, section.Title, int(p.X+10), int(currentY+5))
		}
		currentY += 25

		for widgetIdx < section.EndIndex && widgetIdx < len(p.Widgets) {
			widget := p.Widgets[widgetIdx]

			if currentY >= p.Y-30 && currentY <= p.Y+p.Height {
				ebitenutil.DebugPrintAt(screen, p.widgetLabel(widget), int(p.X+10), int(currentY))
				p.moveWidget(widget, currentY+15)
				widget.Draw(screen)
			}

			currentY += widget.GetHeight()
			widgetIdx++
		}

		if sectionIdx < len(p.sections)-1 {
			widgetIdx = p.sections[sectionIdx+1].StartIndex
		}
	}
}

// widgetLabel renders a slider's label with its live value; other widgets
// carry their label themselves.
func (p *Panel) widgetLabel(widget Widget) string {
	switch w := widget.(type) {
	case *sliderWrapper:
		return fmt.Sprintf("%s: %.3g", w.Label, w.Value)
	case *checkboxWrapper:
		return "    " + w.Label
	default:
		return ""
	}
}

// moveWidget repositions a widget for the current scroll offset before it
// draws itself.
func (p *Panel) moveWidget(widget Widget, newY float64) {
	switch w := widget.(type) {
	case *sliderWrapper:
		w.Y = newY
	case *checkboxWrapper:
		w.Y = newY - 15
	case *buttonWrapper:
		w.Y = newY
	}
}

func (p *Panel) totalHeight() float64 {
	height := 30.0
	height += float64(len(p.sections)) * 25
	for _, widget := range p.Widgets {
		height += widget.GetHeight()
	}
	return height
}
