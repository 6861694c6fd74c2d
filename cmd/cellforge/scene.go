package main

import (
	"fmt"

	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/parameter"
	"github.com/lixenwraith/cellforge/pixel"
	"github.com/lixenwraith/cellforge/render"
	"github.com/lixenwraith/cellforge/shape"
	"github.com/lixenwraith/cellforge/sprite"
	"github.com/lixenwraith/cellforge/transform"
)

var (
	colorNight = pixel.RGB(10, 12, 40)
	colorDusk  = pixel.RGB(70, 20, 60)
	colorTitle = pixel.RGB(240, 220, 160)

	// backdrop cells carry a concrete background so the gradient can repaint it
	backdropPixel = pixel.New(pixel.Empty, pixel.DefaultFg, colorNight, 0)
)

// scene is the demo: a gradient backdrop, a bouncing box-drawn frame, a
// blinking banner and a spinner, all sprites of one compositor
type scene struct {
	comp     *sprite.Compositor
	backdrop *shape.FullShape
	env      transform.Env

	box     sprite.Handle
	banner  sprite.Handle
	spinner sprite.Handle

	boxW, boxH int
	vx, vy     int
}

func newScene(width, height int) (*scene, error) {
	s := &scene{
		comp: sprite.NewCompositor(width, height),
		boxW: 12,
		boxH: 5,
		vx:   1,
		vy:   1,
	}

	s.backdrop = shape.NewFullFill(width, height, backdropPixel)
	s.backdrop.SetTransform(transform.Bind(transform.NewContainer(
		transform.Gradient([]transform.Stop{
			{Pos: 0, Color: colorNight},
			{Pos: 1, Color: colorDusk},
		}, transform.TopToBottom, transform.ChannelBackground),
	), &s.env))
	if err := s.writeTitle(); err != nil {
		return nil, err
	}
	s.comp.Add(s.backdrop, sprite.WithZ(0), sprite.WithPromotion(sprite.PromoteNone))

	// an outline of full blocks, baked once into box-drawing lines
	outline := shape.NewFull(s.boxW, s.boxH)
	block := pixel.New(pixel.FullBlock, colorTitle, pixel.DefaultBg, 0)
	if err := shape.DrawRect(outline, dirty.R(0, 0, s.boxW, s.boxH), block); err != nil {
		return nil, fmt.Errorf("box outline: %w", err)
	}
	box := shape.NewFull(s.boxW, s.boxH)
	if err := transform.Bake(transform.NewContainer(transform.BoxLight()), outline, box, transform.Env{}); err != nil {
		return nil, fmt.Errorf("box bake: %w", err)
	}
	if _, err := shape.WriteString(box, 2, 2, "cellforge", colorTitle, pixel.DefaultBg, pixel.EffectBold); err != nil {
		return nil, fmt.Errorf("box label: %w", err)
	}
	s.box = s.comp.Add(box,
		sprite.WithPos(1, 1),
		sprite.WithZ(10),
		sprite.WithTransformers(transform.Cycle(transform.Rainbow(12)...)),
	)

	banner := shape.NewFull(24, 1)
	if _, err := shape.WriteString(banner, 0, 0, " diff-rendered terminal ", colorTitle, pixel.DefaultBg, pixel.EffectUnderline); err != nil {
		return nil, fmt.Errorf("banner: %w", err)
	}
	s.banner = s.comp.Add(banner,
		sprite.WithPos(width/2, height-2),
		sprite.WithZ(20),
		sprite.WithAnchor(sprite.AnchorCenter),
		sprite.WithTransformers(transform.Flash(parameter.DemoFlashPeriod)),
	)

	frames := make([]shape.Shape, 0, 3)
	for _, g := range []string{"/", "-", "\\"} {
		frames = append(frames, shape.NewFullFill(1, 1, pixel.New(g, colorTitle, pixel.DefaultBg, pixel.EffectBold)))
	}
	first := shape.NewFullFill(1, 1, pixel.New("|", colorTitle, pixel.DefaultBg, pixel.EffectBold))
	s.spinner = s.comp.Add(first,
		sprite.WithPos(width-2, 0),
		sprite.WithZ(30),
		sprite.WithFrames(parameter.DemoSpinnerCycle, frames...),
	)

	return s, nil
}

func (s *scene) writeTitle() error {
	w, h := s.backdrop.Size()
	if h == 0 {
		return nil
	}
	title := "cellforge"
	if _, err := shape.WriteString(s.backdrop, max((w-len(title))/2, 0), 0, title, colorTitle, colorNight, pixel.EffectBold); err != nil {
		return fmt.Errorf("title: %w", err)
	}
	return nil
}

// Frame moves the box one cell per tick, bouncing off the edges
func (s *scene) Frame(rc render.RenderContext) {
	s.env.Tick = rc.Tick

	sp, ok := s.comp.Sprite(s.box)
	if !ok {
		return
	}
	x, y := sp.Pos()
	if x+s.vx < 0 || x+s.vx+s.boxW > rc.Width {
		s.vx = -s.vx
	}
	if y+s.vy < 0 || y+s.vy+s.boxH > rc.Height {
		s.vy = -s.vy
	}
	s.comp.Move(s.box, x+s.vx, y+s.vy)
}

// Resize fits the scene to a new output size
func (s *scene) Resize(width, height int) error {
	s.comp.Resize(width, height)
	s.backdrop.Resize(width, height)
	if err := shape.Fill(s.backdrop, backdropPixel); err != nil {
		return fmt.Errorf("backdrop: %w", err)
	}
	if err := s.writeTitle(); err != nil {
		return err
	}
	s.comp.Move(s.banner, width/2, height-2)
	s.comp.Move(s.spinner, width-2, 0)

	sp, ok := s.comp.Sprite(s.box)
	if !ok {
		return nil
	}
	x, y := sp.Pos()
	return s.comp.Move(s.box, min(x, max(width-s.boxW, 0)), min(y, max(height-s.boxH, 0)))
}
