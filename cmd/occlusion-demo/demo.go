package main

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/occlusion/audio"
	"github.com/lixenwraith/occlusion/config"
	"github.com/lixenwraith/occlusion/constant"
	"github.com/lixenwraith/occlusion/vmath"
)

const (
	glyphListener = '@'
	glyphWall     = '#'
	glyphEmitter  = '*'

	helpText = "wasd/arrows move  space event  f filter  +/- volume  m music  q quit"
)

var (
	styleListener = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleWall     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleEmitter  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHelp     = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
)

// view maps world x/z onto terminal cells; -Z is up the screen
type view struct {
	centre        vmath.Vec3
	width, height int
	unitsPerCell  float64
}

// cell returns the terminal cell for p, ok is false when p is off the map
func (v view) cell(p vmath.Vec3) (col, row int, ok bool) {
	col = v.width/2 + int(math.Round((p.X-v.centre.X)/v.unitsPerCell))
	row = v.height/2 + int(math.Round((p.Z-v.centre.Z)/v.unitsPerCell))
	ok = col >= 0 && col < v.width && row >= 0 && row < v.height
	return col, row, ok
}

type demo struct {
	screen tcell.Screen
	audio  *audio.Audio

	listener vmath.Vec3
	emitter  vmath.Vec3
	wall     []vmath.Vec3 // World-space occluder vertices

	lastEvent string
}

func newDemo(cfg config.Config, a *audio.Audio) (*demo, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()

	return &demo{
		screen:  screen,
		audio:   a,
		emitter: cfg.Assets.Emitter,
		wall:    worldPolygon(cfg.Audio.Occluder),
	}, nil
}

// worldPolygon offsets geometry-local vertices by the occluder position
func worldPolygon(o audio.OccluderConfig) []vmath.Vec3 {
	out := make([]vmath.Vec3, len(o.Vertices))
	for i, v := range o.Vertices {
		out[i] = vmath.V3Add(o.Position, v)
	}
	return out
}

func (d *demo) run() {
	ticker := time.NewTicker(constant.FrameUpdateInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := d.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !d.handleInput(ev) {
				return
			}

		case <-ticker.C:
			d.audio.Update(d.listener)
			d.draw()
		}
	}
}

func (d *demo) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return d.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		d.screen.Sync()
	}
	return true
}

// handleKey applies one key press, returning false to quit
func (d *demo) handleKey(key tcell.Key, r rune) bool {
	step := constant.ListenerMoveStep

	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		d.move(0, -step)
	case tcell.KeyDown:
		d.move(0, step)
	case tcell.KeyLeft:
		d.move(-step, 0)
	case tcell.KeyRight:
		d.move(step, 0)
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case 'w':
			d.move(0, -step)
		case 's':
			d.move(0, step)
		case 'a':
			d.move(-step, 0)
		case 'd':
			d.move(step, 0)
		case ' ':
			d.report("event", d.audio.PlayEventSoundAt(d.emitter))
		case 'f':
			d.audio.ToggleMusicFilter()
		case '+', '=':
			d.audio.IncreaseMusicVolume()
		case '-', '_':
			d.audio.DecreaseMusicVolume()
		case 'm':
			d.report("music", d.audio.PlayMusicStream())
		}
	}
	return true
}

func (d *demo) move(dx, dz float64) {
	d.listener = vmath.V3Add(d.listener, vmath.Vec3{X: dx, Z: dz})
}

func (d *demo) report(what string, err error) {
	if err != nil {
		d.lastEvent = fmt.Sprintf("%s: %v", what, audio.KindOf(err))
		log.Printf("%s: %v", what, err)
		return
	}
	d.lastEvent = what + " played"
}

func (d *demo) draw() {
	d.screen.Clear()
	w, h := d.screen.Size()
	if h < 3 {
		d.screen.Show()
		return
	}

	v := view{
		centre:       vmath.V3Lerp(d.listener, d.emitter, 0.5),
		width:        w,
		height:       h - 2,
		unitsPerCell: constant.MapUnitsPerCell,
	}

	d.drawPolygon(v, d.wall)
	if col, row, ok := v.cell(d.emitter); ok {
		d.screen.SetContent(col, row, glyphEmitter, nil, styleEmitter)
	}
	if col, row, ok := v.cell(d.listener); ok {
		d.screen.SetContent(col, row, glyphListener, nil, styleListener)
	}

	d.drawText(0, h-2, d.statusLine(), styleStatus)
	d.drawText(0, h-1, helpText, styleHelp)
	d.screen.Show()
}

// drawPolygon plots the x/z footprint of every polygon edge
func (d *demo) drawPolygon(v view, verts []vmath.Vec3) {
	for i := range verts {
		a, b := verts[i], verts[(i+1)%len(verts)]
		steps := int(math.Ceil(2*math.Max(math.Abs(b.X-a.X), math.Abs(b.Z-a.Z))/v.unitsPerCell)) + 1
		for s := 0; s <= steps; s++ {
			p := vmath.V3Lerp(a, b, float64(s)/float64(steps))
			if col, row, ok := v.cell(p); ok {
				d.screen.SetContent(col, row, glyphWall, nil, styleWall)
			}
		}
	}
}

func (d *demo) statusLine() string {
	filter := "off"
	if d.audio.FilterEnabled() {
		filter = "on"
	}
	line := fmt.Sprintf("pos %.0f,%.0f  vol %.2f  filter %s", d.listener.X, d.listener.Z, d.audio.MusicVolume(), filter)

	if !d.audio.Initialised() {
		line += "  [no audio]"
	} else if st, ok := d.audio.Stats(); ok {
		line += fmt.Sprintf("  playing %d  ticks %d", st.Playing, st.Ticks)
	}
	if d.lastEvent != "" {
		line += "  " + d.lastEvent
	}
	return line
}

func (d *demo) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		d.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (d *demo) cleanup() {
	d.screen.Fini()
}
