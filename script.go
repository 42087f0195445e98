package scroll2d

import (
	"encoding/json"
	"fmt"
	"image"
)

// InjectPress queues a left button press at the given viewport position.
// Injected events are consumed one per Update, before real input.
func (e *Engine) InjectPress(x, y float64) {
	e.inject = append(e.inject, PointerEvent{X: x, Y: y, Action: PointerDown})
}

// InjectMove queues a pointer move.
func (e *Engine) InjectMove(x, y float64) {
	e.inject = append(e.inject, PointerEvent{X: x, Y: y, Action: PointerMove})
}

// InjectRelease queues a left button release.
func (e *Engine) InjectRelease(x, y float64) {
	e.inject = append(e.inject, PointerEvent{X: x, Y: y, Action: PointerUp})
}

// InjectClick queues a press followed by a release at the same position.
// Consumes two updates.
func (e *Engine) InjectClick(x, y float64) {
	e.InjectPress(x, y)
	e.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), moves interpolated over
// frames-2 updates and a release at (toX, toY). Minimum frames is 2.
func (e *Engine) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	frames = max(frames, 2)
	e.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		e.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	e.InjectRelease(toX, toY)
}

// Injecting reports whether injected events are still queued.
func (e *Engine) Injecting() bool { return len(e.inject) > 0 }

// processInjected feeds the next injected event to the gesture recognizer.
func (e *Engine) processInjected() {
	if e.script != nil {
		e.script.step(e)
	}
	if len(e.inject) == 0 {
		return
	}
	ev := e.inject[0]
	copy(e.inject, e.inject[1:])
	e.inject = e.inject[:len(e.inject)-1]
	e.HandlePointer(ev)
}

type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptShotFunc receives each screenshot taken by an InputScript.
type ScriptShotFunc func(label string, img *image.NRGBA)

// InputScript replays a JSON list of pointer gestures against an engine,
// one step per update. Supported actions are click, press, move, release,
// drag, hold, wheel, wait and screenshot. hold presses and waits frames
// updates without releasing.
type InputScript struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	onShot    ScriptShotFunc
}

// LoadInputScript parses a JSON input script.
func LoadInputScript(jsonData []byte) (*InputScript, error) {
	var f scriptFile
	if err := json.Unmarshal(jsonData, &f); err != nil {
		return nil, fmt.Errorf("scroll2d: parse input script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("scroll2d: parse input script: no steps")
	}
	return &InputScript{steps: f.Steps}, nil
}

// OnScreenshot sets the callback for screenshot steps.
func (s *InputScript) OnScreenshot(fn ScriptShotFunc) { s.onShot = fn }

// Done reports whether every step has run.
func (s *InputScript) Done() bool { return s.done }

// SetInputScript attaches a script to the engine. nil detaches it.
func (e *Engine) SetInputScript(s *InputScript) { e.script = s }

func (s *InputScript) step(e *Engine) {
	if s.done || len(e.inject) > 0 {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "click":
		e.InjectClick(st.X, st.Y)
	case "press":
		e.InjectPress(st.X, st.Y)
	case "move":
		e.InjectMove(st.X, st.Y)
	case "release":
		e.InjectRelease(st.X, st.Y)
	case "drag":
		e.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "hold":
		e.InjectPress(st.X, st.Y)
		s.waitCount = max(st.Frames, 1)
	case "wheel":
		e.HandleWheel(st.Delta)
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1
		}
	case "screenshot":
		label := st.Label
		err := e.TakeScreenshot(func(img *image.NRGBA, err error) {
			if err == nil && s.onShot != nil {
				s.onShot(label, img)
			}
		})
		if err != nil {
			e.log.WithError(err).Warn("script screenshot")
		}
	default:
		e.log.WithField("action", st.Action).Warn("unknown script action")
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 && len(e.inject) == 0 {
		s.done = true
	}
}
