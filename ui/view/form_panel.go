package view

import (
	"log/slog"
	"strings"

	"github.com/Fettser/diplom-deploy/domain/acquisition"
	"github.com/Fettser/diplom-deploy/domain/restore"
	"github.com/Fettser/diplom-deploy/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// FormHandlers are the operator actions raised by the form panel.
type FormHandlers struct {
	OpenFile   func()
	GrabScreen func()
	PickRegion func()
	Remove     func()
	ToggleMask func(enabled bool)
	Radius     func(text string)
	Submit     func()
}

// FormPanel owns the acquisition widgets: file controls, the optical
// parameter fields, the mask controls and the submit button.
type FormPanel interface {
	Build(parent *FrameWidget, startRow int, h FormHandlers) (endRow int)
	Params() acquisition.Params
	SetFileName(name string)
	SetDimensions(text string)
	SetMaskControls(available, enabled bool)
	SetRadiusText(text string)
	SetSubmitEnabled(enabled bool)
	SetCaptureStatus(text string)
}

type formPanel struct {
	logger *slog.Logger

	fileLbl    *LabelWidget
	dimsLbl    *LabelWidget
	captureLbl *LabelWidget
	removeBtn  *TButtonWidget
	maskBtn    *ButtonWidget
	radiusLbl  *LabelWidget
	radius     *TextWidget
	submitBtn  *TButtonWidget
	fields     map[string]*TextWidget // keyed by multipart field name

	parent      *FrameWidget
	radiusRow   int
	maskEnabled bool
	radiusShown bool
}

// NewFormPanel creates the panel; widgets are made by Build.
func NewFormPanel(logger *slog.Logger) FormPanel {
	return &formPanel{logger: logger, fields: make(map[string]*TextWidget)}
}

func (v *formPanel) Build(parent *FrameWidget, startRow int, h FormHandlers) (row int) {
	v.parent = parent
	row = startRow

	files := Frame()
	Grid(files, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Pady("0.3m"))
	Grid(Button(Txt("Open image..."), Command(call(h.OpenFile))), In(files), Row(0), Column(0), Sticky("we"), Padx("0.2m"))
	Grid(Button(Txt("Grab screen"), Command(call(h.GrabScreen))), In(files), Row(0), Column(1), Sticky("we"), Padx("0.2m"))
	Grid(Button(Txt("Region..."), Command(call(h.PickRegion))), In(files), Row(0), Column(2), Sticky("we"), Padx("0.2m"))
	v.removeBtn = TButton(Txt("Remove"), Style(theme.StyleDangerButton), State("disabled"), Command(call(h.Remove)))
	Grid(v.removeBtn, In(files), Row(0), Column(3), Sticky("we"), Padx("0.2m"))
	row++

	v.fileLbl = Label(Txt("No file selected"), Anchor("w"))
	Grid(v.fileLbl, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"))
	row++
	v.dimsLbl = Label(Txt(""), Anchor("w"))
	Grid(v.dimsLbl, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"))
	row++
	v.captureLbl = Label(Txt(""), Anchor("w"))
	Grid(v.captureLbl, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"))
	row++

	makeRow := func(id, label string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(16))
		Grid(w, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		v.fields[id] = w
		row++
	}
	makeRow("lambda", "Wavelength, nm")
	makeRow("xAngle", "X tilt, rad")
	makeRow("yAngle", "Y tilt, rad")
	makeRow("xSize", "Sensor width, mm")
	makeRow("ySize", "Sensor height, mm")

	v.maskBtn = Button(Txt("Mask: off"), State("disabled"), Command(func() {
		if h.ToggleMask != nil {
			h.ToggleMask(!v.maskEnabled)
		}
	}))
	Grid(v.maskBtn, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++

	v.radiusRow = row
	v.radiusLbl = Label(Txt("Mask radius, px"), Anchor("w"))
	v.radius = Text(Height(1), Width(16))
	v.radius.Insert("1.0", "0")
	Bind(v.radius, "<KeyRelease>", Command(func() {
		if h.Radius != nil {
			h.Radius(v.text(v.radius))
		}
	}))
	row++

	v.submitBtn = TButton(Txt("Restore"), Style(theme.StyleSubmitButton), State("disabled"), Command(call(h.Submit)))
	Grid(v.submitBtn, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	row++
	return row
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}

func (v *formPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}

// Params reads the raw parameter fields.
func (v *formPanel) Params() acquisition.Params {
	return acquisition.Params{
		Lambda: v.text(v.fields["lambda"]),
		XAngle: v.text(v.fields["xAngle"]),
		YAngle: v.text(v.fields["yAngle"]),
		XSize:  v.text(v.fields["xSize"]),
		YSize:  v.text(v.fields["ySize"]),
	}
}

func (v *formPanel) SetFileName(name string) {
	if v.fileLbl == nil {
		return
	}
	if name == "" {
		v.fileLbl.Configure(Txt("No file selected"))
		v.removeBtn.Configure(State("disabled"))
		return
	}
	v.fileLbl.Configure(Txt(name))
	v.removeBtn.Configure(State("normal"))
}

func (v *formPanel) SetDimensions(text string) {
	if v.dimsLbl != nil {
		v.dimsLbl.Configure(Txt(text))
	}
}

func (v *formPanel) SetCaptureStatus(text string) {
	if v.captureLbl != nil {
		v.captureLbl.Configure(Txt(text))
	}
}

// SetMaskControls enables the toggle and shows the radius row only while the
// mask is enabled.
func (v *formPanel) SetMaskControls(available, enabled bool) {
	if v.maskBtn == nil {
		return
	}
	v.maskEnabled = enabled
	state, label := "disabled", "Mask: off"
	if available {
		state = "normal"
	}
	if enabled {
		label = "Mask: on"
	}
	v.maskBtn.Configure(Txt(label), State(state))
	show := available && enabled
	if show == v.radiusShown {
		return
	}
	v.radiusShown = show
	if show {
		Grid(v.radiusLbl, In(v.parent), Row(v.radiusRow), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		Grid(v.radius, In(v.parent), Row(v.radiusRow), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		return
	}
	GridForget(v.radiusLbl.Window, v.radius.Window)
}

// SetRadiusText rewrites the radius field when its value differs from text.
// Text that already reads as the same number, such as "5." or an empty field
// for 0, is left alone so typing is not disturbed.
func (v *formPanel) SetRadiusText(text string) {
	if v.radius == nil {
		return
	}
	cur := v.text(v.radius)
	if cur == text || sameRadius(cur, text) {
		return
	}
	v.radius.Delete("1.0", END)
	v.radius.Insert("1.0", text)
}

func sameRadius(a, b string) bool {
	parse := func(s string) (float64, bool) {
		if s == "" {
			return 0, true
		}
		f, err := restore.ParseNumber(s)
		return f, err == nil
	}
	x, okA := parse(a)
	y, okB := parse(b)
	return okA && okB && x == y
}

func (v *formPanel) SetSubmitEnabled(enabled bool) {
	if v.submitBtn == nil {
		return
	}
	if enabled {
		v.submitBtn.Configure(State("normal"))
		return
	}
	v.submitBtn.Configure(State("disabled"))
}
