package main

import (
	"database/sql"
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// colResizer is a small draggable widget used to resize columns.
type colResizer struct {
	widget.BaseWidget
	onDrag func(dx float32)
	rect   *canvas.Rectangle
}

func newColResizer(onDrag func(dx float32)) *colResizer {
	r := &colResizer{onDrag: onDrag}
	r.ExtendBaseWidget(r)
	return r
}

func (r *colResizer) CreateRenderer() fyne.WidgetRenderer {
	if r.rect == nil {
		r.rect = canvas.NewRectangle(color.NRGBA{R: 200, G: 200, B: 200, A: 200})
	}
	objs := []fyne.CanvasObject{r.rect}
	return &resizerRenderer{rect: r.rect, objs: objs}
}

func (r *colResizer) Dragged(e *fyne.DragEvent) {
	if r.onDrag != nil {
		r.onDrag(e.Dragged.DX)
	}
}

func (r *colResizer) DragEnd() {}

type resizerRenderer struct {
	rect *canvas.Rectangle
	objs []fyne.CanvasObject
}

func (rr *resizerRenderer) MinSize() fyne.Size           { return fyne.NewSize(6, 24) }
func (rr *resizerRenderer) Layout(size fyne.Size)        { rr.rect.Resize(size) }
func (rr *resizerRenderer) Refresh()                     { rr.rect.Refresh() }
func (rr *resizerRenderer) Objects() []fyne.CanvasObject { return rr.objs }
func (rr *resizerRenderer) Destroy()                     {}

// cellEntry is an Entry that intercepts Tab and Escape. Tab commits the cell
// and advances to the next one; Escape is swallowed so it neither moves the
// cursor nor writes anything.
type cellEntry struct {
	widget.Entry
	onTab func()
}

func newCellEntry() *cellEntry {
	e := &cellEntry{}
	e.ExtendBaseWidget(e)
	return e
}

func (e *cellEntry) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyTab:
		if e.onTab != nil {
			e.onTab()
			return
		}
	case fyne.KeyEscape:
		return
	}
	e.Entry.TypedKey(ev)
}

// AcceptsTab keeps the focus manager from consuming Tab before TypedKey
// sees it.
func (e *cellEntry) AcceptsTab() bool {
	return true
}

// dataView is the editable measurement grid. One implementation serves all
// layer types: the per-column metadata table decides how each cell is
// formatted and validated. Collaborators (store handle, layer, redraw and
// append-feature callbacks, settings) are passed in at construction.
type dataView struct {
	db         *sql.DB
	layer      Layer
	cols       []columnSpec
	redraw     func()
	addFeature func(layerType string, layerID int)
	settings   *Settings
	win        fyne.Window

	features  []Feature
	entries   [][]*cellEntry
	selected  map[int]bool
	colWidths []float32
	box       *fyne.Container
}

func newDataView(win fyne.Window, db *sql.DB, layer Layer, cols []columnSpec,
	redraw func(), addFeature func(string, int), settings *Settings) *dataView {

	v := &dataView{
		db:         db,
		layer:      layer,
		cols:       cols,
		redraw:     redraw,
		addFeature: addFeature,
		settings:   settings,
		win:        win,
		selected:   map[int]bool{},
		box:        container.NewVBox(),
	}
	v.colWidths = make([]float32, len(cols)+1) // +1 for the selection column
	v.colWidths[0] = 40
	for i := 1; i < len(v.colWidths); i++ {
		v.colWidths[i] = 120
	}
	v.reload()
	return v
}

// newPlaneDataView builds the grid for plane layers:
// dip direction, dip, stratigraphic orientation.
func newPlaneDataView(win fyne.Window, db *sql.DB, layer Layer, redraw func(),
	addFeature func(string, int), settings *Settings) *dataView {
	return newDataView(win, db, layer, layerColumns(LayerPlane), redraw, addFeature, settings)
}

// newFaultPlaneDataView builds the grid for fault planes: plane dip direction
// and dip, lineation dip direction and dip, shear sense.
func newFaultPlaneDataView(win fyne.Window, db *sql.DB, layer Layer, redraw func(),
	addFeature func(string, int), settings *Settings) *dataView {
	return newDataView(win, db, layer, layerColumns(LayerFaultPlane), redraw, addFeature, settings)
}

// newLineDataView builds the grid for linear data:
// dip direction, dip, movement sense.
func newLineDataView(win fyne.Window, db *sql.DB, layer Layer, redraw func(),
	addFeature func(string, int), settings *Settings) *dataView {
	return newDataView(win, db, layer, layerColumns(LayerLine), redraw, addFeature, settings)
}

// newSmallCircleDataView builds the grid for small circles:
// dip direction, dip, opening angle.
func newSmallCircleDataView(win fyne.Window, db *sql.DB, layer Layer, redraw func(),
	addFeature func(string, int), settings *Settings) *dataView {
	return newDataView(win, db, layer, layerColumns(LayerSmallCircle), redraw, addFeature, settings)
}

// newEigenvectorDataView builds the grid for eigenvectors:
// dip direction, dip, eigenvalue magnitude.
func newEigenvectorDataView(win fyne.Window, db *sql.DB, layer Layer, redraw func(),
	addFeature func(string, int), settings *Settings) *dataView {
	return newDataView(win, db, layer, layerColumns(LayerEigenvector), redraw, addFeature, settings)
}

// newDataViewForLayer picks the grid variant matching the layer type.
func newDataViewForLayer(win fyne.Window, db *sql.DB, layer Layer, redraw func(),
	addFeature func(string, int), settings *Settings) *dataView {
	switch layer.Type {
	case LayerFaultPlane:
		return newFaultPlaneDataView(win, db, layer, redraw, addFeature, settings)
	case LayerLine:
		return newLineDataView(win, db, layer, redraw, addFeature, settings)
	case LayerSmallCircle:
		return newSmallCircleDataView(win, db, layer, redraw, addFeature, settings)
	case LayerEigenvector:
		return newEigenvectorDataView(win, db, layer, redraw, addFeature, settings)
	default:
		return newPlaneDataView(win, db, layer, redraw, addFeature, settings)
	}
}

// container returns the scrollable grid for embedding in the window.
func (v *dataView) container() fyne.CanvasObject {
	scroll := container.NewScroll(v.box)
	scroll.SetMinSize(fyne.NewSize(420, 260))
	return scroll
}

// reload re-reads the layer's features from the store and rebuilds the grid.
func (v *dataView) reload() {
	features, err := getFeatures(v.db, v.layer.ID)
	if err != nil {
		log.Println("error loading features:", err)
		v.box.Objects = []fyne.CanvasObject{widget.NewLabel("Error loading data")}
		v.box.Refresh()
		return
	}
	v.features = features
	v.rebuild()
}

// rebuild repopulates header + rows in the VBox so header and cells share
// the same column widths.
func (v *dataView) rebuild() {
	v.box.Objects = nil
	v.entries = make([][]*cellEntry, len(v.features))

	const minColWidth = 40.0
	const rowHeight = 34.0

	// header row: selection spacer, then one resizable cell per column
	headerBg := canvas.NewRectangle(color.NRGBA{R: 240, G: 240, B: 240, A: 20})
	headerRow := container.NewHBox()
	headerRow.Add(container.New(layout.NewGridWrapLayout(fyne.NewSize(v.colWidths[0], rowHeight)), widget.NewLabel("")))
	for ci, c := range v.cols {
		label := widget.NewLabel(c.Label)
		label.Alignment = fyne.TextAlignCenter
		cell := container.NewStack(headerBg, container.NewHBox(label))

		widx := ci + 1
		res := newColResizer(func(dx float32) {
			newW := v.colWidths[widx] + dx
			if newW < minColWidth {
				newW = minColWidth
			}
			if newW != v.colWidths[widx] {
				v.colWidths[widx] = newW
				v.rebuild()
			}
		})

		cellWrap := container.New(layout.NewGridWrapLayout(fyne.NewSize(v.colWidths[widx], rowHeight)), cell)
		headerRow.Add(container.NewHBox(cellWrap, res))
	}
	v.box.Add(headerRow)

	for ri, feat := range v.features {
		// alternating row color
		var bg color.NRGBA
		if ri%2 == 0 {
			bg = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
		} else {
			bg = color.NRGBA{R: 245, G: 245, B: 255, A: 200}
		}

		rowBox := container.NewHBox()

		row := ri
		check := widget.NewCheck("", func(on bool) {
			v.setSelected(row, on)
		})
		check.SetChecked(v.selected[ri])
		rowBox.Add(container.New(layout.NewGridWrapLayout(fyne.NewSize(v.colWidths[0], rowHeight)),
			container.NewStack(canvas.NewRectangle(bg), check)))

		v.entries[ri] = make([]*cellEntry, len(v.cols))
		for ci, c := range v.cols {
			rect := canvas.NewRectangle(bg)
			e := newCellEntry()
			e.SetText(formatValue(feat.Data[c.Name], c.Kind))
			if c.Kind == kindSense {
				e.SetPlaceHolder("up/dn/sin/dex/uk")
			}

			rowIdx, colIdx := ri, ci
			e.OnSubmitted = func(s string) {
				if !v.commitCell(rowIdx, colIdx, s) {
					v.revertCell(rowIdx, colIdx)
				}
			}
			e.onTab = func() {
				if !v.commitCell(rowIdx, colIdx, e.Text) {
					v.revertCell(rowIdx, colIdx)
				}
				nr, nc := v.nextCell(rowIdx, colIdx)
				v.focusCell(nr, nc)
			}

			v.entries[ri][ci] = e
			cellWrap := container.New(layout.NewGridWrapLayout(fyne.NewSize(v.colWidths[ci+1], rowHeight)),
				container.NewStack(rect, e))
			rowBox.Add(cellWrap)
		}

		v.box.Add(rowBox)
	}

	v.box.Refresh()
}

// commitCell validates a raw cell string against the column's kind and, when
// valid, writes the single field to the store and triggers a redraw. Invalid
// input leaves the store untouched and returns false.
func (v *dataView) commitCell(row, col int, raw string) bool {
	if row < 0 || row >= len(v.features) || col < 0 || col >= len(v.cols) {
		return false
	}
	feat := v.features[row]
	c := v.cols[col]

	var value interface{}
	switch c.Kind {
	case kindText:
		value = raw
	case kindSense:
		code, ok := validateSense(raw)
		if !ok {
			return false
		}
		value = code
	default:
		num, ok := validateNumeric(raw, c.Kind)
		if !ok {
			return false
		}
		value = num
	}

	if err := updateFeatureField(v.db, feat.ID, c.Name, value); err != nil {
		log.Println("error committing cell:", err)
		return false
	}
	feat.Data[c.Name] = value
	if v.redraw != nil {
		v.redraw()
	}
	return true
}

// revertCell restores a cell's text to the stored value's formatted form.
func (v *dataView) revertCell(row, col int) {
	if row < 0 || row >= len(v.entries) || col < 0 || col >= len(v.entries[row]) {
		return
	}
	c := v.cols[col]
	v.entries[row][col].SetText(formatValue(v.features[row].Data[c.Name], c.Kind))
}

// nextCell returns the cell Tab advances to from (row, col). Past the last
// column it wraps to the next row; past the last cell of the last row it
// asks the append-feature callback for a new blank row first.
func (v *dataView) nextCell(row, col int) (int, int) {
	if col+1 < len(v.cols) {
		return row, col + 1
	}
	if row+1 >= len(v.features) {
		if v.addFeature != nil {
			v.addFeature(v.layer.Type, v.layer.ID)
		}
		v.reload()
		if row+1 >= len(v.features) {
			// append did not take (callback missing or failed): stay put
			return row, col
		}
	}
	return row + 1, 0
}

// focusCell moves keyboard focus to the entry at (row, col).
func (v *dataView) focusCell(row, col int) {
	if row < 0 || row >= len(v.entries) || col < 0 || col >= len(v.entries[row]) {
		return
	}
	if v.win == nil {
		return
	}
	v.win.Canvas().Focus(v.entries[row][col])
}

// setSelected flags a row as selected. In highlight mode every selection
// change redraws the plot.
func (v *dataView) setSelected(row int, on bool) {
	if on {
		v.selected[row] = true
	} else {
		delete(v.selected, row)
	}
	v.selectionChanged()
}

func (v *dataView) selectionChanged() {
	if v.settings != nil && v.settings.GetHighlight() && v.redraw != nil {
		v.redraw()
	}
}

// selectedFeatureIDs returns the store ids of the selected rows.
func (v *dataView) selectedFeatureIDs() []int {
	var ids []int
	for row := range v.selected {
		if row >= 0 && row < len(v.features) {
			ids = append(ids, v.features[row].ID)
		}
	}
	return ids
}

// deleteSelected removes the selected rows from the store and redraws.
func (v *dataView) deleteSelected() {
	ids := v.selectedFeatureIDs()
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		if err := deleteFeature(v.db, id); err != nil {
			log.Println("error deleting feature:", err)
		}
	}
	v.selected = map[int]bool{}
	v.reload()
	if v.redraw != nil {
		v.redraw()
	}
}
